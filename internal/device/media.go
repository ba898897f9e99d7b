package device

import (
	"context"
	"sync"
	"time"

	"suraksha/pkg/errors"
)

// ErrDeviceUnavailable means nothing arrived in time or the device is busy;
// ErrPermissionDenied means the client reported the user refused access.
// The orchestrator logs either and carries on without the artifact.
var (
	ErrDeviceUnavailable = errors.WithCode(errors.CodeDeviceUnavailable, "capture device unavailable")
	ErrPermissionDenied  = errors.WithCode(errors.CodePermissionDenied, "device permission denied")
)

// Clip is one completed capture: raw bytes plus the measured duration
// (zero for stills).
type Clip struct {
	Data     []byte
	MimeType string
	Duration time.Duration
}

// Capturer is the media boundary. Audio and video are mutually exclusive
// per user (one microphone); image capture grabs the camera only briefly.
type Capturer interface {
	CaptureAudio(ctx context.Context, maxDuration time.Duration) (Clip, error)
	CaptureVideo(ctx context.Context, maxDuration time.Duration) (Clip, error)
	CaptureImage(ctx context.Context) (Clip, error)
}

// MediaGateway pairs capture requests with uploads from the mobile client:
// a capture call opens an inbox for its media type and waits for the device
// to deliver into it.
type MediaGateway struct {
	mu     sync.Mutex
	inbox  map[inboxKey]chan delivery
	mics   map[uint]*sync.Mutex
	jitter time.Duration // grace on top of maxDuration for upload latency
}

type inboxKey struct {
	userID uint
	kind   string
}

type delivery struct {
	clip Clip
	err  error
}

func NewMediaGateway() *MediaGateway {
	return &MediaGateway{
		inbox:  make(map[inboxKey]chan delivery),
		mics:   make(map[uint]*sync.Mutex),
		jitter: 10 * time.Second,
	}
}

// Offer delivers an uploaded clip from the device. Returns false when no
// capture is waiting for that media type.
func (g *MediaGateway) Offer(userID uint, kind string, clip Clip) bool {
	return g.deliver(userID, kind, delivery{clip: clip})
}

// Deny reports that the user refused the device permission, failing the
// waiting capture immediately instead of letting it time out.
func (g *MediaGateway) Deny(userID uint, kind string) bool {
	return g.deliver(userID, kind, delivery{err: ErrPermissionDenied})
}

func (g *MediaGateway) deliver(userID uint, kind string, d delivery) bool {
	g.mu.Lock()
	ch, ok := g.inbox[inboxKey{userID, kind}]
	g.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- d:
		return true
	default:
		return false
	}
}

// ForUser binds the gateway to one user's devices.
func (g *MediaGateway) ForUser(userID uint) Capturer {
	return &userCapturer{g: g, userID: userID}
}

type userCapturer struct {
	g      *MediaGateway
	userID uint
}

func (c *userCapturer) mic() *sync.Mutex {
	c.g.mu.Lock()
	defer c.g.mu.Unlock()
	m, ok := c.g.mics[c.userID]
	if !ok {
		m = &sync.Mutex{}
		c.g.mics[c.userID] = m
	}
	return m
}

// open registers an inbox for the capture and returns a release func that
// always runs, so every acquisition path frees the slot.
func (c *userCapturer) open(kind string) (chan delivery, func(), error) {
	key := inboxKey{c.userID, kind}
	c.g.mu.Lock()
	defer c.g.mu.Unlock()
	if _, busy := c.g.inbox[key]; busy {
		return nil, nil, ErrDeviceUnavailable
	}
	ch := make(chan delivery, 1)
	c.g.inbox[key] = ch
	release := func() {
		c.g.mu.Lock()
		delete(c.g.inbox, key)
		c.g.mu.Unlock()
	}
	return ch, release, nil
}

func (c *userCapturer) waitClip(ctx context.Context, kind string, deadline time.Duration) (Clip, error) {
	ch, release, err := c.open(kind)
	if err != nil {
		return Clip{}, err
	}
	defer release()

	select {
	case d := <-ch:
		return d.clip, d.err
	case <-time.After(deadline):
		return Clip{}, ErrDeviceUnavailable
	case <-ctx.Done():
		return Clip{}, ErrDeviceUnavailable
	}
}

func (c *userCapturer) CaptureAudio(ctx context.Context, maxDuration time.Duration) (Clip, error) {
	m := c.mic()
	if !m.TryLock() {
		return Clip{}, ErrDeviceUnavailable
	}
	defer m.Unlock()
	return c.waitClip(ctx, "audio", maxDuration+c.g.jitter)
}

func (c *userCapturer) CaptureVideo(ctx context.Context, maxDuration time.Duration) (Clip, error) {
	m := c.mic()
	if !m.TryLock() {
		return Clip{}, ErrDeviceUnavailable
	}
	defer m.Unlock()
	return c.waitClip(ctx, "video", maxDuration+c.g.jitter)
}

func (c *userCapturer) CaptureImage(ctx context.Context) (Clip, error) {
	return c.waitClip(ctx, "image", 15*time.Second)
}
