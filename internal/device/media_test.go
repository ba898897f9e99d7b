package device

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureReceivesOfferedClip(t *testing.T) {
	g := NewMediaGateway()
	cap := g.ForUser(1)

	var wg sync.WaitGroup
	wg.Add(1)
	var clip Clip
	var err error
	go func() {
		defer wg.Done()
		clip, err = cap.CaptureAudio(context.Background(), time.Second)
	}()

	// Let the capture open its inbox before offering.
	require.Eventually(t, func() bool {
		return g.Offer(1, "audio", Clip{Data: []byte("pcm"), MimeType: "audio/webm", Duration: time.Second})
	}, time.Second, 10*time.Millisecond)

	wg.Wait()
	require.NoError(t, err)
	assert.Equal(t, []byte("pcm"), clip.Data)
	assert.Equal(t, "audio/webm", clip.MimeType)
}

func TestOfferWithoutWaiterRejected(t *testing.T) {
	g := NewMediaGateway()
	assert.False(t, g.Offer(1, "audio", Clip{Data: []byte("x")}))
	assert.False(t, g.Deny(1, "audio"))
}

func TestDenyFailsWaitingCapture(t *testing.T) {
	g := NewMediaGateway()
	cap := g.ForUser(1)

	var wg sync.WaitGroup
	wg.Add(1)
	var err error
	go func() {
		defer wg.Done()
		_, err = cap.CaptureImage(context.Background())
	}()

	require.Eventually(t, func() bool {
		return g.Deny(1, "image")
	}, time.Second, 10*time.Millisecond)

	wg.Wait()
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCaptureCancelled(t *testing.T) {
	g := NewMediaGateway()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.ForUser(1).CaptureAudio(ctx, time.Second)
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestAudioVideoMutuallyExclusive(t *testing.T) {
	g := NewMediaGateway()
	cap := g.ForUser(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_, _ = cap.CaptureAudio(ctx, time.Minute)
		close(done)
	}()
	// The audio capture holds the mic once its inbox is open.
	time.Sleep(100 * time.Millisecond)

	_, err := cap.CaptureVideo(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrDeviceUnavailable)

	cancel()
	<-done

	// Mic freed again; a fresh video capture gets past TryLock and receives
	// its clip.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		clip, verr := cap.CaptureVideo(context.Background(), time.Minute)
		assert.NoError(t, verr)
		assert.Equal(t, []byte("vid"), clip.Data)
	}()
	require.Eventually(t, func() bool {
		return g.Offer(1, "video", Clip{Data: []byte("vid"), MimeType: "video/webm"})
	}, time.Second, 10*time.Millisecond)
	wg.Wait()
}

func TestImageCaptureIndependentOfMic(t *testing.T) {
	g := NewMediaGateway()
	cap := g.ForUser(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _, _ = cap.CaptureAudio(ctx, time.Minute) }()

	var wg sync.WaitGroup
	wg.Add(1)
	var err error
	go func() {
		defer wg.Done()
		_, err = cap.CaptureImage(context.Background())
	}()
	require.Eventually(t, func() bool {
		return g.Offer(1, "image", Clip{Data: []byte("jpg"), MimeType: "image/jpeg"})
	}, time.Second, 10*time.Millisecond)

	wg.Wait()
	assert.NoError(t, err)
}
