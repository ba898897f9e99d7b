package emergency

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"suraksha/internal/device"
	"suraksha/internal/models"
	"suraksha/pkg/errors"
	"suraksha/pkg/logger"
	"suraksha/pkg/metrics"
	"suraksha/pkg/scheduler"
	"suraksha/pkg/util"

	"go.uber.org/zap"
)

// SessionStore is the slice of persistence the orchestrator depends on.
// *store.Store satisfies it.
type SessionStore interface {
	CreateSession(ctx context.Context, draft *models.EmergencySession) (*models.EmergencySession, error)
	GetSession(ctx context.Context, id string) (*models.EmergencySession, error)
	UpdateSessionStatus(ctx context.Context, id, status string, endedAt *time.Time) error
	AppendLocationPoint(ctx context.Context, p *models.LocationPoint) error
	UploadBlob(path string, r io.Reader, size int64, contentType string) (string, error)
	RecordMedia(ctx context.Context, rec *models.EmergencyRecording) error
	GetProfile(ctx context.Context, userID uint) (*models.Profile, error)
}

// Publisher pushes live session events to watchers; *sse.Hub satisfies it.
type Publisher interface {
	Publish(group, event string, payload any)
}

type Options struct {
	HoldDuration    time.Duration
	AudioClipLength time.Duration
}

// Orchestrator sequences one SOS activation: one-shot position, session row
// with the contact snapshot, then the concurrent fan-out of location watch,
// audio clip and still image. It owns every watch handle it starts and
// cancels them on resolve/cancel.
type Orchestrator struct {
	store     SessionStore
	locations *device.LocationGateway
	media     *device.MediaGateway
	sched     *scheduler.Scheduler
	pub       Publisher
	opts      Options

	mu     sync.Mutex
	active map[string]*liveSession // session id -> running work
	holds  map[uint]*HoldTrigger   // per-user SOS gesture
	timers map[uint]*SafetyTimer   // per-user safety timer
}

type liveSession struct {
	watch  device.Watch
	cancel context.CancelFunc
}

func New(store SessionStore, locations *device.LocationGateway, media *device.MediaGateway, sched *scheduler.Scheduler, pub Publisher, opts Options) *Orchestrator {
	if opts.HoldDuration <= 0 {
		opts.HoldDuration = 3 * time.Second
	}
	if opts.AudioClipLength <= 0 {
		opts.AudioClipLength = 30 * time.Second
	}
	return &Orchestrator{
		store:     store,
		locations: locations,
		media:     media,
		sched:     sched,
		pub:       pub,
		opts:      opts,
		active:    make(map[string]*liveSession),
		holds:     make(map[uint]*HoldTrigger),
		timers:    make(map[uint]*SafetyTimer),
	}
}

// --- SOS gesture ---

// HoldPress arms the user's 3-second hold. The countdown completing is the
// only path into Activate; an early HoldRelease has no side effects.
func (o *Orchestrator) HoldPress(userID uint) {
	o.hold(userID).Press()
}

func (o *Orchestrator) HoldRelease(userID uint) {
	o.hold(userID).Release()
}

func (o *Orchestrator) HoldProgress(userID uint) float64 {
	return o.hold(userID).Progress()
}

func (o *Orchestrator) hold(userID uint) *HoldTrigger {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.holds[userID]
	if !ok {
		h = NewHoldTrigger(o.opts.HoldDuration, o.sched, func() {
			if _, err := o.Activate(context.Background(), userID); err != nil {
				logger.Error("hold-triggered activation failed", zap.Uint("user", userID), zap.Error(err))
			}
		})
		o.holds[userID] = h
	}
	return h
}

// --- safety timer ---

// StartSafetyTimer arms the check-in countdown. Expiry without a check-in
// runs the full activation path, same as the SOS button.
func (o *Orchestrator) StartSafetyTimer(userID uint, d time.Duration) {
	o.timer(userID).Start(d)
}

func (o *Orchestrator) TimerCheckIn(userID uint) bool { return o.timer(userID).CheckIn() }
func (o *Orchestrator) TimerStop(userID uint) bool    { return o.timer(userID).Stop() }
func (o *Orchestrator) TimerRemaining(userID uint) time.Duration {
	return o.timer(userID).Remaining()
}

func (o *Orchestrator) timer(userID uint) *SafetyTimer {
	o.mu.Lock()
	defer o.mu.Unlock()
	t, ok := o.timers[userID]
	if !ok {
		t = NewSafetyTimer(o.sched, func() {
			logger.Warn("safety timer expired without check-in", zap.Uint("user", userID))
			if _, err := o.Activate(context.Background(), userID); err != nil {
				logger.Error("timer-triggered activation failed", zap.Uint("user", userID), zap.Error(err))
			}
		})
		o.timers[userID] = t
	}
	return t
}

// --- activation ---

// Activate runs the ordered part first (position, then the session row; the
// fan-out needs the session id), then launches the three independent
// branches. A branch failing never rolls back the others.
func (o *Orchestrator) Activate(ctx context.Context, userID uint) (*models.EmergencySession, error) {
	var contacts models.ContactList
	if profile, err := o.store.GetProfile(ctx, userID); err == nil {
		contacts = profile.EmergencyContacts.Clone()
	} else {
		logger.Warn("activating without profile", zap.Uint("user", userID), zap.Error(err))
	}

	draft := &models.EmergencySession{
		UserID:            userID,
		Status:            models.SessionActive,
		EmergencyContacts: contacts,
	}

	src := o.locations.ForUser(userID)
	pos, err := src.Current(ctx, device.WatchOptions{HighAccuracy: true, MaxAge: 10 * time.Second, Timeout: 5 * time.Second})
	if err != nil {
		// The alert must not be blocked by a missing fix; coordinates stay null.
		logger.Warn("activation without position", zap.Uint("user", userID), zap.Error(err))
	} else {
		draft.LocationLat = &pos.Lat
		draft.LocationLng = &pos.Lng
		draft.Accuracy = pos.Accuracy
	}

	session, err := o.store.CreateSession(ctx, draft)
	if err != nil {
		return nil, err
	}
	metrics.SOSActivations.Inc()
	logger.Info("emergency session activated", zap.String("session", session.ID), zap.Uint("user", userID))
	util.Sig().Emit(models.SigSessionCreate, session)

	// Fan-out lifetime is the session's, not the request's.
	runCtx, cancel := context.WithCancel(context.Background())

	watch, err := src.Watch(runCtx, device.WatchOptions{HighAccuracy: true}, func(p device.Position) {
		o.appendPoint(session.ID, p)
	})
	if err != nil {
		logger.Warn("location watch unavailable", zap.String("session", session.ID), zap.Error(err))
	}

	o.mu.Lock()
	o.active[session.ID] = &liveSession{watch: watch, cancel: cancel}
	o.mu.Unlock()

	capturer := o.media.ForUser(userID)
	go o.captureAudio(runCtx, capturer, session)
	go o.captureImage(runCtx, capturer, session)

	return session, nil
}

// appendPoint persists one tracked fix. Best-effort: a rejected write is
// logged and dropped, never retried or surfaced.
func (o *Orchestrator) appendPoint(sessionID string, p device.Position) {
	point := &models.LocationPoint{
		EmergencySessionID: sessionID,
		Latitude:           p.Lat,
		Longitude:          p.Lng,
		Accuracy:           p.Accuracy,
		Speed:              p.Speed,
		Heading:            p.Heading,
		Timestamp:          p.Timestamp,
	}
	if err := o.store.AppendLocationPoint(context.Background(), point); err != nil {
		logger.Warn("location point dropped", zap.String("session", sessionID), zap.Error(err))
		return
	}
	metrics.LocationPoints.Inc()
	if o.pub != nil {
		o.pub.Publish(SessionGroup(sessionID), "location", point)
	}
}

func (o *Orchestrator) captureAudio(ctx context.Context, capturer device.Capturer, session *models.EmergencySession) {
	clip, err := capturer.CaptureAudio(ctx, o.opts.AudioClipLength)
	if err != nil {
		metrics.CaptureFailures.WithLabelValues("audio").Inc()
		logger.Warn("audio capture skipped", zap.String("session", session.ID), zap.Error(err))
		return
	}
	o.saveClip(session, models.RecordingAudio, clip, "webm")
}

func (o *Orchestrator) captureImage(ctx context.Context, capturer device.Capturer, session *models.EmergencySession) {
	clip, err := capturer.CaptureImage(ctx)
	if err != nil {
		metrics.CaptureFailures.WithLabelValues("image").Inc()
		logger.Warn("image capture skipped", zap.String("session", session.ID), zap.Error(err))
		return
	}
	o.saveClip(session, models.RecordingImage, clip, "jpg")
}

// CaptureVideo runs an on-demand video recording for an active session. The
// device gateway enforces mutual exclusion with audio-only capture.
func (o *Orchestrator) CaptureVideo(ctx context.Context, sessionID string, maxDuration time.Duration) error {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.SessionActive {
		return errors.WithCode(errors.CodeWriteRejected, "session is not active")
	}
	clip, err := o.media.ForUser(session.UserID).CaptureVideo(ctx, maxDuration)
	if err != nil {
		metrics.CaptureFailures.WithLabelValues("video").Inc()
		return err
	}
	o.saveClip(session, models.RecordingVideo, clip, "webm")
	return nil
}

// saveClip uploads the artifact then writes its metadata row; either step
// failing leaves the session itself untouched.
func (o *Orchestrator) saveClip(session *models.EmergencySession, kind string, clip device.Clip, ext string) {
	fileName := fmt.Sprintf("emergency-%s-%d.%s", kind, time.Now().UnixMilli(), ext)
	filePath := "recordings/" + fileName

	if _, err := o.store.UploadBlob(filePath, bytes.NewReader(clip.Data), int64(len(clip.Data)), clip.MimeType); err != nil {
		logger.Error("recording upload failed", zap.String("session", session.ID), zap.String("type", kind), zap.Error(err))
		return
	}

	rec := &models.EmergencyRecording{
		EmergencySessionID: session.ID,
		UserID:             session.UserID,
		FileName:           fileName,
		FilePath:           filePath,
		RecordingType:      kind,
		FileSize:           int64(len(clip.Data)),
		MimeType:           clip.MimeType,
	}
	if clip.Duration > 0 {
		secs := int(clip.Duration / time.Second)
		rec.DurationSeconds = &secs
	}
	if err := o.store.RecordMedia(context.Background(), rec); err != nil {
		logger.Error("recording metadata failed", zap.String("session", session.ID), zap.String("type", kind), zap.Error(err))
		return
	}
	metrics.RecordingsSaved.WithLabelValues(kind).Inc()
}

// --- resolution ---

// Resolve closes the session: stop the watch and any in-flight capture,
// then stamp the final status. Works for sessions with no live state too
// (e.g. after a restart), where only the row is updated.
func (o *Orchestrator) Resolve(ctx context.Context, sessionID, status string) error {
	if status != models.SessionResolved && status != models.SessionCancelled {
		return errors.Errorf("invalid terminal status %q", status)
	}

	o.mu.Lock()
	live := o.active[sessionID]
	delete(o.active, sessionID)
	o.mu.Unlock()

	if live != nil {
		if live.watch != nil {
			live.watch.Cancel()
		}
		live.cancel()
	}

	now := time.Now()
	if err := o.store.UpdateSessionStatus(ctx, sessionID, status, &now); err != nil {
		return err
	}
	logger.Info("emergency session closed", zap.String("session", sessionID), zap.String("status", status))
	if o.pub != nil {
		o.pub.Publish(SessionGroup(sessionID), "status", map[string]any{"status": status, "ended_at": now})
	}
	return nil
}

// Shutdown cancels all live work; sessions stay active in the store.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, live := range o.active {
		if live.watch != nil {
			live.watch.Cancel()
		}
		live.cancel()
		delete(o.active, id)
	}
}

// SessionGroup names the SSE group carrying one session's live events.
func SessionGroup(sessionID string) string { return "session:" + sessionID }
