package emergency

import (
	"context"
	"sync"
	"time"

	"suraksha/pkg/scheduler"
)

// HoldTrigger models the press-and-hold SOS gesture. A press arms a
// countdown; releasing before it expires resets progress to zero with no
// side effects. Only a completed hold fires, and it fires exactly once.
type HoldTrigger struct {
	mu        sync.Mutex
	duration  time.Duration
	sched     *scheduler.Scheduler
	cancel    context.CancelFunc
	pressedAt time.Time
	fire      func()
}

func NewHoldTrigger(d time.Duration, sched *scheduler.Scheduler, fire func()) *HoldTrigger {
	if d <= 0 {
		d = 3 * time.Second
	}
	return &HoldTrigger{duration: d, sched: sched, fire: fire}
}

// Press arms the countdown. Pressing while already armed restarts it.
func (h *HoldTrigger) Press() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
	}
	h.pressedAt = time.Now()
	h.cancel = h.sched.OnceAfterCancel(h.duration, scheduler.FuncJob(func(ctx context.Context) {
		h.mu.Lock()
		if h.cancel == nil {
			h.mu.Unlock()
			return
		}
		h.cancel = nil
		h.pressedAt = time.Time{}
		h.mu.Unlock()
		h.fire()
	}))
}

// Release disarms a pending countdown. Releasing after the trigger fired
// (or without a press) is a no-op.
func (h *HoldTrigger) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.pressedAt = time.Time{}
}

// Progress reports the displayed countdown as a fraction in [0,1]. Zero when
// not pressed.
func (h *HoldTrigger) Progress() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel == nil || h.pressedAt.IsZero() {
		return 0
	}
	p := float64(time.Since(h.pressedAt)) / float64(h.duration)
	if p > 1 {
		p = 1
	}
	return p
}

// Pressed reports whether a countdown is armed.
func (h *HoldTrigger) Pressed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancel != nil
}
