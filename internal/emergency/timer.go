package emergency

import (
	"context"
	"sync"
	"time"

	"suraksha/pkg/scheduler"
)

// SafetyTimer is the "I should be home by then" flow: the user picks a
// duration and must check in before it runs out. Expiry without a check-in
// triggers the same activation path as the SOS button.
type SafetyTimer struct {
	mu       sync.Mutex
	sched    *scheduler.Scheduler
	cancel   context.CancelFunc
	deadline time.Time
	onExpire func()
}

func NewSafetyTimer(sched *scheduler.Scheduler, onExpire func()) *SafetyTimer {
	return &SafetyTimer{sched: sched, onExpire: onExpire}
}

// Start arms the timer; restarting replaces any running countdown.
func (t *SafetyTimer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.deadline = time.Now().Add(d)
	t.cancel = t.sched.OnceAfterCancel(d, scheduler.FuncJob(func(ctx context.Context) {
		t.mu.Lock()
		if t.cancel == nil {
			t.mu.Unlock()
			return
		}
		t.cancel = nil
		t.deadline = time.Time{}
		t.mu.Unlock()
		t.onExpire()
	}))
}

// CheckIn marks the user safe and disarms the timer.
func (t *SafetyTimer) CheckIn() bool {
	return t.stop()
}

// Stop cancels the timer without a check-in; same disarm, different intent.
func (t *SafetyTimer) Stop() bool {
	return t.stop()
}

func (t *SafetyTimer) stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel == nil {
		return false
	}
	t.cancel()
	t.cancel = nil
	t.deadline = time.Time{}
	return true
}

// Remaining reports time left, zero when idle.
func (t *SafetyTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel == nil {
		return 0
	}
	if d := time.Until(t.deadline); d > 0 {
		return d
	}
	return 0
}

func (t *SafetyTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
