package emergency

import (
	"sync/atomic"
	"testing"
	"time"

	"suraksha/pkg/scheduler"

	"github.com/stretchr/testify/assert"
)

func TestHoldTrigger(t *testing.T) {
	sched := scheduler.New()
	defer sched.Stop()

	t.Run("early release never fires", func(t *testing.T) {
		var fired atomic.Int32
		h := NewHoldTrigger(80*time.Millisecond, sched, func() { fired.Add(1) })

		h.Press()
		time.Sleep(30 * time.Millisecond)
		assert.True(t, h.Pressed())
		assert.Greater(t, h.Progress(), 0.0)
		h.Release()

		time.Sleep(150 * time.Millisecond)
		assert.Equal(t, int32(0), fired.Load())
		assert.False(t, h.Pressed())
		assert.Zero(t, h.Progress())
	})

	t.Run("completed hold fires exactly once", func(t *testing.T) {
		var fired atomic.Int32
		h := NewHoldTrigger(50*time.Millisecond, sched, func() { fired.Add(1) })

		h.Press()
		time.Sleep(150 * time.Millisecond)
		assert.Equal(t, int32(1), fired.Load())

		// Release after firing is a no-op.
		h.Release()
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, int32(1), fired.Load())
	})

	t.Run("re-press restarts the countdown", func(t *testing.T) {
		var fired atomic.Int32
		h := NewHoldTrigger(100*time.Millisecond, sched, func() { fired.Add(1) })

		h.Press()
		time.Sleep(60 * time.Millisecond)
		h.Press() // restart
		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, int32(0), fired.Load(), "restarted countdown must not have fired yet")

		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, int32(1), fired.Load())
	})
}
