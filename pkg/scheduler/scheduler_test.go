package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestOnceAfterCancel(t *testing.T) {
	s := New()
	defer s.Stop()

	t.Run("runs after delay", func(t *testing.T) {
		var ran atomic.Int32
		s.OnceAfterCancel(30*time.Millisecond, FuncJob(func(ctx context.Context) { ran.Add(1) }))
		time.Sleep(100 * time.Millisecond)
		if ran.Load() != 1 {
			t.Errorf("expected one run, got %d", ran.Load())
		}
	})

	t.Run("cancel prevents the run", func(t *testing.T) {
		var ran atomic.Int32
		cancel := s.OnceAfterCancel(50*time.Millisecond, FuncJob(func(ctx context.Context) { ran.Add(1) }))
		cancel()
		time.Sleep(120 * time.Millisecond)
		if ran.Load() != 0 {
			t.Errorf("cancelled job ran %d times", ran.Load())
		}
	})

	t.Run("scheduler stop prevents pending jobs", func(t *testing.T) {
		local := New()
		var ran atomic.Int32
		local.OnceAfterCancel(50*time.Millisecond, FuncJob(func(ctx context.Context) { ran.Add(1) }))
		local.Stop()
		time.Sleep(120 * time.Millisecond)
		if ran.Load() != 0 {
			t.Errorf("job ran after scheduler stop")
		}
	})
}

func TestEvery(t *testing.T) {
	s := New()
	var ran atomic.Int32
	s.Every(20*time.Millisecond, FuncJob(func(ctx context.Context) { ran.Add(1) }))
	time.Sleep(110 * time.Millisecond)
	s.Stop()

	got := ran.Load()
	if got < 2 {
		t.Errorf("expected repeated runs, got %d", got)
	}
}
