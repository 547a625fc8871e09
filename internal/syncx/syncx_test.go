package syncx

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroup_StopWaitsForGoroutines(t *testing.T) {
	t.Parallel()

	g := NewGroup(context.Background())
	var exited atomic.Bool
	g.Go(func(ctx context.Context) {
		<-ctx.Done()
		exited.Store(true)
	})

	g.Stop()
	if !exited.Load() {
		t.Fatalf("Stop returned before the goroutine exited")
	}
}

func TestRunInterval_ImmediateAndTicks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var n int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunInterval(ctx, 5*time.Millisecond, true, func(ctx context.Context) {
			if atomic.AddInt32(&n, 1) >= 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("RunInterval did not stop after cancel")
	}
	if atomic.LoadInt32(&n) < 3 {
		t.Fatalf("expected at least 3 runs, got %d", n)
	}
}

func TestRunInterval_NilFnWaitsForDone(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunInterval(ctx, time.Millisecond, true, nil)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("RunInterval did not return after ctx done")
	}
}
