package pending

import (
	"sync"
	"testing"

	"github.com/costalopes/focusgato/internal/pomodoro"
)

func TestFlush_PreservesInsertionOrder(t *testing.T) {
	q := NewQueue()
	a := NewAction(TypeFeedCat, "ana")
	b := NewAction(TypePetCat, "ana")
	c := NewAction(TypeStartPomodoro, "ana")
	c.Mode = pomodoro.ModeShort

	q.Add(a)
	q.Add(b)
	q.Add(c)

	got := q.Flush()
	if len(got) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(got))
	}
	if got[0].ID != a.ID || got[1].ID != b.ID || got[2].ID != c.ID {
		t.Fatalf("flush out of order: %v", got)
	}
	if got[2].Mode != pomodoro.ModeShort {
		t.Fatalf("mode lost: %+v", got[2])
	}
}

func TestFlush_SecondCallIsEmpty(t *testing.T) {
	q := NewQueue()
	q.Add(NewAction(TypeFeedCat, "ana"))

	first := q.Flush()
	if len(first) != 1 {
		t.Fatalf("expected 1 action on first flush, got %d", len(first))
	}
	second := q.Flush()
	if len(second) != 0 {
		t.Fatalf("expected empty second flush, got %d", len(second))
	}
}

func TestAdd_AfterFlushGoesToNextFlush(t *testing.T) {
	q := NewQueue()
	q.Add(NewAction(TypeFeedCat, "ana"))
	_ = q.Flush()

	late := NewAction(TypePetCat, "ana")
	q.Add(late)

	got := q.Flush()
	if len(got) != 1 || got[0].ID != late.ID {
		t.Fatalf("late action not delivered exactly once: %v", got)
	}
}

func TestQueue_ConcurrentAddFlushNoLoss(t *testing.T) {
	q := NewQueue()

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Add(NewAction(TypeFeedCat, "ana"))
		}
	}()

	var delivered int
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			delivered += len(q.Flush())
		}
	}()

	wg.Wait()
	delivered += len(q.Flush())
	if delivered != n {
		t.Fatalf("delivered %d actions, want %d (no loss, no duplication)", delivered, n)
	}
}

func TestNewAction_HasIDAndTimestamp(t *testing.T) {
	a := NewAction(TypeStartPomodoro, "ana")
	if a.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if a.Timestamp.IsZero() {
		t.Fatalf("expected timestamp")
	}
	if a.User != "ana" || a.Type != TypeStartPomodoro {
		t.Fatalf("unexpected action: %+v", a)
	}
}
