// Package pending is the relay-side mailbox of discrete events awaiting the
// desk client's next poll. Delivery is at-most-once: a flushed action is gone,
// and nothing survives a relay restart.
package pending

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/costalopes/focusgato/internal/pomodoro"
)

type Type string

const (
	TypeStartPomodoro Type = "start-pomodoro"
	TypeFeedCat       Type = "feed-cat"
	TypePetCat        Type = "pet-cat"
)

// Action is one relay-side interaction (button click or chat command). Mode is
// only set for start-pomodoro.
type Action struct {
	ID        string        `json:"id"`
	Type      Type          `json:"type"`
	User      string        `json:"user"`
	Mode      pomodoro.Mode `json:"mode,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewAction(t Type, user string) Action {
	return Action{
		ID:        uuid.NewString(),
		Type:      t,
		User:      user,
		Timestamp: time.Now().UTC(),
	}
}

type Queue struct {
	mu      sync.Mutex
	actions []Action
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Add(a Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.actions = append(q.actions, a)
}

// Flush snapshots and clears the queue under one lock acquisition, so an
// action added concurrently is either in this flush or the next, never both
// and never lost.
func (q *Queue) Flush() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.actions
	q.actions = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}
