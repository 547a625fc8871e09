package cat

import (
	"strings"
	"sync"
	"time"
)

// Store guards the relay's shadow copy. Gateway handlers, HTTP handlers and
// ticket timers all touch it, so access goes through the mutex.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store {
	return &Store{state: DefaultState()}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Upsert merges a partial snapshot pushed by the desk client. Missing fields
// keep their prior values; numeric stats are rounded then clamped.
type Partial struct {
	Name      *string
	ColorIdx  *int
	Happiness *float64
	Energy    *float64
	Mood      *Mood
}

func (s *Store) Upsert(p Partial) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		s.state.Name = strings.TrimSpace(*p.Name)
	}
	if p.ColorIdx != nil {
		s.state.ColorIdx = *p.ColorIdx
	}
	if p.Happiness != nil {
		s.state.Happiness = Clamp(Round(*p.Happiness))
	}
	if p.Energy != nil {
		s.state.Energy = Clamp(Round(*p.Energy))
	}
	if p.Mood != nil && *p.Mood != "" {
		s.state.Mood = *p.Mood
	}
	return s.state
}

// Feed applies the feed delta and returns the new state.
func (s *Store) Feed(now time.Time) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ApplyFeed(&s.state, now)
	return s.state
}

// Pet applies the affection delta and returns the new state.
func (s *Store) Pet(now time.Time) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ApplyPet(&s.state, now)
	return s.state
}

// ForceHungry flags the cat as hungry (desk client alert path).
func (s *Store) ForceHungry() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Mood = MoodHungry
	return s.state
}
