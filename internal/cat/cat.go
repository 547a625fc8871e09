// Package cat holds the pet state rules shared by the relay's shadow copy and
// the desk client's richer model. Both sides apply the same deltas and mood
// derivation, so the two independently-evolving copies stay visually
// consistent without reconciliation.
package cat

import (
	"math"
	"time"
)

type Mood string

const (
	MoodNeutral Mood = "neutral"
	MoodHappy   Mood = "happy"
	MoodEating  Mood = "eating"
	MoodHungry  Mood = "hungry"
	MoodSleepy  Mood = "sleepy"
	MoodSad     Mood = "sad"
)

const (
	FeedHappiness = 15
	FeedEnergy    = 10
	PetHappiness  = 8
)

// State is the relay's shadow copy of the pet: just enough to render chat
// embeds and apply command deltas.
type State struct {
	Name      string    `json:"name"`
	ColorIdx  int       `json:"colorIdx"`
	Happiness int       `json:"happiness"`
	Energy    int       `json:"energy"`
	Mood      Mood      `json:"mood"`
	LastFed   time.Time `json:"lastFed,omitempty"`
	LastPet   time.Time `json:"lastPet,omitempty"`
}

func DefaultState() State {
	return State{
		Name:      "Gato",
		Happiness: 70,
		Energy:    70,
		Mood:      MoodNeutral,
	}
}

// Clamp bounds a stat to [0, 100].
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Round converts a loosely-typed numeric stat (JSON float) to the int domain.
func Round(v float64) int {
	return int(math.Round(v))
}

// MoodFor derives the resting mood from the stats. Transient moods (eating,
// hungry) are set by events and decay back to this on the next derivation.
func MoodFor(happiness, energy int) Mood {
	switch {
	case energy <= 20:
		return MoodSleepy
	case happiness <= 30:
		return MoodSad
	case happiness >= 80:
		return MoodHappy
	default:
		return MoodNeutral
	}
}

// ApplyFeed mutates s with the feed delta: +15 happiness, +10 energy, mood
// eating. Clamped.
func ApplyFeed(s *State, now time.Time) {
	s.Happiness = Clamp(s.Happiness + FeedHappiness)
	s.Energy = Clamp(s.Energy + FeedEnergy)
	s.Mood = MoodEating
	s.LastFed = now
}

// ApplyPet mutates s with the affection delta: +8 happiness, mood happy.
func ApplyPet(s *State, now time.Time) {
	s.Happiness = Clamp(s.Happiness + PetHappiness)
	s.Mood = MoodHappy
	s.LastPet = now
}
