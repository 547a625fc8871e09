// Package pomodoro holds the timer modes and the desk client's session
// engine. The relay keeps no session state; it only receives one-shot
// "timer ended" notifications and may inject "start timer" requests.
package pomodoro

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type Mode string

const (
	ModeFocus Mode = "focus"
	ModeShort Mode = "short"
	ModeLong  Mode = "long"
)

const (
	FocusDuration = 25 * time.Minute
	ShortDuration = 5 * time.Minute
	LongDuration  = 15 * time.Minute
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFocus:
		return ModeFocus, nil
	case ModeShort:
		return ModeShort, nil
	case ModeLong:
		return ModeLong, nil
	default:
		return "", fmt.Errorf("invalid pomodoro mode: %q", s)
	}
}

func (m Mode) Duration() time.Duration {
	switch m {
	case ModeShort:
		return ShortDuration
	case ModeLong:
		return LongDuration
	default:
		return FocusDuration
	}
}

// Timer is the desk client's session engine. Ticks are driven externally
// (a wall-clock ticker in the binary, direct calls in tests), one per second.
type Timer struct {
	mu       sync.Mutex
	mode     Mode
	left     time.Duration
	running  bool
	sessions int

	// OnComplete fires outside the lock when the countdown reaches zero.
	OnComplete func(mode Mode, sessions int)
}

func NewTimer() *Timer {
	return &Timer{mode: ModeFocus, left: FocusDuration}
}

// Start adopts the mode, resets the countdown to the mode's duration and
// begins running, overriding whatever state existed (last write wins).
func (t *Timer) Start(mode Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
	t.left = mode.Duration()
	t.running = true
}

func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Tick advances the countdown by one second. On completion the timer stops,
// focus completions bump the session count, and OnComplete fires.
func (t *Timer) Tick() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}

	t.left -= time.Second
	if t.left > 0 {
		t.mu.Unlock()
		return
	}

	t.left = 0
	t.running = false
	if t.mode == ModeFocus {
		t.sessions++
	}
	mode := t.mode
	sessions := t.sessions
	onComplete := t.OnComplete
	t.mu.Unlock()

	if onComplete != nil {
		onComplete(mode, sessions)
	}
}

func (t *Timer) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.left
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) Sessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions
}
