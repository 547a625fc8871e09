package pomodoro

import (
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"focus": ModeFocus,
		"Short": ModeShort,
		" long": ModeLong,
	} {
		got, err := ParseMode(in)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseMode("nap"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}

func TestModeDurations(t *testing.T) {
	if ModeFocus.Duration() != 25*time.Minute {
		t.Fatalf("focus duration = %s", ModeFocus.Duration())
	}
	if ModeShort.Duration() != 5*time.Minute {
		t.Fatalf("short duration = %s", ModeShort.Duration())
	}
	if ModeLong.Duration() != 15*time.Minute {
		t.Fatalf("long duration = %s", ModeLong.Duration())
	}
}

func TestTimer_StartOverridesRunningState(t *testing.T) {
	tm := NewTimer()
	tm.Start(ModeFocus)
	tm.Tick()
	tm.Tick()

	tm.Start(ModeShort)
	if tm.Mode() != ModeShort {
		t.Fatalf("mode = %q, want short", tm.Mode())
	}
	if tm.Remaining() != ShortDuration {
		t.Fatalf("remaining = %s, want full short duration", tm.Remaining())
	}
	if !tm.Running() {
		t.Fatalf("expected timer running")
	}
}

func TestTimer_CompletionFiresOnceAndCountsFocus(t *testing.T) {
	tm := NewTimer()

	var completions []Mode
	var gotSessions int
	tm.OnComplete = func(mode Mode, sessions int) {
		completions = append(completions, mode)
		gotSessions = sessions
	}

	tm.Start(ModeFocus)
	for i := 0; i < int(FocusDuration/time.Second); i++ {
		tm.Tick()
	}

	if len(completions) != 1 || completions[0] != ModeFocus {
		t.Fatalf("unexpected completions: %v", completions)
	}
	if gotSessions != 1 {
		t.Fatalf("sessions = %d, want 1", gotSessions)
	}
	if tm.Running() {
		t.Fatalf("timer should stop on completion")
	}

	// Ticking a stopped timer is a no-op.
	tm.Tick()
	if len(completions) != 1 {
		t.Fatalf("completion fired again on stopped timer")
	}
}

func TestTimer_BreakDoesNotCountSession(t *testing.T) {
	tm := NewTimer()
	tm.Start(ModeShort)
	for i := 0; i < int(ShortDuration/time.Second); i++ {
		tm.Tick()
	}
	if tm.Sessions() != 0 {
		t.Fatalf("sessions = %d, want 0 after a break", tm.Sessions())
	}
}

func TestTimer_PauseStopsTicks(t *testing.T) {
	tm := NewTimer()
	tm.Start(ModeFocus)
	tm.Tick()
	before := tm.Remaining()

	tm.Pause()
	tm.Tick()
	if tm.Remaining() != before {
		t.Fatalf("remaining changed while paused")
	}
}
