package ticket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock advances virtual time synchronously, firing due timers on the
// calling goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	fired   bool
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

type fakeOpener struct {
	mu      sync.Mutex
	opens   []string // "user:seq"
	closes  []string // "user:channel"
	openErr error
	onClose func(userID string)
}

func (o *fakeOpener) OpenTicket(_ context.Context, userID, _ string, seq int) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return "", o.openErr
	}
	o.opens = append(o.opens, fmt.Sprintf("%s:%d", userID, seq))
	return fmt.Sprintf("ticket-chan-%d", seq), nil
}

func (o *fakeOpener) CloseTicket(_ context.Context, userID, channelID string) {
	o.mu.Lock()
	onClose := o.onClose
	o.closes = append(o.closes, userID+":"+channelID)
	o.mu.Unlock()
	if onClose != nil {
		onClose(userID)
	}
}

func (o *fakeOpener) openCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.opens)
}

func (o *fakeOpener) closeCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.closes)
}

const (
	trackedChannel = "voice-help"
	category       = "cat-tickets"
	grace          = time.Minute
)

func newTestManager(opener *fakeOpener, clock Clock) *Manager {
	return NewManager(ManagerOptions{
		TrackedChannelID: trackedChannel,
		CategoryID:       category,
		Grace:            grace,
		Clock:            clock,
		Opener:           opener,
		ParentOf: func(_ context.Context, channelID string) string {
			if channelID == "ticket-chan-1" || channelID == "ticket-chan-2" {
				return category
			}
			return ""
		},
	})
}

func join(m *Manager, user, channel string) {
	m.HandleVoiceUpdate(context.Background(), VoiceUpdate{UserID: user, Username: user, ChannelID: channel})
}

func TestJoin_CreatesExactlyOneTicket(t *testing.T) {
	opener := &fakeOpener{}
	m := newTestManager(opener, &fakeClock{})

	join(m, "u1", trackedChannel)
	if !m.Has("u1") {
		t.Fatalf("expected ticket for u1")
	}
	if opener.openCount() != 1 {
		t.Fatalf("opens = %d, want 1", opener.openCount())
	}

	// Re-trigger with an active ticket and no armed timer is a no-op.
	join(m, "u1", trackedChannel)
	if opener.openCount() != 1 {
		t.Fatalf("re-trigger created a duplicate ticket")
	}
	if m.Open() != 1 {
		t.Fatalf("open tickets = %d, want 1", m.Open())
	}
}

func TestJoin_OpenFailureRegistersNothing(t *testing.T) {
	opener := &fakeOpener{openErr: errors.New("missing permission")}
	m := newTestManager(opener, &fakeClock{})

	join(m, "u1", trackedChannel)
	if m.Has("u1") {
		t.Fatalf("failed open must not register a ticket")
	}

	// The user may simply try again.
	opener.mu.Lock()
	opener.openErr = nil
	opener.mu.Unlock()
	join(m, "u1", trackedChannel)
	if !m.Has("u1") {
		t.Fatalf("retry after failure should open a ticket")
	}
}

func TestAbsence_ArmsTimerAndCloses(t *testing.T) {
	opener := &fakeOpener{}
	clock := &fakeClock{}
	m := newTestManager(opener, clock)

	join(m, "u1", trackedChannel)
	join(m, "u1", "") // left voice entirely

	clock.Advance(grace - time.Second)
	if !m.Has("u1") {
		t.Fatalf("ticket closed before grace elapsed")
	}

	clock.Advance(time.Second)
	if m.Has("u1") {
		t.Fatalf("ticket should be gone after grace")
	}
	if opener.closeCount() != 1 {
		t.Fatalf("closes = %d, want 1", opener.closeCount())
	}

	// A second expiry for the removed ticket is a safe no-op.
	clock.Advance(grace * 2)
	if opener.closeCount() != 1 {
		t.Fatalf("expiry re-entered: closes = %d", opener.closeCount())
	}
}

func TestReturn_BeforeExpiryCancelsTimer(t *testing.T) {
	opener := &fakeOpener{}
	clock := &fakeClock{}
	m := newTestManager(opener, clock)

	join(m, "u1", trackedChannel)
	join(m, "u1", "elsewhere")
	join(m, "u1", trackedChannel) // came back

	clock.Advance(grace * 3)
	if !m.Has("u1") {
		t.Fatalf("ticket closed despite user returning in time")
	}
	if opener.closeCount() != 0 {
		t.Fatalf("close ran after cancel")
	}
}

func TestReturn_ToTicketCategoryChannelAlsoCancels(t *testing.T) {
	opener := &fakeOpener{}
	clock := &fakeClock{}
	m := newTestManager(opener, clock)

	join(m, "u1", trackedChannel)
	join(m, "u1", "elsewhere")
	join(m, "u1", "ticket-chan-1") // a channel under the ticket category

	clock.Advance(grace * 2)
	if !m.Has("u1") {
		t.Fatalf("presence in the ticket category should cancel the close")
	}
}

func TestExpire_RemovesEntryBeforeCloseRuns(t *testing.T) {
	opener := &fakeOpener{}
	clock := &fakeClock{}
	m := newTestManager(opener, clock)

	var hadTicketDuringClose bool
	opener.onClose = func(userID string) {
		hadTicketDuringClose = m.Has(userID)
	}

	join(m, "u1", trackedChannel)
	join(m, "u1", "")
	clock.Advance(grace)

	if hadTicketDuringClose {
		t.Fatalf("map entry must be removed before the close side effects run")
	}
}

func TestLeave_WhileTimerArmedDoesNotRearm(t *testing.T) {
	opener := &fakeOpener{}
	clock := &fakeClock{}
	m := newTestManager(opener, clock)

	join(m, "u1", trackedChannel)
	join(m, "u1", "")
	join(m, "u1", "somewhere-else") // still absent, timer already armed

	clock.Advance(grace)
	if opener.closeCount() != 1 {
		t.Fatalf("closes = %d, want exactly 1", opener.closeCount())
	}
}

func TestSequence_IsMonotonicAcrossUsers(t *testing.T) {
	opener := &fakeOpener{}
	m := newTestManager(opener, &fakeClock{})

	join(m, "u1", trackedChannel)
	join(m, "u2", trackedChannel)

	opener.mu.Lock()
	defer opener.mu.Unlock()
	if len(opener.opens) != 2 || opener.opens[0] != "u1:1" || opener.opens[1] != "u2:2" {
		t.Fatalf("unexpected sequence assignment: %v", opener.opens)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	opener := &fakeOpener{}
	clock := &fakeClock{}
	m := newTestManager(opener, clock)

	join(m, "u1", trackedChannel)
	join(m, "u2", trackedChannel)
	join(m, "u1", "") // only u1 leaves

	clock.Advance(grace)
	if m.Has("u1") {
		t.Fatalf("u1 ticket should be closed")
	}
	if !m.Has("u2") {
		t.Fatalf("u2 ticket must be untouched by u1's expiry")
	}
}

func TestJoinUnrelatedChannel_WithoutTicketIsIgnored(t *testing.T) {
	opener := &fakeOpener{}
	m := newTestManager(opener, &fakeClock{})

	join(m, "u1", "random-voice")
	if m.Has("u1") || opener.openCount() != 0 {
		t.Fatalf("joining an unrelated channel must not open a ticket")
	}
}
