// Package ticket tracks voice presence in the "request help" channel and
// manages the per-user support-channel lifecycle: open on join, arm a grace
// timer on absence, close when the timer fires uninterrupted.
package ticket

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Opener performs the platform side effects of the ticket lifecycle. Open
// failures leave no ticket registered; Close failures are the implementation's
// to log (the map entry is already gone either way).
type Opener interface {
	OpenTicket(ctx context.Context, userID, username string, seq int) (channelID string, err error)
	CloseTicket(ctx context.Context, userID, channelID string)
}

// VoiceUpdate is one user's authoritative voice membership change.
type VoiceUpdate struct {
	UserID    string
	Username  string
	ChannelID string // "" when the user left voice entirely
}

type ticket struct {
	channelID string
	timer     Timer
	// pendingClose identifies the currently armed close; the expiry callback
	// only proceeds when its token is still the active one, so a cancel that
	// loses the race against an already-fired timer still wins.
	pendingClose *struct{}
}

type Manager struct {
	trackedChannelID string
	categoryID       string
	grace            time.Duration
	clock            Clock
	opener           Opener
	log              *logrus.Entry

	// parentOf resolves a channel's parent category ("" on unknown/error),
	// so "inside the ticket area" covers the user's own ticket channel.
	parentOf func(ctx context.Context, channelID string) string

	mu      sync.Mutex
	tickets map[string]*ticket
	seq     int
}

type ManagerOptions struct {
	TrackedChannelID string
	CategoryID       string
	Grace            time.Duration
	Clock            Clock
	Opener           Opener
	ParentOf         func(ctx context.Context, channelID string) string
	Log              *logrus.Entry
}

func NewManager(opts ManagerOptions) *Manager {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock()
	}
	parentOf := opts.ParentOf
	if parentOf == nil {
		parentOf = func(context.Context, string) string { return "" }
	}
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		trackedChannelID: opts.TrackedChannelID,
		categoryID:       opts.CategoryID,
		grace:            opts.Grace,
		clock:            clock,
		opener:           opts.Opener,
		parentOf:         parentOf,
		log:              log,
		tickets:          make(map[string]*ticket),
	}
}

// HandleVoiceUpdate runs one user's state transition. Events for the same
// user arrive sequentially on the gateway read loop; the mutex exists because
// grace timers fire on their own goroutine.
func (m *Manager) HandleVoiceUpdate(ctx context.Context, ev VoiceUpdate) {
	if ev.UserID == "" {
		return
	}

	inArea := m.inTrackedArea(ctx, ev.ChannelID)

	m.mu.Lock()
	tk, exists := m.tickets[ev.UserID]

	if inArea {
		if exists {
			// Re-trigger while a ticket is open: cancel any pending close and
			// return without touching the ticket.
			if tk.timer != nil {
				tk.timer.Stop()
				tk.timer = nil
				tk.pendingClose = nil
				m.log.WithField("user", ev.UserID).Info("user returned, ticket close canceled")
			}
			m.mu.Unlock()
			return
		}

		// Only joining the tracked help channel itself opens a ticket;
		// wandering into the ticket category without one does not.
		if ev.ChannelID != m.trackedChannelID {
			m.mu.Unlock()
			return
		}

		m.seq++
		seq := m.seq
		m.mu.Unlock()

		channelID, err := m.opener.OpenTicket(ctx, ev.UserID, ev.Username, seq)
		if err != nil {
			m.log.WithError(err).WithField("user", ev.UserID).Error("ticket open failed")
			return
		}

		m.mu.Lock()
		m.tickets[ev.UserID] = &ticket{channelID: channelID}
		m.mu.Unlock()
		m.log.WithFields(logrus.Fields{"user": ev.UserID, "channel": channelID}).Info("ticket opened")
		return
	}

	// User is outside the tracked area.
	if !exists {
		m.mu.Unlock()
		return
	}
	if tk.timer != nil {
		// Close already armed.
		m.mu.Unlock()
		return
	}

	token := &struct{}{}
	tk.pendingClose = token
	tk.timer = m.clock.AfterFunc(m.grace, func() {
		m.expire(ev.UserID, token)
	})
	m.mu.Unlock()
	m.log.WithField("user", ev.UserID).Infof("user absent, ticket closes in %s", m.grace)
}

func (m *Manager) inTrackedArea(ctx context.Context, channelID string) bool {
	if channelID == "" {
		return false
	}
	if channelID == m.trackedChannelID {
		return true
	}
	return m.categoryID != "" && m.parentOf(ctx, channelID) == m.categoryID
}

// expire runs on the timer goroutine. The token check makes a cancel that
// raced an in-flight fire a no-op, and a second fire for an already-removed
// ticket safe.
func (m *Manager) expire(userID string, token *struct{}) {
	m.mu.Lock()
	tk, ok := m.tickets[userID]
	if !ok || tk.pendingClose != token {
		m.mu.Unlock()
		return
	}
	delete(m.tickets, userID)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	m.opener.CloseTicket(ctx, userID, tk.channelID)
	m.log.WithFields(logrus.Fields{"user": userID, "channel": tk.channelID}).Info("ticket closed")
}

// Has reports whether the user currently holds an open ticket.
func (m *Manager) Has(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tickets[userID]
	return ok
}

// ChannelID returns the user's ticket channel, or "" without one.
func (m *Manager) ChannelID(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tk, ok := m.tickets[userID]; ok {
		return tk.channelID
	}
	return ""
}

// Open returns the number of open tickets.
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}
