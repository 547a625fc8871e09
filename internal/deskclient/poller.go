package deskclient

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/costalopes/focusgato/internal/pending"
	"github.com/costalopes/focusgato/internal/pomodoro"
	"github.com/costalopes/focusgato/internal/syncx"
)

// Poller drains the relay's pending actions on a fixed interval and applies
// them in flush order. Consecutive start-pomodoro actions in one flush each
// restart the timer, so only the last one's mode persists.
type Poller struct {
	client   *Client
	pet      *Pet
	timer    *pomodoro.Timer
	interval time.Duration
	log      *logrus.Entry
}

func NewPoller(client *Client, pet *Pet, timer *pomodoro.Timer, interval time.Duration, log *logrus.Entry) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Poller{
		client:   client,
		pet:      pet,
		timer:    timer,
		interval: interval,
		log:      log,
	}
}

func (p *Poller) Run(ctx context.Context) {
	syncx.RunInterval(ctx, p.interval, true, p.Poll)
}

// Poll drains and applies one batch.
func (p *Poller) Poll(ctx context.Context) {
	actions := p.client.FetchPendingActions(ctx)
	for _, a := range actions {
		p.apply(ctx, a)
	}
}

func (p *Poller) apply(ctx context.Context, a pending.Action) {
	switch a.Type {
	case pending.TypeStartPomodoro:
		mode, err := pomodoro.ParseMode(string(a.Mode))
		if err != nil {
			p.log.WithField("mode", a.Mode).Warn("ignoring start-pomodoro with bad mode")
			return
		}
		p.timer.Start(mode)
		p.log.WithFields(logrus.Fields{"mode": mode, "user": a.User}).Info("pomodoro iniciado pelo chat")
	default:
		p.pet.Apply(ctx, a)
	}
}
