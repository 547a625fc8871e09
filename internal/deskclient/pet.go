package deskclient

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/costalopes/focusgato/internal/cat"
	"github.com/costalopes/focusgato/internal/pending"
)

const (
	hungerPerFeed   = 25
	affectionPerPet = 10
	xpPerFeed       = 10
	xpPerPet        = 5
	hungryThreshold = 80
)

// Pet is the desk side's source of truth: the shared happiness/energy/mood
// rules plus the richer hunger/affection/XP model the relay never sees. Every
// mutation pushes a fresh snapshot so the relay's shadow copy converges.
type Pet struct {
	client   *Client
	log      *logrus.Entry
	userName string

	mu        sync.Mutex
	state     cat.State
	hunger    int
	affection int
	xp        int
	level     int
	// alerted latches the hungry alert until the next feed.
	alerted bool
}

func NewPet(client *Client, userName string, log *logrus.Entry) *Pet {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Pet{
		client:   client,
		log:      log,
		userName: userName,
		state:    cat.DefaultState(),
		hunger:   30,
		level:    1,
	}
}

// Snapshot returns the shared-model view of the pet.
func (p *Pet) Snapshot() cat.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pet) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *Pet) Hunger() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hunger
}

// Feed applies the shared feed rules plus the rich-model deltas, then pushes
// the snapshot.
func (p *Pet) Feed(ctx context.Context) cat.State {
	p.mu.Lock()
	cat.ApplyFeed(&p.state, time.Now())
	p.hunger = cat.Clamp(p.hunger - hungerPerFeed)
	p.alerted = false
	p.gainXP(xpPerFeed)
	state := p.state
	p.mu.Unlock()

	p.client.PostCatStatus(ctx, state)
	return state
}

// Cuddle applies the shared pet rules plus affection and XP, then pushes the
// snapshot.
func (p *Pet) Cuddle(ctx context.Context) cat.State {
	p.mu.Lock()
	cat.ApplyPet(&p.state, time.Now())
	p.affection = cat.Clamp(p.affection + affectionPerPet)
	p.gainXP(xpPerPet)
	state := p.state
	p.mu.Unlock()

	p.client.PostCatStatus(ctx, state)
	return state
}

// AdvanceHunger moves the hunger meter forward (called on a slow ticker).
// Crossing the threshold drains the shared stats, posts the hungry alert once
// and latches until the next feed.
func (p *Pet) AdvanceHunger(ctx context.Context, delta int) {
	p.mu.Lock()
	p.hunger = cat.Clamp(p.hunger + delta)
	hungry := p.hunger >= hungryThreshold
	if hungry {
		p.state.Happiness = cat.Clamp(p.state.Happiness - 5)
		p.state.Energy = cat.Clamp(p.state.Energy - 5)
		p.state.Mood = cat.MoodHungry
	} else {
		p.state.Mood = cat.MoodFor(p.state.Happiness, p.state.Energy)
	}
	notify := hungry && !p.alerted
	if notify {
		p.alerted = true
	}
	state := p.state
	p.mu.Unlock()

	p.client.PostCatStatus(ctx, state)
	if notify {
		p.client.PostCatHungry(ctx, state, p.userName)
	}
}

// Apply runs one drained relay action against the local model. Feed and pet
// actions use the same deterministic rules the relay applied to its shadow
// copy, so the two sides converge without conflict resolution.
func (p *Pet) Apply(ctx context.Context, a pending.Action) {
	switch a.Type {
	case pending.TypeFeedCat:
		p.Feed(ctx)
	case pending.TypePetCat:
		p.Cuddle(ctx)
	default:
		p.log.WithField("type", a.Type).Debug("ignoring pending action")
	}
}

// gainXP assumes p.mu is held. Level N needs N*100 XP.
func (p *Pet) gainXP(n int) {
	p.xp += n
	for p.xp >= p.level*100 {
		p.xp -= p.level * 100
		p.level++
		p.log.WithField("level", p.level).Info("gato subiu de nível")
	}
}
