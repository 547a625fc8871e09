// Package bot routes gateway events into the ticket manager, the pending
// queue and the shadow cat state, and performs every platform side effect of
// the relay: ticket channels, notifications, command replies.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/costalopes/focusgato/internal/cat"
	"github.com/costalopes/focusgato/internal/chatapi"
	"github.com/costalopes/focusgato/internal/gateway"
	"github.com/costalopes/focusgato/internal/pending"
	"github.com/costalopes/focusgato/internal/pomodoro"
	"github.com/costalopes/focusgato/internal/sprite"
	"github.com/costalopes/focusgato/internal/ticket"
)

// Platform is the slice of the chat API the bot uses. *chatapi.Client
// satisfies it.
type Platform interface {
	SendMessage(ctx context.Context, channelID string, msg chatapi.Message) error
	SendDM(ctx context.Context, userID string, msg chatapi.Message) error
	CreateChannel(ctx context.Context, req chatapi.CreateChannelRequest) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	ChannelParent(ctx context.Context, channelID string) (string, error)
	RememberParent(channelID, parentID string)
	UploadPNG(ctx context.Context, filename string, data []byte) (string, error)
}

type Options struct {
	Platform Platform
	Queue    *pending.Queue
	CatStore *cat.Store
	Log      *logrus.Entry

	// BotUserID filters the bot's own messages out of command handling.
	BotUserID string

	VoiceChannelID   string
	TicketCategoryID string
	SupportRoleID    string
	NotifyChannelID  string
	TicketGrace      time.Duration

	// Clock overrides the ticket grace timer source (nil = wall clock).
	Clock ticket.Clock
	// Connected reports gateway liveness for the health endpoint (nil = true).
	Connected func() bool
}

type Bot struct {
	platform Platform
	queue    *pending.Queue
	catStore *cat.Store
	log      *logrus.Entry

	botUserID       string
	supportRoleID   string
	notifyChannelID string
	categoryID      string

	tickets   *ticket.Manager
	connected func() bool
}

func New(opts Options) *Bot {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	connected := opts.Connected
	if connected == nil {
		connected = func() bool { return true }
	}

	b := &Bot{
		platform:        opts.Platform,
		queue:           opts.Queue,
		catStore:        opts.CatStore,
		log:             log,
		botUserID:       opts.BotUserID,
		supportRoleID:   opts.SupportRoleID,
		notifyChannelID: opts.NotifyChannelID,
		categoryID:      opts.TicketCategoryID,
		connected:       connected,
	}
	b.tickets = ticket.NewManager(ticket.ManagerOptions{
		TrackedChannelID: opts.VoiceChannelID,
		CategoryID:       opts.TicketCategoryID,
		Grace:            opts.TicketGrace,
		Clock:            opts.Clock,
		Opener:           b,
		ParentOf:         b.parentOf,
		Log:              log,
	})
	return b
}

// Tickets exposes the manager for health inspection.
func (b *Bot) Tickets() *ticket.Manager { return b.tickets }

func (b *Bot) parentOf(ctx context.Context, channelID string) string {
	parent, err := b.platform.ChannelParent(ctx, channelID)
	if err != nil {
		b.log.WithError(err).WithField("channel", channelID).Warn("channel parent lookup failed")
		return ""
	}
	return parent
}

// OnVoiceUpdate feeds the ticket state machine.
func (b *Bot) OnVoiceUpdate(ctx context.Context, ev gateway.VoiceEvent) error {
	b.tickets.HandleVoiceUpdate(ctx, ticket.VoiceUpdate{
		UserID:    ev.UserID,
		Username:  ev.Username,
		ChannelID: ev.ChannelID,
	})
	return nil
}

// OnMessage handles the prefix commands. Messages from bots (including our
// own) and anything that is not a command are ignored.
func (b *Bot) OnMessage(ctx context.Context, ev gateway.MessageEvent) error {
	if ev.AuthorIsBot || ev.AuthorID == b.botUserID {
		return nil
	}

	fields := strings.Fields(ev.Content)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "!gato":
		return b.postCatStatus(ctx, ev.ChannelID)
	case "!alimentar":
		state := b.catStore.Feed(time.Now())
		b.queue.Add(pending.NewAction(pending.TypeFeedCat, ev.AuthorUsername))
		return b.platform.SendMessage(ctx, ev.ChannelID, chatapi.Message{
			Content: fmt.Sprintf("🐟 %s comeu! Felicidade %d, energia %d.", state.Name, state.Happiness, state.Energy),
		})
	case "!carinho":
		state := b.catStore.Pet(time.Now())
		b.queue.Add(pending.NewAction(pending.TypePetCat, ev.AuthorUsername))
		return b.platform.SendMessage(ctx, ev.ChannelID, chatapi.Message{
			Content: fmt.Sprintf("💜 %s ronronou! Felicidade %d.", state.Name, state.Happiness),
		})
	case "!ajuda":
		return b.platform.SendMessage(ctx, ev.ChannelID, chatapi.Message{
			Embed: &chatapi.Embed{
				Title: "Comandos",
				Description: "`!gato` — status do gato\n" +
					"`!alimentar` — alimentar o gato\n" +
					"`!carinho` — fazer carinho\n" +
					"`!ajuda` — esta mensagem\n\n" +
					"Entre no canal de voz de ajuda para abrir um pedido.",
				Color: colorInfo,
			},
		})
	default:
		return nil
	}
}

// OnInteraction handles button clicks on messages the bot posted.
func (b *Bot) OnInteraction(ctx context.Context, ev gateway.InteractionEvent) error {
	switch {
	case strings.HasPrefix(ev.CustomID, "pomodoro:"):
		mode, err := pomodoro.ParseMode(strings.TrimPrefix(ev.CustomID, "pomodoro:"))
		if err != nil {
			return err
		}
		a := pending.NewAction(pending.TypeStartPomodoro, ev.Username)
		a.Mode = mode
		b.queue.Add(a)
		return b.platform.SendMessage(ctx, ev.ChannelID, chatapi.Message{
			Content: fmt.Sprintf("⏱️ Pedido enviado: %s (%s) começa no próximo sync.", modeLabel(mode), mode.Duration()),
		})
	case ev.CustomID == "cat:feed":
		state := b.catStore.Feed(time.Now())
		b.queue.Add(pending.NewAction(pending.TypeFeedCat, ev.Username))
		return b.platform.SendMessage(ctx, ev.ChannelID, chatapi.Message{
			Content: fmt.Sprintf("🐟 %s comeu! Felicidade %d, energia %d.", state.Name, state.Happiness, state.Energy),
		})
	case ev.CustomID == "cat:pet":
		state := b.catStore.Pet(time.Now())
		b.queue.Add(pending.NewAction(pending.TypePetCat, ev.Username))
		return b.platform.SendMessage(ctx, ev.ChannelID, chatapi.Message{
			Content: fmt.Sprintf("💜 %s ronronou! Felicidade %d.", state.Name, state.Happiness),
		})
	case ev.CustomID == "cat:status":
		return b.postCatStatus(ctx, ev.ChannelID)
	default:
		return nil
	}
}

// postCatStatus sends the status embed with the rendered sprite attached. A
// render or upload failure degrades to the text-only embed.
func (b *Bot) postCatStatus(ctx context.Context, channelID string) error {
	state := b.catStore.Snapshot()

	msg := chatapi.Message{
		Embed: &chatapi.Embed{
			Title: fmt.Sprintf("🐱 %s", state.Name),
			Description: fmt.Sprintf("Humor: %s\nFelicidade: %d/100\nEnergia: %d/100",
				moodLabel(state.Mood), state.Happiness, state.Energy),
			Color: colorInfo,
		},
		Buttons: []chatapi.Button{
			{CustomID: "cat:feed", Label: "Alimentar", Style: "primary"},
			{CustomID: "cat:pet", Label: "Carinho", Style: "secondary"},
		},
	}

	if png, err := sprite.RenderPNG(state.Mood, state.ColorIdx); err != nil {
		b.log.WithError(err).Warn("sprite render failed")
	} else if key, err := b.platform.UploadPNG(ctx, "gato.png", png); err != nil {
		b.log.WithError(err).Warn("sprite upload failed")
	} else {
		msg.AttachmentKey = key
	}

	return b.platform.SendMessage(ctx, channelID, msg)
}

// OpenTicket creates the private help channel for one user. The intro message
// is best-effort: a send failure leaves the ticket open.
func (b *Bot) OpenTicket(ctx context.Context, userID, username string, seq int) (string, error) {
	req := chatapi.CreateChannelRequest{
		Name:         fmt.Sprintf("pedido-de-ajuda-%d", seq),
		ParentID:     b.categoryID,
		Topic:        fmt.Sprintf("Pedido de ajuda de %s", username),
		AllowUserIDs: []string{userID},
	}
	if b.supportRoleID != "" {
		req.AllowRoleIDs = []string{b.supportRoleID}
	}

	channelID, err := b.platform.CreateChannel(ctx, req)
	if err != nil {
		return "", err
	}
	b.platform.RememberParent(channelID, b.categoryID)

	intro := chatapi.Message{
		Content: fmt.Sprintf("Olá <@%s>! A equipe de apoio já foi avisada. Descreve aqui o que você precisa.", userID),
	}
	if err := b.platform.SendMessage(ctx, channelID, intro); err != nil {
		b.log.WithError(err).WithField("channel", channelID).Warn("ticket intro failed")
	}
	return channelID, nil
}

// CloseTicket deletes the channel and DMs the user. Each failure is logged
// and never retried; a failed deletion can leak a channel.
func (b *Bot) CloseTicket(ctx context.Context, userID, channelID string) {
	if err := b.platform.DeleteChannel(ctx, channelID); err != nil {
		b.log.WithError(err).WithField("channel", channelID).Error("ticket channel deletion failed")
	}
	notice := chatapi.Message{
		Content: "Seu pedido de ajuda foi encerrado por inatividade. Entre no canal de voz de novo se ainda precisar. 💜",
	}
	if err := b.platform.SendDM(ctx, userID, notice); err != nil {
		b.log.WithError(err).WithField("user", userID).Warn("ticket closing DM failed")
	}
}
