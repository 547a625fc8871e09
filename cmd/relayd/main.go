// relayd is the relay service: it logs the bot into the chat platform, keeps
// a gateway session open for voice/command/interaction events and serves the
// HTTP API the desk client talks to.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/costalopes/focusgato/internal/api"
	"github.com/costalopes/focusgato/internal/bot"
	"github.com/costalopes/focusgato/internal/cat"
	"github.com/costalopes/focusgato/internal/chatapi"
	"github.com/costalopes/focusgato/internal/config"
	"github.com/costalopes/focusgato/internal/gateway"
	"github.com/costalopes/focusgato/internal/pending"
	"github.com/costalopes/focusgato/internal/syncx"
)

func main() {
	config.LoadDotEnv("[relayd]")

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logger.WithField("app", "relayd")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	platform, err := chatapi.NewClient(cfg.APIBase, cfg.APIProxy)
	if err != nil {
		log.WithError(err).Fatal("chat api client")
	}

	botUser, err := platform.LoginBot(ctx, cfg.AccessToken)
	if err != nil {
		log.WithError(err).Fatal("bot login failed")
	}
	log.WithField("bot", botUser.Username).Info("logged in")

	queue := pending.NewQueue()
	catStore := cat.NewStore()

	var session *gateway.Session
	b := bot.New(bot.Options{
		Platform:         platform,
		Queue:            queue,
		CatStore:         catStore,
		Log:              log,
		BotUserID:        botUser.ID,
		VoiceChannelID:   cfg.VoiceChannelID,
		TicketCategoryID: cfg.TicketCategoryID,
		SupportRoleID:    cfg.SupportRoleID,
		NotifyChannelID:  cfg.NotifyChannelID,
		TicketGrace:      cfg.TicketGrace,
		Connected: func() bool {
			return session != nil && session.Connected()
		},
	})

	session, err = gateway.NewSession(cfg.GatoURL, platform.UserToken(), b, log)
	if err != nil {
		log.WithError(err).Fatal("gateway session")
	}

	server := api.NewServer(cfg.RelaySecret, queue, catStore, b, log)

	g := syncx.NewGroup(ctx)
	g.Go(func(ctx context.Context) {
		if err := session.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("gateway session stopped")
		}
	})
	g.Go(func(ctx context.Context) {
		if err := server.Run(ctx, cfg.ListenAddr); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("http server stopped")
		}
	})

	log.WithField("addr", cfg.ListenAddr).Info("relay running")
	g.Wait()
	log.Info("shutdown complete")
}
