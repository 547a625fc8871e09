// deskclient is the desk companion: it runs the pomodoro timer and the pet
// model locally and keeps them in sync with the relay, surviving relay
// outages without interrupting the local experience.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/costalopes/focusgato/internal/config"
	"github.com/costalopes/focusgato/internal/deskclient"
	"github.com/costalopes/focusgato/internal/pomodoro"
	"github.com/costalopes/focusgato/internal/syncx"
)

// hungerStep is added to the hunger meter every hungerInterval.
const (
	hungerStep     = 2
	hungerInterval = time.Minute
)

func main() {
	config.LoadDotEnv("[deskclient]")

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logger.WithField("app", "deskclient")

	cfg, err := config.LoadClient()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := deskclient.NewClient(cfg.RelayURL, cfg.RelaySecret, log)
	pet := deskclient.NewPet(client, cfg.UserName, log)

	timer := pomodoro.NewTimer()
	timer.OnComplete = func(mode pomodoro.Mode, sessions int) {
		log.WithFields(logrus.Fields{"mode": mode, "sessions": sessions}).Info("timer finished")
		client.PostPomodoroEnd(ctx, mode, sessions, cfg.UserName)
	}

	poller := deskclient.NewPoller(client, pet, timer, cfg.PollInterval, log)

	g := syncx.NewGroup(ctx)
	g.Go(poller.Run)
	g.Go(func(ctx context.Context) {
		syncx.RunInterval(ctx, time.Second, false, func(context.Context) { timer.Tick() })
	})
	g.Go(func(ctx context.Context) {
		syncx.RunInterval(ctx, hungerInterval, false, func(ctx context.Context) {
			pet.AdvanceHunger(ctx, hungerStep)
		})
	})

	log.WithField("relay", cfg.RelayURL).Info("desk client running")
	g.Wait()
	log.Info("shutdown complete")
}
