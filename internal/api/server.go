// Package api exposes the relay HTTP API consumed by the desk client. All
// routes except the health probe require the shared secret header.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/costalopes/focusgato/internal/cat"
	"github.com/costalopes/focusgato/internal/pending"
	"github.com/costalopes/focusgato/internal/pomodoro"
)

// Task is one open task included in a reminder.
type Task struct {
	Title    string `json:"title"`
	Deadline string `json:"deadline"`
}

// Notifier posts relay-side chat notifications. Implemented by the bot
// runner; failures bubble up so handlers can answer with an error body.
type Notifier interface {
	NotifyPomodoroEnd(ctx context.Context, mode pomodoro.Mode, sessions int, userName string) error
	NotifyTaskReminder(ctx context.Context, tasks []Task, reminderType, userName string) error
	NotifyCatHungry(ctx context.Context, state cat.State, userName string) error
	Connected() bool
}

type Server struct {
	secret   string
	queue    *pending.Queue
	catStore *cat.Store
	notifier Notifier
	log      *logrus.Entry
	router   *gin.Engine
}

func NewServer(secret string, queue *pending.Queue, catStore *cat.Store, notifier Notifier, log *logrus.Entry) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		secret:   secret,
		queue:    queue,
		catStore: catStore,
		notifier: notifier,
		log:      log,
		router:   router,
	}

	api := router.Group("/api")
	api.GET("/health", s.handleHealth)

	authed := api.Group("", s.requireSecret())
	{
		authed.POST("/pomodoro-end", s.handlePomodoroEnd)
		authed.POST("/task-reminder", s.handleTaskReminder)
		authed.POST("/cat-status", s.handleCatStatus)
		authed.POST("/cat-hungry", s.handleCatHungry)
		authed.GET("/pending-actions", s.handlePendingActions)
	}

	return s
}

func (s *Server) Router() *gin.Engine { return s.router }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
