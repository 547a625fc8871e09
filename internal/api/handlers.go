package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/costalopes/focusgato/internal/cat"
	"github.com/costalopes/focusgato/internal/pending"
	"github.com/costalopes/focusgato/internal/pomodoro"
)

const httpShutdownTimeout = 5 * time.Second

const headerSecret = "X-Relay-Secret"

// requireSecret rejects calls without the shared secret. Misses are expected
// traffic shape (health probes, misconfigured clients), so they are not
// logged as errors.
func (s *Server) requireSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(headerSecret) != s.secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

type pomodoroEndRequest struct {
	Mode     string `json:"mode" binding:"required"`
	Sessions int    `json:"sessions"`
	UserName string `json:"userName"`
}

func (s *Server) handlePomodoroEnd(c *gin.Context) {
	var req pomodoroEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	mode, err := pomodoro.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.notifier.NotifyPomodoroEnd(c.Request.Context(), mode, req.Sessions, req.UserName); err != nil {
		s.log.WithError(err).Error("pomodoro-end notification failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type taskReminderRequest struct {
	Tasks        []Task `json:"tasks"`
	ReminderType string `json:"reminderType"`
	UserName     string `json:"userName"`
}

func (s *Server) handleTaskReminder(c *gin.Context) {
	var req taskReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if len(req.Tasks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sem tarefas"})
		return
	}

	if err := s.notifier.NotifyTaskReminder(c.Request.Context(), req.Tasks, req.ReminderType, req.UserName); err != nil {
		s.log.WithError(err).Error("task reminder failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type catStatusRequest struct {
	Name      *string  `json:"name"`
	Color     *int     `json:"color"`
	Happiness *float64 `json:"happiness"`
	Energy    *float64 `json:"energy"`
	Mood      *string  `json:"mood"`
}

func (s *Server) handleCatStatus(c *gin.Context) {
	var req catStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	var mood *cat.Mood
	if req.Mood != nil {
		m := cat.Mood(*req.Mood)
		mood = &m
	}

	state := s.catStore.Upsert(cat.Partial{
		Name:      req.Name,
		ColorIdx:  req.Color,
		Happiness: req.Happiness,
		Energy:    req.Energy,
		Mood:      mood,
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "catState": state})
}

type catHungryRequest struct {
	Name      *string  `json:"name"`
	Happiness *float64 `json:"happiness"`
	Energy    *float64 `json:"energy"`
	UserName  string   `json:"userName"`
}

func (s *Server) handleCatHungry(c *gin.Context) {
	var req catHungryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	s.catStore.Upsert(cat.Partial{
		Name:      req.Name,
		Happiness: req.Happiness,
		Energy:    req.Energy,
	})
	state := s.catStore.ForceHungry()

	if err := s.notifier.NotifyCatHungry(c.Request.Context(), state, req.UserName); err != nil {
		s.log.WithError(err).Error("cat hungry alert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handlePendingActions(c *gin.Context) {
	actions := s.queue.Flush()
	if actions == nil {
		actions = []pending.Action{}
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

func (s *Server) handleHealth(c *gin.Context) {
	bot := "offline"
	if s.notifier.Connected() {
		bot = "online"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"bot":      bot,
		"catState": s.catStore.Snapshot(),
	})
}
