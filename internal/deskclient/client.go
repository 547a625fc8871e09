// Package deskclient is the desk-side companion to the relay: a thin HTTP
// client, the rich pet model and the pending-action poll loop. Every network
// failure is swallowed and surfaces only as Connected() == false; the desk
// experience keeps working locally.
package deskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/costalopes/focusgato/internal/api"
	"github.com/costalopes/focusgato/internal/cat"
	"github.com/costalopes/focusgato/internal/httpx"
	"github.com/costalopes/focusgato/internal/pending"
	"github.com/costalopes/focusgato/internal/pomodoro"
)

const headerSecret = "X-Relay-Secret"

type Client struct {
	baseURL string
	secret  string
	http    *http.Client
	log     *logrus.Entry

	connected atomic.Bool
}

func NewClient(relayURL, secret string, log *logrus.Entry) *Client {
	httpClient, err := httpx.NewClient("", 15*time.Second)
	if err != nil {
		// "" always yields a direct client.
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	c := &Client{
		baseURL: relayURL,
		secret:  secret,
		http:    httpClient,
		log:     log,
	}
	c.connected.Store(true)
	return c
}

// Connected reports whether the last relay call succeeded.
func (c *Client) Connected() bool { return c.connected.Load() }

// PostPomodoroEnd tells the relay a timer finished. Failures are swallowed.
func (c *Client) PostPomodoroEnd(ctx context.Context, mode pomodoro.Mode, sessions int, userName string) {
	c.post(ctx, "/api/pomodoro-end", map[string]any{
		"mode":     string(mode),
		"sessions": sessions,
		"userName": userName,
	}, nil)
}

// PostCatStatus pushes the shadow snapshot the relay renders from.
func (c *Client) PostCatStatus(ctx context.Context, state cat.State) {
	c.post(ctx, "/api/cat-status", map[string]any{
		"name":      state.Name,
		"color":     state.ColorIdx,
		"happiness": state.Happiness,
		"energy":    state.Energy,
		"mood":      string(state.Mood),
	}, nil)
}

// PostCatHungry asks the relay to post the hungry alert.
func (c *Client) PostCatHungry(ctx context.Context, state cat.State, userName string) {
	c.post(ctx, "/api/cat-hungry", map[string]any{
		"name":      state.Name,
		"color":     state.ColorIdx,
		"happiness": state.Happiness,
		"energy":    state.Energy,
		"userName":  userName,
	}, nil)
}

// PostTaskReminder asks the relay to post a task reminder.
func (c *Client) PostTaskReminder(ctx context.Context, tasks []api.Task, reminderType, userName string) {
	c.post(ctx, "/api/task-reminder", map[string]any{
		"tasks":        tasks,
		"reminderType": reminderType,
		"userName":     userName,
	}, nil)
}

// FetchPendingActions drains the relay's queue. A failed poll returns nil.
func (c *Client) FetchPendingActions(ctx context.Context) []pending.Action {
	var out struct {
		Actions []pending.Action `json:"actions"`
	}
	if err := c.get(ctx, "/api/pending-actions", &out); err != nil {
		return nil
	}
	return out.Actions
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) {
	if err := c.do(ctx, http.MethodPost, path, payload, out); err != nil {
		c.log.WithError(err).Debugf("relay call %s failed", path)
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	err := c.do(ctx, http.MethodGet, path, nil, out)
	if err != nil {
		c.log.WithError(err).Debugf("relay call %s failed", path)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerSecret, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		c.connected.Store(false)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.connected.Store(false)
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.connected.Store(false)
		return fmt.Errorf("relay returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	c.connected.Store(true)
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}
