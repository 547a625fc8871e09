// Package chatapi is the REST client for the chat platform: bot login,
// channel lifecycle, messages, DMs and attachment uploads. Every failed call
// is terminal for that one operation; callers log and move on.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/costalopes/focusgato/internal/httpx"
)

type Client struct {
	apiBase    string
	httpClient *http.Client

	mu        sync.Mutex
	userToken string

	parentMu    sync.Mutex
	parentCache map[string]string // channelID -> parent category ID
}

func NewClient(apiBase, proxySpec string) (*Client, error) {
	httpClient, err := httpx.NewClient(proxySpec, 15*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{
		apiBase:     strings.TrimRight(apiBase, "/"),
		httpClient:  httpClient,
		parentCache: make(map[string]string),
	}, nil
}

// HTTPStatusError is returned for non-2xx platform responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("status=%d body=%s", e.StatusCode, e.Body)
}

type BotUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	IsBot    bool   `json:"isBot"`
}

// LoginBot exchanges the bot access token for a JWT and the bot's own user
// record. The token is kept for all later calls.
func (c *Client) LoginBot(ctx context.Context, accessToken string) (BotUser, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/auth/bot", map[string]any{"accessToken": accessToken})
	if err != nil {
		return BotUser{}, err
	}

	var parsed struct {
		User  BotUser `json:"user"`
		Token string  `json:"token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return BotUser{}, err
	}
	if strings.TrimSpace(parsed.User.ID) == "" || strings.TrimSpace(parsed.Token) == "" {
		return BotUser{}, fmt.Errorf("invalid /auth/bot response: missing user/token")
	}

	c.mu.Lock()
	c.userToken = parsed.Token
	c.mu.Unlock()
	return parsed.User, nil
}

// UserToken returns the JWT from the last successful login.
func (c *Client) UserToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userToken
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.UserToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
