package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
)

// Gateway event names the relay cares about. Everything else is ignored.
const (
	eventMessageCreate     = "MESSAGE_CREATE"
	eventVoiceStateUpdate  = "VOICE_STATE_UPDATE"
	eventInteractionCreate = "INTERACTION_CREATE"
)

type MessageEvent struct {
	ChannelID      string
	Content        string
	AuthorID       string
	AuthorUsername string
	AuthorIsBot    bool
}

// VoiceEvent carries the authoritative before/after channel pair for one
// user's voice membership change. An empty ChannelID means the user left
// voice entirely.
type VoiceEvent struct {
	UserID        string
	Username      string
	ChannelID     string
	PrevChannelID string
}

// InteractionEvent is a button click on a message the bot posted.
type InteractionEvent struct {
	UserID    string
	Username  string
	ChannelID string
	CustomID  string
}

// Handler receives typed gateway events. Calls happen sequentially on the
// session's read loop; a returned error is logged and does not tear the
// session down.
type Handler interface {
	OnMessage(ctx context.Context, ev MessageEvent) error
	OnVoiceUpdate(ctx context.Context, ev VoiceEvent) error
	OnInteraction(ctx context.Context, ev InteractionEvent) error
}

// EmitFunc writes an upstream event on the live connection.
type EmitFunc func(event string, payload any) error

func dispatch(ctx context.Context, h Handler, raw string) error {
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return err
	}
	if len(arr) < 2 {
		return nil
	}

	var eventName string
	if err := json.Unmarshal(arr[0], &eventName); err != nil {
		return err
	}

	switch eventName {
	case eventMessageCreate:
		var msg struct {
			ChannelID string          `json:"channelId"`
			Content   string          `json:"content"`
			AuthorID  json.RawMessage `json:"authorId"`
		}
		if err := json.Unmarshal(arr[1], &msg); err != nil {
			return err
		}
		id, username, isBot := parseAuthor(msg.AuthorID)
		return h.OnMessage(ctx, MessageEvent{
			ChannelID:      msg.ChannelID,
			Content:        msg.Content,
			AuthorID:       id,
			AuthorUsername: username,
			AuthorIsBot:    isBot,
		})
	case eventVoiceStateUpdate:
		var ev struct {
			UserID        string `json:"userId"`
			Username      string `json:"username"`
			ChannelID     string `json:"channelId"`
			PrevChannelID string `json:"prevChannelId"`
		}
		if err := json.Unmarshal(arr[1], &ev); err != nil {
			return err
		}
		return h.OnVoiceUpdate(ctx, VoiceEvent(ev))
	case eventInteractionCreate:
		var ev struct {
			UserID    string `json:"userId"`
			Username  string `json:"username"`
			ChannelID string `json:"channelId"`
			CustomID  string `json:"customId"`
		}
		if err := json.Unmarshal(arr[1], &ev); err != nil {
			return err
		}
		return h.OnInteraction(ctx, InteractionEvent(ev))
	default:
		return nil
	}
}

// parseAuthor accepts both the bare-ID and the embedded-object author shapes
// the gateway emits.
func parseAuthor(raw json.RawMessage) (id, username string, isBot bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", "", false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", "", false
		}
		return strings.TrimSpace(s), "", false
	}

	if raw[0] != '{' {
		return "", "", false
	}
	var author struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
		IsBot    bool   `json:"isBot"`
	}
	if err := json.Unmarshal(raw, &author); err != nil {
		return "", "", false
	}
	return strings.TrimSpace(author.ID), strings.TrimSpace(author.Username), author.IsBot
}
