package chatapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Embed is the rich portion of a message. Color is a 24-bit RGB value.
type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
}

type Button struct {
	CustomID string `json:"customId"`
	Label    string `json:"label"`
	Style    string `json:"style,omitempty"`
}

type Message struct {
	Content       string   `json:"content,omitempty"`
	Embed         *Embed   `json:"embed,omitempty"`
	Buttons       []Button `json:"buttons,omitempty"`
	AttachmentKey string   `json:"attachmentKey,omitempty"`
}

func (c *Client) SendMessage(ctx context.Context, channelID string, msg Message) error {
	if strings.TrimSpace(channelID) == "" {
		return fmt.Errorf("channel id is required")
	}
	if strings.TrimSpace(msg.Content) == "" && msg.Embed == nil {
		return fmt.Errorf("message content or embed is required")
	}

	payload := struct {
		ChannelID string `json:"channelId"`
		Message
	}{ChannelID: channelID, Message: msg}

	_, err := c.doJSON(ctx, http.MethodPost, "/messages", payload)
	return err
}

// EnsureDMChannel returns the DM channel with the given user, creating it if
// needed.
func (c *Client) EnsureDMChannel(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id is required")
	}

	body, err := c.doJSON(ctx, http.MethodPost, "/users/@me/channels", map[string]string{"recipientId": userID})
	if err != nil {
		return "", err
	}

	var parsed struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", fmt.Errorf("dm channel response missing _id")
	}
	return parsed.ID, nil
}

// SendDM delivers a direct message. It can fail when the user has DMs
// disabled; the caller logs and does not retry.
func (c *Client) SendDM(ctx context.Context, userID string, msg Message) error {
	channelID, err := c.EnsureDMChannel(ctx, userID)
	if err != nil {
		return err
	}
	return c.SendMessage(ctx, channelID, msg)
}
