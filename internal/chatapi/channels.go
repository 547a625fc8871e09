package chatapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type CreateChannelRequest struct {
	Name         string   `json:"name"`
	ParentID     string   `json:"parentId,omitempty"`
	Topic        string   `json:"topic,omitempty"`
	AllowUserIDs []string `json:"allowUserIds,omitempty"`
	AllowRoleIDs []string `json:"allowRoleIds,omitempty"`
}

// CreateChannel creates a private text channel under the given parent,
// visible only to the listed users and roles. Returns the new channel ID.
func (c *Client) CreateChannel(ctx context.Context, req CreateChannelRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" {
		return "", fmt.Errorf("channel name is required")
	}

	body, err := c.doJSON(ctx, http.MethodPost, "/channels", req)
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
		return "", fmt.Errorf("create channel response missing _id")
	}
	return parsed.ID, nil
}

func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	if strings.TrimSpace(channelID) == "" {
		return fmt.Errorf("channel id is required")
	}
	_, err := c.doJSON(ctx, http.MethodDelete, "/channels/"+channelID, nil)
	return err
}

// ChannelParent returns the parent category ID of a channel, or "" when the
// channel has none. Results are cached; a channel never moves categories in
// this deployment.
func (c *Client) ChannelParent(ctx context.Context, channelID string) (string, error) {
	if strings.TrimSpace(channelID) == "" {
		return "", nil
	}

	c.parentMu.Lock()
	if parent, ok := c.parentCache[channelID]; ok {
		c.parentMu.Unlock()
		return parent, nil
	}
	c.parentMu.Unlock()

	body, err := c.doJSON(ctx, http.MethodGet, "/channels/"+channelID, nil)
	if err != nil {
		return "", err
	}

	var parsed struct {
		ParentID string `json:"parentId"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}

	parent := strings.TrimSpace(parsed.ParentID)
	c.parentMu.Lock()
	c.parentCache[channelID] = parent
	c.parentMu.Unlock()
	return parent, nil
}

// RememberParent seeds the parent cache, used for channels the bot created
// itself so presence checks need no extra round trip.
func (c *Client) RememberParent(channelID, parentID string) {
	if strings.TrimSpace(channelID) == "" {
		return
	}
	c.parentMu.Lock()
	c.parentCache[channelID] = strings.TrimSpace(parentID)
	c.parentMu.Unlock()
}
