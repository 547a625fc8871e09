package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// WebsocketURL derives the socket.io websocket endpoint from the platform
// base URL.
func WebsocketURL(gatoURL string) (string, error) {
	u, err := url.Parse(gatoURL)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid GATO_URL scheme: %q", u.Scheme)
	}

	u.Path = "/socket.io/"
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SplitFrames splits a websocket message into socket.io frames. Multiple
// frames may arrive in one message separated by RS (0x1e).
func SplitFrames(msg []byte) [][]byte {
	if bytes.IndexByte(msg, 0x1e) < 0 {
		return [][]byte{msg}
	}
	parts := bytes.Split(msg, []byte{0x1e})
	out := make([][]byte, 0, len(parts))
	for _, p := range parts {
		if len(p) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// EmitFrame encodes an upstream socket.io event frame ("42" + [event, payload]).
func EmitFrame(event string, payload any) (string, error) {
	frame, err := json.Marshal([]any{event, payload})
	if err != nil {
		return "", err
	}
	return "42" + string(frame), nil
}
