package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the relay (and the desk client) reads from the
// environment. Required fields fail fast in Load; optional ones carry the
// documented defaults.
type Config struct {
	// GatoURL is the base URL of the chat platform (http/https).
	GatoURL string
	// APIBase is GatoURL + "/api" unless GATO_API_BASE overrides it.
	APIBase string
	// AccessToken is the bot access token exchanged for a JWT at login.
	AccessToken string

	// RelaySecret authorizes desk-client calls to the relay HTTP API.
	RelaySecret string
	// ListenAddr is the relay HTTP API bind address.
	ListenAddr string

	// VoiceChannelID is the tracked "request help" voice channel.
	VoiceChannelID string
	// TicketCategoryID is the parent category for ticket channels.
	TicketCategoryID string
	// SupportRoleID gains access to every ticket channel.
	SupportRoleID string
	// NotifyChannelID receives pomodoro, task-reminder and cat alerts.
	NotifyChannelID string
	// TicketGrace is how long a user may stay absent before their ticket closes.
	TicketGrace time.Duration

	// PollInterval is the desk client's pending-action poll interval.
	PollInterval time.Duration

	// APIProxy configures the outbound proxy for platform calls ("" = direct).
	APIProxy string
}

const (
	defaultListenAddr   = ":3310"
	defaultTicketGrace  = 60 * time.Second
	defaultPollInterval = 5 * time.Second
)

func Load() (Config, error) {
	gatoURL := strings.TrimRight(strings.TrimSpace(os.Getenv("GATO_URL")), "/")
	if gatoURL == "" {
		return Config{}, fmt.Errorf("GATO_URL is required")
	}

	apiBase := strings.TrimRight(strings.TrimSpace(os.Getenv("GATO_API_BASE")), "/")
	if apiBase == "" {
		apiBase = gatoURL + "/api"
	}

	accessToken := strings.TrimSpace(os.Getenv("GATO_ACCESS_TOKEN"))
	if accessToken == "" {
		return Config{}, fmt.Errorf("GATO_ACCESS_TOKEN is required")
	}

	relaySecret := strings.TrimSpace(os.Getenv("RELAY_SECRET"))
	if relaySecret == "" {
		return Config{}, fmt.Errorf("RELAY_SECRET is required")
	}

	voiceChannelID := strings.TrimSpace(os.Getenv("VOICE_CHANNEL_ID"))
	if voiceChannelID == "" {
		return Config{}, fmt.Errorf("VOICE_CHANNEL_ID is required")
	}

	ticketCategoryID := strings.TrimSpace(os.Getenv("TICKET_CATEGORY_ID"))
	if ticketCategoryID == "" {
		return Config{}, fmt.Errorf("TICKET_CATEGORY_ID is required")
	}

	notifyChannelID := strings.TrimSpace(os.Getenv("NOTIFY_CHANNEL_ID"))
	if notifyChannelID == "" {
		return Config{}, fmt.Errorf("NOTIFY_CHANNEL_ID is required")
	}

	listenAddr := strings.TrimSpace(os.Getenv("RELAY_LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	grace, err := secondsEnv("TICKET_GRACE_SECONDS", defaultTicketGrace)
	if err != nil {
		return Config{}, err
	}

	poll, err := secondsEnv("POLL_INTERVAL_SECONDS", defaultPollInterval)
	if err != nil {
		return Config{}, err
	}

	return Config{
		GatoURL:          gatoURL,
		APIBase:          apiBase,
		AccessToken:      accessToken,
		RelaySecret:      relaySecret,
		ListenAddr:       listenAddr,
		VoiceChannelID:   voiceChannelID,
		TicketCategoryID: ticketCategoryID,
		SupportRoleID:    strings.TrimSpace(os.Getenv("SUPPORT_ROLE_ID")),
		NotifyChannelID:  notifyChannelID,
		TicketGrace:      grace,
		PollInterval:     poll,
		APIProxy:         strings.TrimSpace(os.Getenv("GATO_API_PROXY")),
	}, nil
}

// LoadClient reads only what the desk client needs: where the relay lives and
// the shared secret.
type ClientConfig struct {
	RelayURL     string
	RelaySecret  string
	UserName     string
	PollInterval time.Duration
}

func LoadClient() (ClientConfig, error) {
	relayURL := strings.TrimRight(strings.TrimSpace(os.Getenv("RELAY_URL")), "/")
	if relayURL == "" {
		relayURL = "http://localhost:3310"
	}

	relaySecret := strings.TrimSpace(os.Getenv("RELAY_SECRET"))
	if relaySecret == "" {
		return ClientConfig{}, fmt.Errorf("RELAY_SECRET is required")
	}

	userName := strings.TrimSpace(os.Getenv("GATO_USER_NAME"))
	if userName == "" {
		userName = "você"
	}

	poll, err := secondsEnv("POLL_INTERVAL_SECONDS", defaultPollInterval)
	if err != nil {
		return ClientConfig{}, err
	}

	return ClientConfig{
		RelayURL:     relayURL,
		RelaySecret:  relaySecret,
		UserName:     userName,
		PollInterval: poll,
	}, nil
}

func secondsEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return time.Duration(secs) * time.Second, nil
}
