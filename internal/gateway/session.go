package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Session maintains the websocket connection to the platform gateway,
// reconnecting with exponential backoff until ctx is canceled. Events are
// dispatched to the Handler sequentially on the read loop.
type Session struct {
	wsURL   string
	token   string
	handler Handler
	log     *logrus.Entry

	mu   sync.Mutex
	emit EmitFunc // nil while disconnected
}

func NewSession(gatoURL, userToken string, handler Handler, log *logrus.Entry) (*Session, error) {
	wsURL, err := WebsocketURL(gatoURL)
	if err != nil {
		return nil, err
	}
	return &Session{
		wsURL:   wsURL,
		token:   userToken,
		handler: handler,
		log:     log,
	}, nil
}

// Emit writes an upstream event on the live connection, or fails when
// disconnected.
func (s *Session) Emit(event string, payload any) error {
	s.mu.Lock()
	emit := s.emit
	s.mu.Unlock()
	if emit == nil {
		return errors.New("gateway not connected")
	}
	return emit(event, payload)
}

// Connected reports whether a gateway connection is currently live.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emit != nil
}

func (s *Session) Run(ctx context.Context) error {
	backoff := 500 * time.Millisecond
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.log.WithError(err).Warnf("gateway disconnected (reconnecting in %s)", backoff)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if backoff < 10*time.Second {
			backoff *= 2
		}
	}
}

func (s *Session) runOnce(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(s.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	var writeMu sync.Mutex
	sendText := func(payload string) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteMessage(websocket.TextMessage, []byte(payload))
	}

	emit := func(event string, payload any) error {
		frame, err := EmitFrame(event, payload)
		if err != nil {
			return err
		}
		return sendText(frame)
	}

	s.mu.Lock()
	s.emit = emit
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.emit = nil
		s.mu.Unlock()
	}()

	// If ctx is canceled, proactively close the connection to unblock reads.
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"), time.Now().Add(2*time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		for _, frame := range SplitFrames(msg) {
			fr := string(frame)
			if fr == "" {
				continue
			}

			switch fr[0] {
			case '0': // Engine.IO open
				authPayload, _ := json.Marshal(map[string]string{"token": s.token})
				if err := sendText("40" + string(authPayload)); err != nil {
					return err
				}
			case '1': // Engine.IO close
				return errors.New("engine.io close")
			case '2': // ping
				if err := sendText("3"); err != nil {
					return err
				}
			case '4': // Socket.IO message
				if len(fr) >= 2 && fr[1] == '0' {
					s.log.Info("connected to gateway")
					continue
				}
				if len(fr) >= 2 && fr[1] == '4' {
					return fmt.Errorf("socket.io error: %s", strings.TrimSpace(fr))
				}
				if strings.HasPrefix(fr, "42") {
					if err := dispatch(ctx, s.handler, fr[2:]); err != nil {
						s.log.WithError(err).Error("event handler error")
					}
				}
			default:
			}
		}
	}
}
