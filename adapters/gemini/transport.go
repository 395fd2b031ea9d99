// Package gemini implements the live transport against the Gemini
// BidiGenerateContent websocket API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palomar-io/livewire/domain/entities"
	"github.com/palomar-io/livewire/domain/repositories"
)

const (
	connectTimeout = 15 * time.Second
	writeWait      = 10 * time.Second

	// Server audio chunks are large; a text-only read limit would
	// truncate them.
	maxMessageSize = 4 * 1024 * 1024
)

// Transport dials live sessions over websocket.
type Transport struct {
	endpoint string
	apiKey   string
	dialer   *websocket.Dialer
	logger   *zap.Logger
}

// NewTransport creates a Transport for the given endpoint and API key.
func NewTransport(endpoint, apiKey string, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		endpoint: endpoint,
		apiKey:   apiKey,
		dialer:   websocket.DefaultDialer,
		logger:   logger,
	}
}

// Open dials the endpoint, sends the setup frame (attaching the
// resumption handle when present), and starts the read pump. The
// returned session is live once Open returns.
func (t *Transport) Open(ctx context.Context, params entities.ConnectParams, handle string, cb repositories.SessionCallbacks) (repositories.LiveSession, error) {
	u, err := url.Parse(t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if t.apiKey != "" {
		q := u.Query()
		q.Set("key", t.apiKey)
		u.RawQuery = q.Encode()
	}

	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}

	conn, resp, err := t.dialer.DialContext(dialCtx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	setup := buildSetup(params, handle)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(&entities.ClientMessage{Setup: setup}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send setup: %w", err)
	}

	s := &session{
		conn:   conn,
		cb:     cb,
		logger: t.logger,
	}
	go s.readPump()
	return s, nil
}

func buildSetup(params entities.ConnectParams, handle string) *entities.Setup {
	setup := &entities.Setup{
		Model: params.Model,
		Tools: params.Config.Tools,
		// Always request resumption updates so the handle stays fresh.
		SessionResumption: &entities.SessionResumptionConfig{Handle: handle},
	}
	if params.Config.SystemInstruction != "" {
		setup.SystemInstruction = &entities.Content{
			Parts: []*entities.Part{{Text: params.Config.SystemInstruction}},
		}
	}
	if len(params.Config.ResponseModalities) > 0 || params.Config.VoiceName != "" {
		gc := &entities.GenerationConfig{
			ResponseModalities: params.Config.ResponseModalities,
		}
		if params.Config.VoiceName != "" {
			gc.SpeechConfig = &entities.SpeechConfig{
				VoiceConfig: &entities.VoiceConfig{
					PrebuiltVoiceConfig: &entities.PrebuiltVoiceConfig{
						VoiceName: params.Config.VoiceName,
					},
				},
			}
		}
		setup.GenerationConfig = gc
	}
	return setup
}

// session is one live websocket connection.
type session struct {
	conn   *websocket.Conn
	cb     repositories.SessionCallbacks
	logger *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

// readPump reads frames until the connection dies, decoding each into
// a ServerMessage. The live API sends JSON in both text and binary
// frames, so the frame type is ignored.
func (s *session) readPump() {
	defer s.conn.Close()

	s.conn.SetReadLimit(maxMessageSize)
	if s.cb.OnOpen != nil {
		s.cb.OnOpen()
	}

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			code, reason := closeDetails(err)
			var ce *websocket.CloseError
			if !errors.As(err, &ce) && !s.closed.Load() && s.cb.OnError != nil {
				s.cb.OnError(err)
			}
			if s.cb.OnClose != nil {
				s.cb.OnClose(code, reason)
			}
			return
		}

		msg := new(entities.ServerMessage)
		if err := json.Unmarshal(data, msg); err != nil {
			s.logger.Warn("undecodable server frame", zap.Error(err), zap.Int("bytes", len(data)))
			continue
		}
		if s.cb.OnMessage != nil {
			s.cb.OnMessage(msg)
		}
	}
}

// closeDetails extracts the close code and reason from a read error.
// Errors that carry no close frame count as abnormal closure.
func closeDetails(err error) (int, string) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text
	}
	return websocket.CloseAbnormalClosure, err.Error()
}

// SendContent implements repositories.LiveSession.
func (s *session) SendContent(turns []*entities.Content, turnComplete bool) error {
	return s.writeJSON(&entities.ClientMessage{
		ClientContent: &entities.ClientContent{
			Turns:        turns,
			TurnComplete: turnComplete,
		},
	})
}

// SendRealtimeInput implements repositories.LiveSession.
func (s *session) SendRealtimeInput(chunks []entities.Blob) error {
	return s.writeJSON(&entities.ClientMessage{
		RealtimeInput: &entities.RealtimeInput{MediaChunks: chunks},
	})
}

// SendToolResponse implements repositories.LiveSession.
func (s *session) SendToolResponse(responses []*entities.FunctionResponse) error {
	return s.writeJSON(&entities.ClientMessage{
		ToolResponse: &entities.ToolResponse{FunctionResponses: responses},
	})
}

func (s *session) writeJSON(msg *entities.ClientMessage) error {
	if s.closed.Load() {
		return errors.New("session is closed")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// Close sends a close frame and tears the connection down.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second),
		)
		s.writeMu.Unlock()
		s.conn.Close()
	})
	return nil
}
