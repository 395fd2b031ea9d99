// Package livewire is a resilient client for the Gemini Live API. It
// keeps one logical session alive across transport failures: a
// connection state machine drives connect/disconnect/reconnect, a
// persisted resumption handle carries conversational context onto
// fresh sockets, and inbound server messages are demultiplexed into
// typed events on an event bus.
package livewire

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palomar-io/livewire/adapters/gemini"
	"github.com/palomar-io/livewire/adapters/store"
	"github.com/palomar-io/livewire/config"
	"github.com/palomar-io/livewire/domain/entities"
	"github.com/palomar-io/livewire/domain/repositories"
	"github.com/palomar-io/livewire/internal/backoff"
	"github.com/palomar-io/livewire/internal/timer"
)

// Client owns one logical live session. It is the sole mutator of
// connection status and resumption state; all transport and timer
// callbacks are funneled through it.
type Client struct {
	id        string
	cfg       config.Config
	logger    *zap.Logger
	clk       clock.Clock
	transport repositories.Transport
	store     repositories.HandleStore
	bus       *Bus
	policy    *backoff.Policy
	retry     *timer.Timer
	hb        *heartbeat

	mu        sync.Mutex
	status    entities.Status
	gen       uint64
	session   repositories.LiveSession
	params    *entities.ConnectParams
	handle    string
	resumable bool
	attempts  int
	destroyed bool
}

// New creates a Client from cfg. Options override the logger, clock,
// transport, and handle store.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c := &Client{
		id:     uuid.NewString(),
		cfg:    cfg,
		logger: zap.NewNop(),
		clk:    clock.New(),
		bus:    newBus(),
		status: entities.StatusDisconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		fs, err := store.NewFileStore(cfg.HandlePath)
		if err != nil {
			// Durable storage unavailable; degrade to memory only.
			c.logger.Warn("durable handle store unavailable", zap.Error(err))
			c.store = store.NewMemoryStore()
		} else {
			c.store = store.NewFallbackStore(fs, c.logger)
		}
	}
	if c.transport == nil {
		c.transport = gemini.NewTransport(cfg.Endpoint, cfg.APIKey, c.logger)
	}
	c.policy = backoff.New(cfg.BaseRetryDelay.Duration, cfg.MaxRetryDelay.Duration, cfg.RetryJitterMax.Duration)
	c.retry = timer.New(c.clk)
	c.hb = newHeartbeat(c.clk, cfg.HeartbeatInterval.Duration, c.logger)
	if h, ok := c.store.Get(); ok {
		c.handle = h
	}
	return c, nil
}

// Events returns the client's event bus.
func (c *Client) Events() *Bus { return c.bus }

// Connect opens a live session to model with cfg. It is rejected while
// a connect is in flight or a session is established. The stored
// resumption handle, if any, is attached so the server may resume
// prior context.
func (c *Client) Connect(ctx context.Context, model string, cfg entities.SessionConfig) error {
	return c.connect(ctx, &entities.ConnectParams{Model: model, Config: cfg}, false)
}

func (c *Client) connect(ctx context.Context, params *entities.ConnectParams, isReconnect bool) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	switch {
	case c.status == entities.StatusConnecting:
		c.mu.Unlock()
		c.logger.Warn("connect rejected: already connecting")
		return ErrAlreadyConnecting
	case c.status == entities.StatusConnected && !isReconnect:
		c.mu.Unlock()
		c.logger.Warn("connect rejected: already connected")
		return ErrAlreadyConnected
	}
	if !isReconnect {
		// A user connect supersedes any scheduled retry; its outcome is
		// reported to the caller, not to the retry loop.
		c.retry.Stop()
		c.params = params
	}
	if c.params == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	target := *c.params
	handle := c.handle
	c.status = entities.StatusConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.logger.Info("connecting",
		zap.String("client", c.id),
		zap.String("model", target.Model),
		zap.Bool("reconnect", isReconnect),
		zap.Bool("resuming", handle != ""))
	c.emitLog("client.connect", fmt.Sprintf("connecting to %s", target.Model))

	cb := repositories.SessionCallbacks{
		OnOpen:    func() { c.handleOpen(gen) },
		OnMessage: func(msg *entities.ServerMessage) { c.handleMessage(gen, msg) },
		OnError:   func(err error) { c.handleError(gen, err) },
		OnClose:   func(code int, reason string) { c.handleClose(gen, code, reason) },
	}

	sess, err := c.transport.Open(ctx, target, handle, cb)
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.status = entities.StatusDisconnected
			if !isReconnect {
				// A fresh attempt that never established discards the
				// resumption state; it evidently no longer opens a
				// session.
				c.clearSessionLocked()
			}
		}
		c.mu.Unlock()
		c.logger.Error("connection failed", zap.Error(err))
		return fmt.Errorf("open live session: %w", err)
	}

	c.mu.Lock()
	if c.gen != gen || c.destroyed {
		c.mu.Unlock()
		sess.Close()
		return ErrConnectAborted
	}
	c.session = sess
	c.status = entities.StatusConnected
	c.attempts = 0
	// Started under the status lock: a Disconnect that takes the lock
	// after this point always observes and stops this loop.
	c.hb.start(c.sendKeepalive)
	c.mu.Unlock()
	return nil
}

// Disconnect tears down the session and cancels all timers. It reports
// whether the client was connected or connecting; calling it again is
// a no-op.
func (c *Client) Disconnect() bool {
	c.mu.Lock()
	c.retry.Stop()
	if c.status == entities.StatusDisconnected {
		c.mu.Unlock()
		return false
	}
	c.gen++ // orphan in-flight callbacks and connect completions
	sess := c.session
	c.session = nil
	c.status = entities.StatusDisconnected
	c.mu.Unlock()

	c.hb.stop()
	if sess != nil {
		sess.Close()
	}
	c.logger.Info("disconnected", zap.String("client", c.id))
	c.bus.closed.emit(entities.CloseInfo{
		Code:   websocket.CloseNormalClosure,
		Reason: "client disconnect",
	})
	return true
}

// ForceReconnect drops the current connection, if any, and replays the
// retained connect parameters immediately. On failure the normal retry
// loop takes over.
func (c *Client) ForceReconnect() error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	if c.params == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	c.retry.Stop()
	c.gen++
	sess := c.session
	c.session = nil
	c.status = entities.StatusDisconnected
	c.mu.Unlock()

	c.hb.stop()
	if sess != nil {
		sess.Close()
	}
	c.logger.Info("forcing reconnect", zap.String("client", c.id))
	if err := c.connect(context.Background(), nil, true); err != nil {
		c.scheduleRetry()
		return err
	}
	return nil
}

// ClearSession discards the resumption handle and resumability flag,
// in memory and in the store.
func (c *Client) ClearSession() {
	c.mu.Lock()
	c.clearSessionLocked()
	c.mu.Unlock()
}

// Destroy disconnects, drops all event subscriptions, and permanently
// disables the client.
func (c *Client) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.gen++
	sess := c.session
	c.session = nil
	wasUp := c.status != entities.StatusDisconnected
	c.status = entities.StatusDisconnected
	c.mu.Unlock()

	c.retry.Stop()
	c.hb.stop()
	if sess != nil {
		sess.Close()
	}
	if wasUp {
		c.bus.closed.emit(entities.CloseInfo{
			Code:   websocket.CloseNormalClosure,
			Reason: "client destroyed",
		})
	}
	c.bus.reset()
	c.logger.Info("client destroyed", zap.String("client", c.id))
}

// SessionInfo returns a snapshot of the session state.
func (c *Client) SessionInfo() entities.SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return entities.SessionInfo{
		Handle:    c.handle,
		Resumable: c.resumable,
		Status:    c.status,
		Attempts:  c.attempts,
	}
}

// Send submits parts as one user turn. Send failures are logged and
// the payload treated as lost; they are never raised to the caller.
func (c *Client) Send(parts []*entities.Part, turnComplete bool) {
	sess := c.currentSession()
	if sess == nil {
		c.logger.Warn("send dropped: not connected")
		return
	}
	turns := []*entities.Content{{Role: "user", Parts: parts}}
	if err := sess.SendContent(turns, turnComplete); err != nil {
		c.logger.Error("send content failed", zap.Error(err))
		c.emitLog("client.send", fmt.Sprintf("send failed: %v", err))
		return
	}
	c.emitLog("client.send", fmt.Sprintf("sent %d part(s)", len(parts)))
}

// SendRealtimeInput streams media chunks. Failures are logged, not
// raised; chunks are not buffered for retry.
func (c *Client) SendRealtimeInput(chunks []entities.Blob) {
	sess := c.currentSession()
	if sess == nil {
		c.logger.Warn("realtime input dropped: not connected")
		return
	}
	if err := sess.SendRealtimeInput(chunks); err != nil {
		c.logger.Error("send realtime input failed", zap.Error(err))
		c.emitLog("client.realtimeInput", fmt.Sprintf("send failed: %v", err))
	}
}

// SendToolResponse returns function call results. Failures are logged,
// not raised.
func (c *Client) SendToolResponse(responses []*entities.FunctionResponse) {
	sess := c.currentSession()
	if sess == nil {
		c.logger.Warn("tool response dropped: not connected")
		return
	}
	if err := sess.SendToolResponse(responses); err != nil {
		c.logger.Error("send tool response failed", zap.Error(err))
		c.emitLog("client.toolResponse", fmt.Sprintf("send failed: %v", err))
	}
}

func (c *Client) currentSession() repositories.LiveSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) sendKeepalive() error {
	sess := c.currentSession()
	if sess == nil {
		return ErrNotConnected
	}
	return sess.SendContent(nil, false)
}

// handleOpen runs when the transport read pump starts.
func (c *Client) handleOpen(gen uint64) {
	c.mu.Lock()
	stale := c.gen != gen
	c.mu.Unlock()
	if stale {
		return
	}
	c.logger.Info("live session open", zap.String("client", c.id))
	c.emitLog("client.open", "connected")
	c.bus.open.emit(struct{}{})
}

// handleError runs for transport errors that do not map to a closure.
func (c *Client) handleError(gen uint64, err error) {
	c.mu.Lock()
	stale := c.gen != gen
	c.mu.Unlock()
	if stale {
		return
	}
	c.logger.Error("transport error", zap.Error(err))
	c.bus.errs.emit(err)
}

// handleClose runs when the transport reports closure. It stops the
// heartbeat, transitions to disconnected, and consults the reconnect
// policy.
func (c *Client) handleClose(gen uint64, code int, reason string) {
	c.mu.Lock()
	if c.gen != gen || c.destroyed {
		c.mu.Unlock()
		return
	}
	prev := c.status
	c.gen++ // no further callbacks from the dead session
	c.session = nil
	c.status = entities.StatusDisconnected
	retry := false
	if code == websocket.CloseNormalClosure {
		// The session is intentionally over.
		c.clearSessionLocked()
	} else {
		retry = c.shouldReconnectLocked(code, prev)
	}
	c.mu.Unlock()

	c.hb.stop()
	c.logger.Info("live session closed",
		zap.Int("code", code),
		zap.String("reason", reason),
		zap.Bool("reconnecting", retry))
	c.emitLog("client.close", fmt.Sprintf("closed with code %d: %s", code, reason))
	c.bus.closed.emit(entities.CloseInfo{Code: code, Reason: reason})

	if retry {
		c.scheduleRetry()
	}
}

func (c *Client) clearSessionLocked() {
	c.handle = ""
	c.resumable = false
	if err := c.store.Set(""); err != nil {
		c.logger.Warn("clear persisted handle failed", zap.Error(err))
	}
}

func (c *Client) persistHandleLocked(handle string) {
	if err := c.store.Set(handle); err != nil {
		c.logger.Warn("persist handle failed", zap.Error(err))
	}
}

func (c *Client) emitLog(kind, message string) {
	c.bus.log.emit(entities.LogEntry{
		Time:    c.clk.Now(),
		Kind:    kind,
		Message: message,
	})
}
