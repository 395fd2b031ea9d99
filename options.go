package livewire

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/palomar-io/livewire/domain/repositories"
)

// Option customizes a Client at construction time.
type Option func(*Client)

// WithLogger sets the structured logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock injects the clock driving heartbeat and reconnect timers.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clk = clk
		}
	}
}

// WithTransport replaces the default websocket transport.
func WithTransport(t repositories.Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithStore replaces the default file-backed handle store.
func WithStore(s repositories.HandleStore) Option {
	return func(c *Client) {
		if s != nil {
			c.store = s
		}
	}
}
