package livewire

import (
	"context"

	"go.uber.org/zap"

	"github.com/palomar-io/livewire/domain/entities"
)

// shouldReconnectLocked decides whether a non-clean closure warrants
// automatic reconnection. Closures that happened before the session
// was established never do: the connect path already surfaced that
// failure, and retrying here would storm a persistently broken setup.
func (c *Client) shouldReconnectLocked(code int, prev entities.Status) bool {
	if prev != entities.StatusConnected {
		return false
	}
	for _, rc := range c.cfg.ReconnectableCodes {
		if code == rc {
			return true
		}
	}
	// Unlisted code: reconnect only while there is context to replay.
	return c.handle != "" || c.params != nil
}

// scheduleRetry arms the single reconnect timer with the next backoff
// delay, or gives up and clears resumption state once the attempt
// ceiling is exceeded.
func (c *Client) scheduleRetry() {
	c.mu.Lock()
	if c.destroyed || c.status != entities.StatusDisconnected {
		c.mu.Unlock()
		return
	}
	if c.attempts >= c.cfg.MaxReconnectAttempts {
		c.logger.Warn("reconnect attempts exhausted, giving up",
			zap.Int("attempts", c.attempts))
		c.clearSessionLocked()
		c.attempts = 0
		c.mu.Unlock()
		c.emitLog("client.reconnect", "reconnect attempts exhausted")
		return
	}
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	delay := c.policy.Delay(attempt)
	c.logger.Info("scheduling reconnect",
		zap.Int("attempt", attempt),
		zap.Int("max", c.cfg.MaxReconnectAttempts),
		zap.Duration("delay", delay))
	c.emitLog("client.reconnect", "reconnect scheduled")
	c.retry.Arm(delay, c.retryNow)
}

// retryNow is the reconnect timer callback: one attempt, and on
// failure the loop schedules the next.
func (c *Client) retryNow() {
	c.mu.Lock()
	skip := c.destroyed || c.params == nil || c.status != entities.StatusDisconnected
	c.mu.Unlock()
	if skip {
		return
	}
	if err := c.connect(context.Background(), nil, true); err != nil {
		c.scheduleRetry()
	}
}
