package livewire

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// heartbeat periodically runs a keepalive send while the client is
// connected. A failing send stops the loop instead of hammering a
// broken transport.
type heartbeat struct {
	clk      clock.Clock
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	stopCh chan struct{}
}

func newHeartbeat(clk clock.Clock, interval time.Duration, logger *zap.Logger) *heartbeat {
	return &heartbeat{clk: clk, interval: interval, logger: logger}
}

// start launches the keepalive loop, replacing any previous one so at
// most one timer runs at a time.
func (h *heartbeat) start(send func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	stop := make(chan struct{})
	h.stopCh = stop
	go h.run(stop, send)
}

func (h *heartbeat) run(stop <-chan struct{}, send func() error) {
	ticker := h.clk.Ticker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := send(); err != nil {
				h.logger.Warn("keepalive failed, stopping heartbeat", zap.Error(err))
				return
			}
		}
	}
}

// stop halts the loop. Idempotent.
func (h *heartbeat) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

func (h *heartbeat) stopLocked() {
	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}
}
