// Package timer provides a single-slot timer: arming it cancels any
// previously pending fire, so at most one callback is ever scheduled.
package timer

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Timer owns at most one pending callback. Arm cancels the previous
// one before scheduling; a stopped timer never fires.
type Timer struct {
	clk clock.Clock

	mu      sync.Mutex
	seq     uint64
	pending *clock.Timer
}

// New returns a Timer driven by clk.
func New(clk clock.Clock) *Timer {
	return &Timer{clk: clk}
}

// Arm schedules fn to run after d, cancelling any pending fire first.
func (t *Timer) Arm(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.seq++
	seq := t.seq
	t.pending = t.clk.AfterFunc(d, func() {
		t.mu.Lock()
		if t.seq != seq {
			// Stopped or re-armed after the fire was queued.
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.mu.Unlock()
		fn()
	})
}

// Stop cancels the pending fire, if any. It reports whether a fire was
// pending.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelLocked()
}

// Armed reports whether a fire is pending.
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

func (t *Timer) cancelLocked() bool {
	if t.pending == nil {
		return false
	}
	t.pending.Stop()
	t.pending = nil
	t.seq++
	return true
}
