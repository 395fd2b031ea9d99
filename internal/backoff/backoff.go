// Package backoff computes retry delays growing exponentially with the
// attempt count, capped and randomized to avoid synchronized retries.
package backoff

import (
	"math/rand"
	"sync"
	"time"
)

// Policy computes per-attempt retry delays. The jitter component is
// re-drawn on every call.
type Policy struct {
	base      time.Duration
	max       time.Duration
	jitterMax time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Policy with the given base delay, cap, and maximum
// jitter.
func New(base, max, jitterMax time.Duration) *Policy {
	return &Policy{
		base:      base,
		max:       max,
		jitterMax: jitterMax,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Delay returns the delay before the given attempt (1-based):
// min(max, base*2^(attempt-1)) plus jitter in [0, jitterMax).
func (p *Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.max
	// Shifting past 62 bits would overflow time.Duration.
	if attempt-1 < 62 {
		if shifted := p.base << uint(attempt-1); shifted > 0 && shifted < p.max {
			d = shifted
		}
	}
	if p.jitterMax > 0 {
		p.mu.Lock()
		d += time.Duration(p.rng.Int63n(int64(p.jitterMax)))
		p.mu.Unlock()
	}
	return d
}
