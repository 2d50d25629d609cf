package binance

import (
	"math/rand"
	"time"
)

// backoff computes the reconnect delay sequence from spec.md §5: start at
// 1s, double on each failure up to a 30s ceiling, jitter up to 30% of the
// current delay, and reset after a successful message. Unlike the
// teacher's WebSocket clients (which retry on a flat 3-5s sleep), this
// schedule is exponential, so it has no teacher analogue.
type backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff() *backoff {
	return &backoff{base: time.Second, max: 30 * time.Second}
}

// next returns the delay to wait before the next connection attempt and
// advances the internal state.
func (b *backoff) next() time.Duration {
	if b.current == 0 {
		b.current = b.base
	} else {
		b.current *= 2
		if b.current > b.max {
			b.current = b.max
		}
	}
	jitter := time.Duration(rand.Int63n(int64(b.current)/10*3 + 1))
	return b.current + jitter
}

// reset clears accumulated backoff after a successful message, per §5.
func (b *backoff) reset() {
	b.current = 0
}
