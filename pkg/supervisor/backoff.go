package supervisor

import (
	"math/rand"
	"time"
)

// jitterFraction spreads retries of concurrent workers apart.
const jitterFraction = 0.2

// Backoff tracks the retry delay of one worker after consecutive failures.
// It is not safe for concurrent use.
type Backoff struct {
	initial  time.Duration
	max      time.Duration
	next     time.Duration
	attempts int
}

// NewBackoff creates a backoff starting at initial and capped at max.
// A max below initial is raised to initial.
func NewBackoff(initial, max time.Duration) *Backoff {
	if max < initial {
		max = initial
	}
	return &Backoff{initial: initial, max: max, next: initial}
}

// Next records a failed attempt and returns how long to wait before the
// retry: the pending delay plus or minus jitterFraction.
func (b *Backoff) Next() time.Duration {
	b.attempts++
	base := b.next
	if b.next < b.max {
		b.next = min(b.next*2, b.max)
	}
	jitter := float64(base) * jitterFraction * (rand.Float64()*2 - 1)
	return base + time.Duration(jitter)
}

// Reset is called after a successful unit.
func (b *Backoff) Reset() {
	b.next = b.initial
	b.attempts = 0
}

// Current returns the delay the next call to Next is centered on.
func (b *Backoff) Current() time.Duration {
	return b.next
}

// Attempts returns the number of failures since the last Reset.
func (b *Backoff) Attempts() int {
	return b.attempts
}
