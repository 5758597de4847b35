package mqtt

import (
	"math/rand"
	"time"
)

// jitterFraction spreads reconnect attempts by up to 25% of the base delay
// so a fleet of clocks does not hammer a recovering broker in lockstep.
const jitterFraction = 0.25

// Backoff produces capped exponential reconnect delays: floor, 2*floor,
// 4*floor, ... up to cap, minus jitter. Reset returns it to the floor.
// Not safe for concurrent use; the link serializes access.
type Backoff struct {
	floor   time.Duration
	cap     time.Duration
	attempt int
	rnd     func() float64 // uniform [0,1); injectable for tests
}

// NewBackoff creates a Backoff with the given floor and cap.
func NewBackoff(floor, cap time.Duration) *Backoff {
	if floor <= 0 {
		floor = time.Second
	}
	if cap < floor {
		cap = floor
	}
	return &Backoff{floor: floor, cap: cap, rnd: rand.Float64}
}

// Next returns the delay to wait before the next attempt and advances the
// schedule. Jitter is shaved off the base delay rather than added, so the
// configured cap is a hard upper bound and attempts still spread out once
// the schedule pins at the cap.
func (b *Backoff) Next() time.Duration {
	d := b.floor
	for i := 0; i < b.attempt; i++ {
		d *= 2
		if d >= b.cap {
			d = b.cap
			break
		}
	}
	b.attempt++
	return d - time.Duration(float64(d)*jitterFraction*b.rnd())
}

// Reset returns the schedule to the floor. Called on successful connect.
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Attempt returns how many delays have been handed out since the last
// reset.
func (b *Backoff) Attempt() int {
	return b.attempt
}
