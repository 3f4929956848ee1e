// Package circuit implements a three-state circuit breaker for outbound
// dependencies.
//
// The breaker is the only cross-call shared mutable state in the service, so
// every transition happens under a single mutex held only for the state
// read/write, never across network I/O. Construct one breaker per upstream and
// inject it; package-level breakers make isolated tests impossible.
package circuit

import (
	"sync"
	"time"
)

// State is the breaker position.
type State int

const (
	// StateClosed is normal operation; failures are counted.
	StateClosed State = iota
	// StateOpen rejects all calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen admits a single probe call to test recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// StateChange describes a transition caused by an admission or a recorded
// outcome. Callers use it to log and count transitions without re-reading
// breaker state.
type StateChange struct {
	From State
	To   State
}

// Changed reports whether the outcome moved the breaker.
func (c StateChange) Changed() bool {
	return c.From != c.To
}

const (
	defaultFailureThreshold = 5
	defaultCooldown         = 60 * time.Second
)

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets the consecutive-failure count that trips the
// breaker while closed.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithCooldown sets how long the breaker stays open before admitting a probe.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock overrides the time source. Tests use it to simulate the cooldown
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// Breaker tracks upstream health across all concurrent calls.
type Breaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time

	state         State
	failures      int // consecutive failures while closed
	openedAt      time.Time
	probeInFlight bool
}

// New creates a closed breaker. A restart always begins closed; breaker state
// is never persisted.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: defaultFailureThreshold,
		cooldown:         defaultCooldown,
		now:              time.Now,
		state:            StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the breaker's name, used in logs and metrics labels.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed. While open it fails fast until the
// cooldown has elapsed, at which point the breaker moves to half-open and
// admits exactly one probe; concurrent calls beyond the probe are denied the
// same as open. Denials are not failures and must not be recorded. The
// returned StateChange surfaces the open-to-half-open move so callers can log
// and count it like the outcome transitions.
func (b *Breaker) Allow() (bool, StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	change := StateChange{From: b.state, To: b.state}
	switch b.state {
	case StateClosed:
		return true, change
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false, change
		}
		b.state = StateHalfOpen
		b.probeInFlight = true
		change.To = StateHalfOpen
		return true, change
	case StateHalfOpen:
		if b.probeInFlight {
			return false, change
		}
		b.probeInFlight = true
		return true, change
	default:
		return false, change
	}
}

// ReleaseProbe returns a probe admission without recording an outcome, for
// calls whose result says nothing about upstream health (caller cancellation).
// The breaker goes back to open with the original cooldown clock, which has
// already elapsed, so the next Allow admits a fresh probe immediately. Without
// the release a canceled probe would hold the half-open slot forever. No-op
// outside half-open.
func (b *Breaker) ReleaseProbe() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	change := StateChange{From: b.state, To: b.state}
	if b.state == StateHalfOpen && b.probeInFlight {
		b.state = StateOpen
		b.probeInFlight = false
		change.To = StateOpen
	}
	return change
}

// RecordSuccess records a successful terminal outcome. A probe success closes
// the breaker and resets the failure count; a success while closed resets the
// failure count. A success landing while open (an attempt admitted before the
// trip finishing late) is ignored: only the probe decides recovery.
func (b *Breaker) RecordSuccess() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	change := StateChange{From: b.state, To: b.state}
	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.state = StateClosed
		b.failures = 0
		b.probeInFlight = false
		change.To = StateClosed
	}
	return change
}

// RecordFailure records a failed terminal outcome. The threshold-th
// consecutive failure while closed trips the breaker; a probe failure re-opens
// it and restarts the cooldown with the failure count kept at the threshold.
func (b *Breaker) RecordFailure() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	change := StateChange{From: b.state, To: b.state}
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.state = StateOpen
			b.openedAt = b.now()
			change.To = StateOpen
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = b.now()
		b.probeInFlight = false
		change.To = StateOpen
	}
	return change
}

// Reset manually closes the breaker and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.probeInFlight = false
}
