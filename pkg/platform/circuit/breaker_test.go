package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance the breaker's cooldown without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// allow discards the admission transition for tests that only care about the
// decision.
func allow(b *Breaker) bool {
	ok, _ := b.Allow()
	return ok
}

func TestBreaker_InitialState(t *testing.T) {
	b := New("riskshield")
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "riskshield", b.Name())
	assert.True(t, allow(b))
}

func TestBreaker_OpensOnFifthConsecutiveFailure(t *testing.T) {
	b := New("riskshield")

	for i := 0; i < 4; i++ {
		change := b.RecordFailure()
		assert.False(t, change.Changed(), "failure %d must not trip", i+1)
	}
	assert.True(t, allow(b))

	change := b.RecordFailure()
	assert.True(t, change.Changed())
	assert.Equal(t, StateOpen, change.To)
	assert.False(t, allow(b))
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New("riskshield", WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_DeniesUntilCooldownElapses(t *testing.T) {
	clock := newFakeClock()
	b := New("riskshield", WithFailureThreshold(1), WithCooldown(60*time.Second), WithClock(clock.Now))

	b.RecordFailure()

	clock.Advance(59 * time.Second)
	assert.False(t, allow(b))
	assert.Equal(t, StateOpen, b.State())

	clock.Advance(time.Second)
	ok, change := b.Allow()
	assert.True(t, ok)
	assert.Equal(t, StateOpen, change.From)
	assert.Equal(t, StateHalfOpen, change.To, "probe admission must report the transition")
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreaker_HalfOpenAdmitsSingleProbe(t *testing.T) {
	clock := newFakeClock()
	b := New("riskshield", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(clock.Now))

	b.RecordFailure()
	clock.Advance(time.Minute)

	assert.True(t, allow(b), "first call after cooldown is the probe")
	assert.False(t, allow(b), "second concurrent call is denied")
	assert.False(t, allow(b))
}

func TestBreaker_ProbeSuccessCloses(t *testing.T) {
	clock := newFakeClock()
	b := New("riskshield", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(clock.Now))

	b.RecordFailure()
	clock.Advance(time.Minute)
	assert.True(t, allow(b))

	change := b.RecordSuccess()
	assert.Equal(t, StateHalfOpen, change.From)
	assert.Equal(t, StateClosed, change.To)
	assert.True(t, allow(b))

	// Failure count was reset: one failure must not re-trip at threshold 2.
	b2 := New("riskshield", WithFailureThreshold(2), WithCooldown(time.Minute), WithClock(clock.Now))
	b2.RecordFailure()
	b2.RecordFailure()
	clock.Advance(time.Minute)
	assert.True(t, allow(b2))
	b2.RecordSuccess()
	b2.RecordFailure()
	assert.Equal(t, StateClosed, b2.State())
}

func TestBreaker_ProbeFailureReopensAndRestartsCooldown(t *testing.T) {
	clock := newFakeClock()
	b := New("riskshield", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(clock.Now))

	b.RecordFailure()
	clock.Advance(time.Minute)
	assert.True(t, allow(b))

	change := b.RecordFailure()
	assert.Equal(t, StateHalfOpen, change.From)
	assert.Equal(t, StateOpen, change.To)

	clock.Advance(59 * time.Second)
	assert.False(t, allow(b), "cooldown restarted at probe failure")
	clock.Advance(time.Second)
	assert.True(t, allow(b))
}

func TestBreaker_ReleaseProbeFreesTheSlot(t *testing.T) {
	clock := newFakeClock()
	b := New("riskshield", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(clock.Now))

	b.RecordFailure()
	clock.Advance(time.Minute)
	assert.True(t, allow(b))

	// The probe was abandoned without an outcome. Releasing it must not
	// leave the half-open slot held forever.
	change := b.ReleaseProbe()
	assert.Equal(t, StateHalfOpen, change.From)
	assert.Equal(t, StateOpen, change.To)

	// The cooldown clock is not restarted: a fresh probe is admitted at
	// once, and it still decides recovery normally.
	assert.True(t, allow(b), "next call after release is a fresh probe")
	change = b.RecordSuccess()
	assert.Equal(t, StateClosed, change.To)
}

func TestBreaker_ReleaseProbeIsNoopOutsideHalfOpen(t *testing.T) {
	b := New("riskshield", WithFailureThreshold(1))

	assert.False(t, b.ReleaseProbe().Changed(), "closed")

	b.RecordFailure()
	assert.False(t, b.ReleaseProbe().Changed(), "open")
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_LateOutcomesWhileOpenAreIgnored(t *testing.T) {
	b := New("riskshield", WithFailureThreshold(1))

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())

	// Outcomes from attempts admitted before the trip must not move the FSM.
	assert.False(t, b.RecordSuccess().Changed())
	assert.False(t, b.RecordFailure().Changed())
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	b := New("riskshield", WithFailureThreshold(1))
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, allow(b))
}

func TestBreaker_ConcurrentOutcomes(t *testing.T) {
	b := New("riskshield", WithFailureThreshold(5))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(fail bool) {
			defer wg.Done()
			allow(b)
			if fail {
				b.RecordFailure()
			} else {
				b.RecordSuccess()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	// No torn state: the breaker lands in a legal position.
	state := b.State()
	assert.Contains(t, []State{StateClosed, StateOpen}, state)
}
