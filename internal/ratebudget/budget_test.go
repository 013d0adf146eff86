package ratebudget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the budget without real sleeping. Sleeping advances the
// clock by the requested duration, exactly as a blocking wait would observe.
type fakeClock struct {
	t      time.Time
	slept  []time.Duration
	cancel bool
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if c.cancel {
		return context.Canceled
	}
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
	return nil
}

func newTestBudget(softCap int, window time.Duration) (*Budget, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := New(softCap, window)
	b.now = clock.now
	b.sleep = clock.sleep
	b.windowStart = clock.t
	return b, clock
}

func TestAcquireUnderCapNeverSleeps(t *testing.T) {
	b, clock := newTestBudget(95, time.Minute)

	for i := 0; i < 95; i++ {
		require.NoError(t, b.Acquire(context.Background()))
	}
	assert.Empty(t, clock.slept)
	assert.Equal(t, 95, b.count)
}

func TestAcquireAtCapSleepsRemainingWindow(t *testing.T) {
	b, clock := newTestBudget(3, time.Minute)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))
	require.NoError(t, b.Acquire(ctx))
	require.NoError(t, b.Acquire(ctx))

	clock.t = clock.t.Add(40 * time.Second)
	require.NoError(t, b.Acquire(ctx))

	require.Len(t, clock.slept, 1)
	assert.Equal(t, 20*time.Second, clock.slept[0])
	// fresh window after the wait, with the new request counted
	assert.Equal(t, 1, b.count)
}

func TestWindowElapseResetsCounter(t *testing.T) {
	b, clock := newTestBudget(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))
	require.NoError(t, b.Acquire(ctx))

	clock.t = clock.t.Add(time.Minute)
	require.NoError(t, b.Acquire(ctx))

	assert.Empty(t, clock.slept)
	assert.Equal(t, 1, b.count)
}

func TestSlidingWindowCompliance(t *testing.T) {
	// Hammer the budget and verify no 60s span ever admits more than the cap.
	const softCap = 10
	b, clock := newTestBudget(softCap, time.Minute)
	ctx := context.Background()

	var stamps []time.Time
	for i := 0; i < 45; i++ {
		require.NoError(t, b.Acquire(ctx))
		stamps = append(stamps, clock.t)
		clock.t = clock.t.Add(250 * time.Millisecond)
	}

	for i := range stamps {
		inWindow := 0
		for j := i; j < len(stamps) && stamps[j].Sub(stamps[i]) < time.Minute; j++ {
			inWindow++
		}
		assert.LessOrEqual(t, inWindow, softCap, "window starting at request %d", i)
	}
}

func TestAcquireCancelledDuringWait(t *testing.T) {
	b, clock := newTestBudget(1, time.Minute)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))
	clock.cancel = true
	assert.ErrorIs(t, b.Acquire(ctx), context.Canceled)
}

func TestResetStartsFreshWindow(t *testing.T) {
	b, clock := newTestBudget(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))
	require.NoError(t, b.Acquire(ctx))
	b.Reset()
	require.NoError(t, b.Acquire(ctx))
	assert.Empty(t, clock.slept)
}
