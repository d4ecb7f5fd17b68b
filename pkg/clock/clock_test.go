package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUntilReachesDeadline(t *testing.T) {
	clk := System{}
	deadline := clk.Now().Add(5 * time.Millisecond)

	require.NoError(t, WaitUntil(context.Background(), clk, deadline, DefaultSpinLead))
	assert.False(t, clk.Now().Before(deadline))
}

func TestWaitUntilPastDeadlineReturnsImmediately(t *testing.T) {
	clk := System{}
	start := time.Now()

	require.NoError(t, WaitUntil(context.Background(), clk, start.Add(-time.Second), DefaultSpinLead))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitUntilHonoursCancelWhileSleeping(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitUntil(ctx, System{}, time.Now().Add(time.Hour), DefaultSpinLead)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitUntilHonoursCancelWhileSpinning(t *testing.T) {
	// frozen fake clock never reaches the deadline, only ctx can end the spin
	fake := NewFake(time.Unix(100, 0))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := WaitUntil(ctx, fake, time.Unix(100, 0).Add(time.Millisecond), time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAnchorKeepsWallDistance(t *testing.T) {
	now := time.Now()
	wall := now.Round(0).Add(15 * time.Millisecond)

	anchored := Anchor(now, wall)
	assert.Equal(t, 15*time.Millisecond, anchored.Sub(now))
}

func TestFakeStep(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	f.Step = time.Millisecond

	assert.Equal(t, time.Unix(0, 0), f.Now())
	assert.Equal(t, time.Unix(0, 0).Add(time.Millisecond), f.Now())
	f.Advance(time.Second)
	assert.Equal(t, time.Unix(0, 0).Add(time.Second+2*time.Millisecond), f.Now())
}
