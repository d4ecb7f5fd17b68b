package clock

import (
	"context"
	"time"
)

// Clock abstracts time.Now so deadline checks can be driven by a fake in tests.
// Real implementations must return readings that carry Go's monotonic component.
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

// DefaultSpinLead is how close to a deadline we stop sleeping and start spinning.
const DefaultSpinLead = 2 * time.Millisecond

// WaitUntil blocks until clk reaches deadline.
// Most of the wait is a timer sleep; the last spinLead is a busy loop on the
// monotonic clock so the boundary is hit with sub-millisecond precision.
// ctx is checked on every spin iteration.
func WaitUntil(ctx context.Context, clk Clock, deadline time.Time, spinLead time.Duration) error {
	if spinLead < 0 {
		spinLead = 0
	}

	if coarse := deadline.Sub(clk.Now()) - spinLead; coarse > 0 {
		t := time.NewTimer(coarse)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	for clk.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Anchor converts a wall-clock deadline into one carrying the monotonic reading
// of now, so later comparisons against clk.Now() are immune to wall clock steps.
func Anchor(now, wallDeadline time.Time) time.Time {
	return now.Add(wallDeadline.Sub(now.Round(0)))
}
