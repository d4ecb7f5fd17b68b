package service

import (
	"context"
	"math"
	"time"
)

// Source produces ticks into q until ctx is cancelled.
type Source interface {
	Name() string
	Run(ctx context.Context, q *Queue) error
}

// Status receives connection and liveness signals; the health module implements it.
type Status interface {
	SetWSConnected(v bool)
	TouchTick(t time.Time)
}

type nopStatus struct{}

func (nopStatus) SetWSConnected(bool) {}
func (nopStatus) TouchTick(time.Time) {}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
