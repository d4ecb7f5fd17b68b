package service

import (
	"sync/atomic"

	"fivesec_bot/internal/models"
)

// Queue is the bounded hand-off between a feed and the pipeline.
// Offer never blocks: when the consumer falls behind, ticks are dropped and counted.
type Queue struct {
	ch      chan models.Tick
	dropped atomic.Uint64
	offered atomic.Uint64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{ch: make(chan models.Tick, size)}
}

func (q *Queue) Offer(t models.Tick) bool {
	q.offered.Add(1)
	select {
	case q.ch <- t:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

func (q *Queue) C() <-chan models.Tick { return q.ch }
func (q *Queue) Len() int              { return len(q.ch) }
func (q *Queue) Dropped() uint64       { return q.dropped.Load() }
func (q *Queue) Offered() uint64       { return q.offered.Load() }
