package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"fivesec_bot/internal/models"
	"fivesec_bot/pkg/clock"

	"go.uber.org/zap"
)

// RandomSink settles every intent immediately with a seeded coin flip.
type RandomSink struct {
	winProbability float64
	clk            clock.Clock
	l              *zap.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	closed bool

	out  chan models.TradeOutcome
	done chan struct{}
}

func NewRandomSink(seed int64, winProbability float64, clk clock.Clock, l *zap.Logger) *RandomSink {
	return &RandomSink{
		winProbability: winProbability,
		clk:            clk,
		l:              l.Named("random_sink"),
		rng:            rand.New(rand.NewSource(seed)),
		out:            make(chan models.TradeOutcome, outcomeBuffer),
		done:           make(chan struct{}),
	}
}

func (s *RandomSink) Name() string                         { return "random" }
func (s *RandomSink) Outcomes() <-chan models.TradeOutcome { return s.out }

func (s *RandomSink) Place(ctx context.Context, intent models.TradeIntent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("place %s: %w", intent.ID, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	result := models.Loss
	if s.rng.Float64() < s.winProbability {
		result = models.Win
	}
	s.mu.Unlock()

	s.l.Info("mock trade placed",
		zap.String("trade_id", intent.ID),
		zap.String("direction", intent.Direction.String()),
		zap.Float64("amount", intent.Amount),
		zap.String("result", string(result)),
	)

	go func() {
		select {
		case s.out <- models.TradeOutcome{TradeID: intent.ID, Result: result, SettledAt: s.clk.Now()}:
		case <-s.done:
		}
	}()
	return nil
}

func (s *RandomSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}
