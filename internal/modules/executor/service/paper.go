package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fivesec_bot/internal/models"
	"fivesec_bot/pkg/clock"

	"go.uber.org/zap"
)

// PaperSink settles each intent at expiry against the last observed price.
// BUY wins when the exit is above the entry, SELL when below; a flat market loses.
type PaperSink struct {
	prices PriceView
	clk    clock.Clock
	l      *zap.Logger

	out  chan models.TradeOutcome
	done chan struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewPaperSink(prices PriceView, clk clock.Clock, l *zap.Logger) *PaperSink {
	return &PaperSink{
		prices: prices,
		clk:    clk,
		l:      l.Named("paper_sink"),
		out:    make(chan models.TradeOutcome, outcomeBuffer),
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}
}

func (s *PaperSink) Name() string                         { return "paper" }
func (s *PaperSink) Outcomes() <-chan models.TradeOutcome { return s.out }

func (s *PaperSink) Place(ctx context.Context, intent models.TradeIntent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("place %s: %w", intent.ID, err)
	}
	entry, ok := s.prices.LastPrice()
	if !ok {
		return fmt.Errorf("place %s: %w", intent.ID, ErrNoPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.timers[intent.ID] = time.AfterFunc(intent.Expiry(), func() {
		s.settle(intent, entry)
	})

	s.l.Info("paper trade opened",
		zap.String("trade_id", intent.ID),
		zap.String("direction", intent.Direction.String()),
		zap.Float64("amount", intent.Amount),
		zap.Float64("entry", entry),
	)
	return nil
}

func (s *PaperSink) settle(intent models.TradeIntent, entry float64) {
	s.mu.Lock()
	delete(s.timers, intent.ID)
	s.mu.Unlock()

	exit, _ := s.prices.LastPrice()
	result := models.Loss
	switch {
	case intent.Direction == models.Buy && exit > entry:
		result = models.Win
	case intent.Direction == models.Sell && exit < entry:
		result = models.Win
	}

	s.l.Debug("paper trade settled",
		zap.String("trade_id", intent.ID),
		zap.Float64("entry", entry),
		zap.Float64("exit", exit),
		zap.String("result", string(result)),
	)

	select {
	case s.out <- models.TradeOutcome{TradeID: intent.ID, Result: result, SettledAt: s.clk.Now()}:
	case <-s.done:
	}
}

// Close cancels pending settlements.
func (s *PaperSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	close(s.done)
}

// Pending is the number of open paper trades.
func (s *PaperSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
