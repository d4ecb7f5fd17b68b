package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fivesec_bot/internal/models"
	candles "fivesec_bot/internal/modules/candles/service"
	staking "fivesec_bot/internal/modules/staking/service"
	strategy "fivesec_bot/internal/modules/strategy/service"
	"fivesec_bot/pkg/clock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func at(sec float64) time.Time {
	return t0.Add(time.Duration(sec * float64(time.Second)))
}

func candle(startSec float64, open, high, low, close float64) models.Candle {
	return models.Candle{
		Start: at(startSec), End: at(startSec + 5),
		Open: open, High: high, Low: low, Close: close, Ticks: 2,
	}
}

// bullish pair that confirms a BUY with third open 101.5
func buyLookback(price float64) candles.Lookback {
	return candles.Lookback{
		C1:        candle(0, 100, 101, 100, 101),
		C2:        candle(5, 101, 101.8, 100.9, 101.5),
		ThirdOpen: 101.5,
		HasThird:  true,
		Price:     price,
	}
}

type staticLookback struct {
	mu sync.Mutex
	lb candles.Lookback
	ok bool
}

func (s *staticLookback) Lookback() (candles.Lookback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lb, s.ok
}

func (s *staticLookback) set(lb candles.Lookback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lb, s.ok = lb, true
}

// slowEngine advances the fake clock by cost on every evaluation.
type slowEngine struct {
	strategy.Engine
	clk   *clock.Fake
	cost  time.Duration
	calls int
}

func (e *slowEngine) Evaluate(c1, c2 models.Candle, thirdOpen *float64, price float64) strategy.Decision {
	e.calls++
	e.clk.Advance(e.cost)
	return e.Engine.Evaluate(c1, c2, thirdOpen, price)
}

type fakeSink struct {
	mu       sync.Mutex
	placed   []models.TradeIntent
	err      error
	deadline bool
	out      chan models.TradeOutcome
}

func newFakeSink() *fakeSink {
	return &fakeSink{out: make(chan models.TradeOutcome, 8)}
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) Place(ctx context.Context, in models.TradeIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, s.deadline = ctx.Deadline()
	if s.err != nil {
		return s.err
	}
	s.placed = append(s.placed, in)
	return nil
}

func (s *fakeSink) Outcomes() <-chan models.TradeOutcome { return s.out }
func (s *fakeSink) Close()                               {}

func (s *fakeSink) intents() []models.TradeIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.TradeIntent(nil), s.placed...)
}

type memRecorder struct {
	mu      sync.Mutex
	records []models.TradeRecord
	events  []models.Event
}

func (r *memRecorder) Record(rec models.TradeRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return true
}

func (r *memRecorder) Event(name string, at time.Time, payload map[string]any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, models.Event{Name: name, At: at, Payload: payload})
	return true
}

func (r *memRecorder) eventNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Name)
	}
	return names
}

type chatLog struct {
	mu   sync.Mutex
	msgs []string
}

func (c *chatLog) SendService(_ context.Context, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, fmt.Sprintf(format, args...))
}

func (c *chatLog) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func newMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func newLadder(t *testing.T) *staking.Martingale {
	t.Helper()
	m, err := staking.NewMartingale(1, 2, 3)
	require.NoError(t, err)
	return m
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("trade-%d", n)
	}
}

var errVenueDown = errors.New("venue down")
