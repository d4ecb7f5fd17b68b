package service

import (
	"errors"
	"sync"
	"time"

	"fivesec_bot/internal/models"
	"fivesec_bot/internal/modules/config"
)

// MinLookback is the number of closed candles the pattern needs.
const MinLookback = 2

var ErrStaleTick = errors.New("tick is older than the open window")

// Lookback is what one decision cycle reads from the aggregator.
type Lookback struct {
	C1, C2    models.Candle
	ThirdOpen float64
	HasThird  bool    // a candle is open after C2
	Price     float64 // latest observed price
}

// Aggregator turns ticks into period-aligned candles.
// Writes (AddPrice, CloseDue) must come from a single goroutine; reads may come from anywhere.
type Aggregator struct {
	period time.Duration

	mu        sync.RWMutex
	cur       models.Candle
	open      bool
	history   *History
	sealedTil time.Time // End of the last closed candle
	lastPrice float64
	hasPrice  bool
	stale     uint64
}

func New(period time.Duration, capacity int) *Aggregator {
	return &Aggregator{
		period:  period,
		history: NewHistory(capacity),
	}
}

func NewAggregator(cfg *config.Config) *Aggregator {
	return New(cfg.Candles.Period, cfg.Candles.History)
}

func (a *Aggregator) Period() time.Duration { return a.period }

// Align returns the window containing ts.
func (a *Aggregator) Align(ts time.Time) (start, end time.Time) {
	ns := ts.UnixNano()
	p := a.period.Nanoseconds()
	rem := ns % p
	if rem < 0 {
		rem += p
	}
	start = time.Unix(0, ns-rem).In(ts.Location())
	return start, start.Add(a.period)
}

// AddPrice folds one tick into the open candle. If the tick lies at or past the
// open candle's end, that candle is closed first and returned with ok=true.
// Gaps are not filled: the next candle opens on the window of the tick itself.
func (a *Aggregator) AddPrice(price float64, at time.Time) (closed models.Candle, ok bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// a candle only ever holds ticks from its own [Start, End)
	if (!a.sealedTil.IsZero() && at.Before(a.sealedTil)) || (a.open && at.Before(a.cur.Start)) {
		a.stale++
		return models.Candle{}, false, ErrStaleTick
	}

	if a.open && !at.Before(a.cur.End) {
		closed, ok = a.closeLocked()
	}

	if !a.open {
		start, end := a.Align(at)
		a.cur = models.Candle{Start: start, End: end}
		a.open = true
	}

	c := &a.cur
	if c.Ticks == 0 {
		c.Open, c.High, c.Low = price, price, price
	}
	c.Close = price
	if price > c.High {
		c.High = price
	}
	if price < c.Low {
		c.Low = price
	}
	c.Ticks++

	a.lastPrice, a.hasPrice = price, true
	return closed, ok, nil
}

// AddPriceNow stamps the tick with the wall clock.
func (a *Aggregator) AddPriceNow(price float64) (models.Candle, bool, error) {
	return a.AddPrice(price, time.Now())
}

// CloseDue is the clock check: it closes the open candle if now has reached its end.
func (a *Aggregator) CloseDue(now time.Time) (models.Candle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.open || now.Before(a.cur.End) {
		return models.Candle{}, false
	}
	return a.closeLocked()
}

func (a *Aggregator) closeLocked() (models.Candle, bool) {
	c := a.cur
	a.cur = models.Candle{}
	a.open = false
	if c.Empty() {
		return models.Candle{}, false
	}
	a.history.Push(c)
	a.sealedTil = c.End
	return c, true
}

// LastNClosed returns up to n most recent closed candles in insertion order.
func (a *Aggregator) LastNClosed(n int) []models.Candle {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.history.LastN(n)
}

func (a *Aggregator) Ready(minCount int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.history.Len() >= minCount
}

func (a *Aggregator) CurrentOpenPrice() (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.open || a.cur.Empty() {
		return 0, false
	}
	return a.cur.Open, true
}

// CurrentEnd is the boundary at which the open candle must close.
func (a *Aggregator) CurrentEnd() (time.Time, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.open {
		return time.Time{}, false
	}
	return a.cur.End, true
}

func (a *Aggregator) LastPrice() (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastPrice, a.hasPrice
}

func (a *Aggregator) StaleTicks() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stale
}

// Lookback snapshots the two most recent closed candles and the third (open) one.
func (a *Aggregator) Lookback() (Lookback, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	last := a.history.LastN(MinLookback)
	if len(last) < MinLookback {
		return Lookback{}, false
	}
	lb := Lookback{C1: last[0], C2: last[1], Price: a.lastPrice}
	if a.open && !a.cur.Empty() {
		lb.ThirdOpen, lb.HasThird = a.cur.Open, true
	}
	return lb, true
}
