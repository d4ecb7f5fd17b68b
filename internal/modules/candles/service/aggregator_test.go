package service

import (
	"math/rand"
	"testing"
	"time"

	"fivesec_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const period = 5 * time.Second

func at(sec float64) time.Time {
	return time.Unix(0, int64(sec*float64(time.Second)))
}

func TestAlignToPeriod(t *testing.T) {
	a := New(period, 20)

	start, end := a.Align(at(12.3))
	assert.True(t, start.Equal(at(10)))
	assert.True(t, end.Equal(at(15)))

	start, end = a.Align(at(15))
	assert.True(t, start.Equal(at(15)))
	assert.True(t, end.Equal(at(20)))
}

func TestAggregatorScenario(t *testing.T) {
	a := New(period, 20)

	_, closed, err := a.AddPrice(100, at(0))
	require.NoError(t, err)
	assert.False(t, closed)
	_, closed, err = a.AddPrice(102, at(4))
	require.NoError(t, err)
	assert.False(t, closed)
	assert.False(t, a.Ready(1))

	c, closed, err := a.AddPrice(101, at(6))
	require.NoError(t, err)
	require.True(t, closed)
	assert.True(t, c.Start.Equal(at(0)))
	assert.True(t, c.End.Equal(at(5)))
	assert.Equal(t, 100.0, c.Open)
	assert.Equal(t, 102.0, c.High)
	assert.Equal(t, 100.0, c.Low)
	assert.Equal(t, 102.0, c.Close)

	_, closed, err = a.AddPrice(105, at(9))
	require.NoError(t, err)
	assert.False(t, closed)

	open, ok := a.CurrentOpenPrice()
	require.True(t, ok)
	assert.Equal(t, 101.0, open)

	_, closed = a.CloseDue(at(9.999))
	assert.False(t, closed)

	c, closed = a.CloseDue(at(10))
	require.True(t, closed)
	assert.Equal(t, models.Candle{Start: c.Start, End: c.End, Open: 101, High: 105, Low: 101, Close: 105, Ticks: 2}, c)
	assert.True(t, c.Start.Equal(at(5)))
	assert.True(t, c.End.Equal(at(10)))

	assert.True(t, a.Ready(MinLookback))
	_, ok = a.CurrentOpenPrice()
	assert.False(t, ok, "no candle is open until the next tick")
}

func TestAggregatorSkipsGapWindows(t *testing.T) {
	a := New(period, 20)

	_, _, _ = a.AddPrice(1, at(1))
	c, closed, err := a.AddPrice(2, at(23))
	require.NoError(t, err)
	require.True(t, closed)
	assert.True(t, c.End.Equal(at(5)))

	end, ok := a.CurrentEnd()
	require.True(t, ok)
	assert.True(t, end.Equal(at(25)))
	assert.Len(t, a.LastNClosed(10), 1, "no synthetic candles for skipped windows")

	open, _ := a.CurrentOpenPrice()
	assert.Equal(t, 2.0, open)
}

func TestAggregatorRejectsTickForSealedWindow(t *testing.T) {
	a := New(period, 20)

	_, _, _ = a.AddPrice(1, at(1))
	_, closed := a.CloseDue(at(5))
	require.True(t, closed)

	_, _, err := a.AddPrice(3, at(4.9))
	assert.ErrorIs(t, err, ErrStaleTick)
	assert.Equal(t, uint64(1), a.StaleTicks())
	assert.Len(t, a.LastNClosed(5), 1)
}

func TestAggregatorRejectsTickOlderThanOpenWindow(t *testing.T) {
	a := New(period, 20)

	_, _, _ = a.AddPrice(1, at(1))
	c, closed, err := a.AddPrice(2, at(23))
	require.NoError(t, err)
	require.True(t, closed)
	require.True(t, c.End.Equal(at(5)))

	// t=12 is past the sealed [0,5) but before the open [20,25)
	_, closed, err = a.AddPrice(50, at(12))
	assert.ErrorIs(t, err, ErrStaleTick)
	assert.False(t, closed)
	assert.Equal(t, uint64(1), a.StaleTicks())

	c, closed = a.CloseDue(at(25))
	require.True(t, closed)
	assert.True(t, c.Start.Equal(at(20)))
	assert.Equal(t, 2.0, c.High)
	assert.Equal(t, 1, c.Ticks)
}

func TestAggregatorRejectsOlderTickBeforeFirstClose(t *testing.T) {
	a := New(period, 20)

	_, _, err := a.AddPrice(10, at(7))
	require.NoError(t, err)

	_, _, err = a.AddPrice(99, at(3))
	assert.ErrorIs(t, err, ErrStaleTick)

	open, ok := a.CurrentOpenPrice()
	require.True(t, ok)
	assert.Equal(t, 10.0, open)
	last, _ := a.LastPrice()
	assert.Equal(t, 10.0, last, "rejected tick does not move the last price")
}

func TestAggregatorCloseDueWithoutOpenCandle(t *testing.T) {
	a := New(period, 20)
	_, closed := a.CloseDue(at(100))
	assert.False(t, closed)
}

func TestAggregatorWindowsAndExtremaInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		a := New(period, 20)
		var got []models.Candle
		ts := float64(rnd.Intn(1000))
		price := 100.0

		for i := 0; i < 300; i++ {
			ts += rnd.Float64() * 3
			if rnd.Intn(20) == 0 {
				ts += rnd.Float64() * 30 // sparse ticks
			}
			price += rnd.NormFloat64()
			c, closed, err := a.AddPrice(price, at(ts))
			require.NoError(t, err)
			if closed {
				got = append(got, c)
			}
		}

		for i, c := range got {
			assert.Equal(t, period, c.Period())
			assert.True(t, c.Start.Before(c.End))
			assert.GreaterOrEqual(t, c.High, max(c.Open, c.Close))
			assert.LessOrEqual(t, c.Low, min(c.Open, c.Close))
			assert.Positive(t, c.Ticks)
			if i > 0 {
				assert.False(t, c.Start.Before(got[i-1].End), "windows overlap at %d", i)
			}
		}
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(models.Candle{Open: float64(i)})
	}

	assert.Equal(t, 3, h.Len())
	last := h.LastN(10)
	require.Len(t, last, 3)
	assert.Equal(t, []float64{3, 4, 5}, []float64{last[0].Open, last[1].Open, last[2].Open})

	two := h.LastN(2)
	assert.Equal(t, 4.0, two[0].Open)
	assert.Equal(t, 5.0, two[1].Open)

	c, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, 5.0, c.Open)
	assert.Nil(t, h.LastN(0))
}

func TestLookback(t *testing.T) {
	a := New(period, 20)
	_, ok := a.Lookback()
	assert.False(t, ok)

	_, _, _ = a.AddPrice(100, at(0))
	_, _, _ = a.AddPrice(101, at(4))
	_, _, _ = a.AddPrice(101, at(5))
	_, _, _ = a.AddPrice(101.5, at(9))
	_, _, _ = a.AddPrice(101.5, at(10))
	_, _, _ = a.AddPrice(101.7, at(10.5))

	lb, ok := a.Lookback()
	require.True(t, ok)
	assert.Equal(t, 100.0, lb.C1.Open)
	assert.Equal(t, 101.5, lb.C2.Close)
	assert.True(t, lb.HasThird)
	assert.Equal(t, 101.5, lb.ThirdOpen)
	assert.Equal(t, 101.7, lb.Price)
}
