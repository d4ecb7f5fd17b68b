package models

import "time"

// Tick is a single observed price.
type Tick struct {
	Symbol string
	Price  float64
	At     time.Time
}

// Candle is an OHLC summary of the ticks seen in [Start, End).
// Once closed it is handed out by value and never mutated again.
type Candle struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
	Ticks int       `json:"ticks"`
}

func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

func (c Candle) Range() float64 { return c.High - c.Low }

func (c Candle) Bullish() bool { return c.Close > c.Open }
func (c Candle) Bearish() bool { return c.Close < c.Open }

// UpperWick is the distance from the top of the body to the high.
func (c Candle) UpperWick() float64 {
	return c.High - max(c.Open, c.Close)
}

// LowerWick is the distance from the low to the bottom of the body.
func (c Candle) LowerWick() float64 {
	return min(c.Open, c.Close) - c.Low
}

// Empty reports whether no tick was ever added.
func (c Candle) Empty() bool { return c.Ticks == 0 }

// Period is End - Start.
func (c Candle) Period() time.Duration { return c.End.Sub(c.Start) }
