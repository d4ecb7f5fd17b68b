package models

// Direction is the outcome of one pattern evaluation.
type Direction string

const (
	NoTrade Direction = ""
	Buy     Direction = "BUY"
	Sell    Direction = "SELL"
)

func (d Direction) String() string {
	if d == NoTrade {
		return "NO_TRADE"
	}
	return string(d)
}

// Tradable is true for Buy and Sell.
func (d Direction) Tradable() bool { return d == Buy || d == Sell }
