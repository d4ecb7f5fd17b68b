package service

import (
	"context"
	"errors"

	"fivesec_bot/internal/models"
)

var (
	ErrNoPrice = errors.New("no market price to enter at")
	ErrClosed  = errors.New("sink closed")
)

// Sink accepts trade intents and reports their outcomes on Outcomes().
// Place must return quickly; settlement is asynchronous.
type Sink interface {
	Name() string
	Place(ctx context.Context, intent models.TradeIntent) error
	Outcomes() <-chan models.TradeOutcome
	Close()
}

// PriceView is the read side of the candle aggregator.
type PriceView interface {
	LastPrice() (float64, bool)
}

const outcomeBuffer = 64
