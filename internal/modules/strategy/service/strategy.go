package service

import "fivesec_bot/internal/models"

type Engine interface {
	// Evaluate also reports which rule fired, for logs and the journal.
	Evaluate(c1, c2 models.Candle, thirdOpen *float64, price float64) Decision
	// Decide: thirdOpen is nil when no candle has opened after c2 yet.
	Decide(c1, c2 models.Candle, thirdOpen *float64, price float64) models.Direction
	Name() string
}
