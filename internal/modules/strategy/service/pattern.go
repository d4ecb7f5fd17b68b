package service

import "fivesec_bot/internal/models"

const (
	DefaultDojiBodyRatio    = 0.1
	DefaultParallelMaxRange = 0.0005
)

// Rule names which branch of the pattern produced a decision.
type Rule string

const (
	RuleDoji     Rule = "doji_veto"
	RuleParallel Rule = "parallel_veto"
	RuleTrend    Rule = "trend_confirmed"
	RuleShadowUp Rule = "upper_shadow_on_bearish"
	RuleShadowDn Rule = "lower_shadow_on_bullish"
	RuleNone     Rule = "no_pattern"
)

type Decision struct {
	Direction models.Direction
	Rule      Rule
}

// PatternEngine is stateless apart from its thresholds.
type PatternEngine struct {
	dojiBodyRatio    float64
	parallelMaxRange float64
}

func NewPatternEngine(dojiBodyRatio, parallelMaxRange float64) *PatternEngine {
	return &PatternEngine{
		dojiBodyRatio:    dojiBodyRatio,
		parallelMaxRange: parallelMaxRange,
	}
}

func (e *PatternEngine) Name() string { return "five_sec_pattern" }

func (e *PatternEngine) IsDoji(c models.Candle) bool {
	r := c.Range()
	if r == 0 {
		return true
	}
	return c.Body()/r <= e.dojiBodyRatio
}

// IsParallel reports that both candles are too narrow to call a direction (ranging market).
func (e *PatternEngine) IsParallel(c1, c2 models.Candle) bool {
	return c1.Range() <= e.parallelMaxRange && c2.Range() <= e.parallelMaxRange
}

func (e *PatternEngine) Decide(c1, c2 models.Candle, thirdOpen *float64, price float64) models.Direction {
	return e.Evaluate(c1, c2, thirdOpen, price).Direction
}

// Evaluate applies, in order: doji veto on c2, parallel veto, trend confirmation
// by the third candle, then the shadow rules on c2. Trend wins over shadows.
// The shadow rules also run after a failed confirmation attempt.
func (e *PatternEngine) Evaluate(c1, c2 models.Candle, thirdOpen *float64, price float64) Decision {
	if e.IsDoji(c2) {
		return Decision{Direction: models.NoTrade, Rule: RuleDoji}
	}
	if e.IsParallel(c1, c2) {
		return Decision{Direction: models.NoTrade, Rule: RuleParallel}
	}

	bothBull := c1.Bullish() && c2.Bullish()
	bothBear := c1.Bearish() && c2.Bearish()

	confirmed := false
	if thirdOpen != nil {
		if bothBull && price >= *thirdOpen {
			confirmed = true
		}
		if bothBear && price <= *thirdOpen {
			confirmed = true
		}
	}

	if confirmed {
		switch {
		case bothBull:
			return Decision{Direction: models.Buy, Rule: RuleTrend}
		case bothBear:
			return Decision{Direction: models.Sell, Rule: RuleTrend}
		}
	}

	switch {
	case c2.Bearish() && c2.UpperWick() > 0:
		return Decision{Direction: models.Sell, Rule: RuleShadowUp}
	case c2.Bullish() && c2.LowerWick() > 0:
		return Decision{Direction: models.Buy, Rule: RuleShadowDn}
	}
	return Decision{Direction: models.NoTrade, Rule: RuleNone}
}
