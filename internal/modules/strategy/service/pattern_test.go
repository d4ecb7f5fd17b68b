package service

import (
	"testing"

	"fivesec_bot/internal/models"

	"github.com/stretchr/testify/assert"
)

func candle(open, close, high, low float64) models.Candle {
	return models.Candle{Open: open, Close: close, High: high, Low: low, Ticks: 1}
}

func ptr(v float64) *float64 { return &v }

func newTestEngine() *PatternEngine {
	return NewPatternEngine(DefaultDojiBodyRatio, DefaultParallelMaxRange)
}

var (
	bullC1 = candle(100, 101, 101.2, 99.8)
	bullC2 = candle(101, 101.5, 101.8, 100.9)
)

func TestTrendConfirmedBuy(t *testing.T) {
	e := newTestEngine()

	d := e.Evaluate(bullC1, bullC2, ptr(101.5), 101.7)
	assert.Equal(t, models.Buy, d.Direction)
	assert.Equal(t, RuleTrend, d.Rule)
}

func TestShadowFallbackAfterFailedConfirmation(t *testing.T) {
	e := newTestEngine()

	d := e.Evaluate(bullC1, bullC2, ptr(101.5), 101.3)
	assert.Equal(t, models.Buy, d.Direction)
	assert.Equal(t, RuleShadowDn, d.Rule)
}

func TestDojiVeto(t *testing.T) {
	e := newTestEngine()
	flat := candle(100, 100, 100, 100)

	for _, c1 := range []models.Candle{bullC1, candle(102, 100, 103, 99), flat} {
		assert.Equal(t, models.NoTrade, e.Decide(c1, flat, ptr(100), 100))
	}

	// body/range = 0.1 is still a doji
	smallBody := candle(100, 100.1, 100.5, 99.5)
	d := e.Evaluate(bullC1, smallBody, ptr(100.1), 101)
	assert.Equal(t, models.NoTrade, d.Direction)
	assert.Equal(t, RuleDoji, d.Rule)
}

func TestParallelVetoBeatsConfirmation(t *testing.T) {
	e := newTestEngine()
	c1 := candle(1.0000, 1.0003, 1.0004, 1.0000)
	c2 := candle(1.0003, 1.0006, 1.0006, 1.0002)

	d := e.Evaluate(c1, c2, ptr(1.0006), 1.0010)
	assert.Equal(t, models.NoTrade, d.Direction)
	assert.Equal(t, RuleParallel, d.Rule)
}

func TestTrendConfirmedSell(t *testing.T) {
	e := newTestEngine()
	c1 := candle(101, 100, 101.1, 99.9)
	c2 := candle(100, 99, 100, 98.5) // no upper wick, lower wick present

	assert.Equal(t, models.Sell, e.Decide(c1, c2, ptr(99), 98.8))
	assert.Equal(t, models.Sell, e.Decide(c1, c2, ptr(99), 99))
}

func TestTrendTakesPriorityOverShadow(t *testing.T) {
	e := newTestEngine()
	c1 := candle(101, 100, 101.1, 99.9)
	c2 := candle(100, 99, 100.4, 98.9) // bearish with upper wick

	d := e.Evaluate(c1, c2, ptr(99), 98.9)
	assert.Equal(t, models.Sell, d.Direction)
	assert.Equal(t, RuleTrend, d.Rule)
}

func TestShadowSellWithoutThirdCandle(t *testing.T) {
	e := newTestEngine()
	c1 := candle(100, 101, 101.2, 99.8) // bullish, no agreement
	c2 := candle(101, 100, 101.3, 100)  // bearish with upper wick

	d := e.Evaluate(c1, c2, nil, 100)
	assert.Equal(t, models.Sell, d.Direction)
	assert.Equal(t, RuleShadowUp, d.Rule)
}

func TestNoShadowNoTrade(t *testing.T) {
	e := newTestEngine()
	c1 := candle(101, 100, 101.1, 99.9)
	c2 := candle(100, 101, 101, 100) // bullish marubozu, disagreeing with c1

	d := e.Evaluate(c1, c2, ptr(101), 102)
	assert.Equal(t, models.NoTrade, d.Direction)
	assert.Equal(t, RuleNone, d.Rule)
}

func TestMissingThirdOpenNeverConfirms(t *testing.T) {
	e := newTestEngine()
	c2 := candle(101, 101.5, 101.5, 101) // bullish, no wicks

	assert.Equal(t, models.NoTrade, e.Decide(bullC1, c2, nil, 200))
	assert.Equal(t, models.Buy, e.Decide(bullC1, c2, ptr(101.5), 101.5))
}

func TestNeutralFirstCandleBreaksAgreement(t *testing.T) {
	e := newTestEngine()
	c1 := candle(100, 100, 100.5, 99.5)
	c2 := candle(100, 101, 101, 100) // bullish, no wicks

	assert.Equal(t, models.NoTrade, e.Decide(c1, c2, ptr(101), 101.2))
}
