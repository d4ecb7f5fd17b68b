package models

import (
	"math"
	"time"
)

// TradeIntent is emitted once per triggered decision and settles into exactly one TradeOutcome.
type TradeIntent struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Direction     Direction `json:"direction"`
	Amount        float64   `json:"amount"`
	Step          int       `json:"step"`
	OpenedAt      time.Time `json:"opened_at"`
	ExpirySeconds int       `json:"expiry_seconds"`
}

func (t TradeIntent) Expiry() time.Duration {
	return time.Duration(t.ExpirySeconds) * time.Second
}

type Result string

const (
	Win  Result = "win"
	Loss Result = "loss"
)

func (r Result) Valid() bool { return r == Win || r == Loss }

type TradeOutcome struct {
	TradeID   string    `json:"trade_id"`
	Result    Result    `json:"result"`
	SettledAt time.Time `json:"settled_at"`
}

// DecisionWindow is the runtime record of one evaluation cycle.
type DecisionWindow struct {
	CloseAt    time.Time `json:"close_at"`
	Deadline   time.Time `json:"deadline"`
	Decision   Direction `json:"decision"`
	Dispatched bool      `json:"dispatched"`
	Reason     string    `json:"reason,omitempty"`
}

// TradeRecord is an append-only journal row for a settled trade.
type TradeRecord struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Amount    float64   `json:"amount"`
	Step      int       `json:"step"`
	OpenedAt  time.Time `json:"opened_at"`
	Result    Result    `json:"result"`
	SettledAt time.Time `json:"settled_at"`
}

func NewTradeRecord(in TradeIntent, out TradeOutcome) TradeRecord {
	return TradeRecord{
		ID:        in.ID,
		Symbol:    in.Symbol,
		Direction: in.Direction,
		Amount:    in.Amount,
		Step:      in.Step,
		OpenedAt:  in.OpenedAt,
		Result:    out.Result,
		SettledAt: out.SettledAt,
	}
}

// Event is a free-form journal entry (dispatch, skip, outcome mismatch...).
type Event struct {
	Name    string         `json:"event"`
	At      time.Time      `json:"time"`
	Payload map[string]any `json:"payload,omitempty"`
}

type Stats struct {
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winrate"`
}

// NewStats computes the win rate in percent rounded to two decimals.
func NewStats(wins, losses int) Stats {
	s := Stats{Total: wins + losses, Wins: wins, Losses: losses}
	if s.Total > 0 {
		s.WinRate = math.Round(float64(wins)/float64(s.Total)*100*100) / 100
	}
	return s
}
