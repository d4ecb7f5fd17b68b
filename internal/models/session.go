package models

import "time"

// SessionStatus is the read-only view of a running session for /healthz and chat commands.
type SessionStatus struct {
	State      string         `json:"state"`
	StartedAt  time.Time      `json:"started_at"`
	Cycles     int            `json:"cycles"`
	Trades     int            `json:"trades"`
	MaxTrades  int            `json:"max_trades"`
	Skipped    int            `json:"skipped"`
	Pending    int            `json:"pending"`
	Step       int            `json:"step"`
	Stake      float64        `json:"stake"`
	LastWindow DecisionWindow `json:"last_window"`
}
