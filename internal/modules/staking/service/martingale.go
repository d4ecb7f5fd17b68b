package service

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"fivesec_bot/internal/modules/config"
)

var (
	ErrInvalidBase     = errors.New("staking: base amount must be positive")
	ErrInvalidFactor   = errors.New("staking: factor must be greater than 1")
	ErrInvalidMaxSteps = errors.New("staking: max steps must not be negative")
)

// Snapshot is a read-only view of the ladder.
type Snapshot struct {
	BaseAmount float64 `json:"base_amount"`
	Factor     float64 `json:"factor"`
	MaxSteps   int     `json:"max_steps"`
	Step       int     `json:"step"`
	Amount     float64 `json:"amount"`
}

// Martingale scales the stake by Factor after each loss, up to MaxSteps, and
// resets on a win. 0 <= step <= maxSteps always holds.
type Martingale struct {
	base     float64
	factor   float64
	maxSteps int

	mu   sync.Mutex
	step int
}

func NewMartingale(base, factor float64, maxSteps int) (*Martingale, error) {
	if !(base > 0) || math.IsInf(base, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase, base)
	}
	if !(factor > 1) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFactor, factor)
	}
	if maxSteps < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxSteps, maxSteps)
	}
	return &Martingale{base: base, factor: factor, maxSteps: maxSteps}, nil
}

func NewPolicy(cfg *config.Config) (*Martingale, error) {
	return NewMartingale(cfg.Staking.BaseAmount, cfg.Staking.Factor, cfg.Staking.MaxSteps)
}

func (m *Martingale) CurrentAmount() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.amountLocked()
}

func (m *Martingale) amountLocked() float64 {
	return m.base * math.Pow(m.factor, float64(m.step))
}

func (m *Martingale) Step() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Martingale) OnWin() {
	m.mu.Lock()
	m.step = 0
	m.mu.Unlock()
}

// OnLoss saturates at maxSteps.
func (m *Martingale) OnLoss() {
	m.mu.Lock()
	if m.step < m.maxSteps {
		m.step++
	}
	m.mu.Unlock()
}

// Reset is a manual/session-start OnWin.
func (m *Martingale) Reset() { m.OnWin() }

func (m *Martingale) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		BaseAmount: m.base,
		Factor:     m.factor,
		MaxSteps:   m.maxSteps,
		Step:       m.step,
		Amount:     m.amountLocked(),
	}
}
