package runner

import (
	"sync"
	"time"

	"fivesec_bot/internal/models"
)

// Session holds the per-run counters the scheduler threads through each cycle.
// MaxTrades == 0 means unlimited.
type Session struct {
	maxTrades int
	startedAt time.Time

	mu      sync.Mutex
	cycles  int
	trades  int
	skipped int
	last    models.DecisionWindow
}

func NewSession(maxTrades int, startedAt time.Time) *Session {
	return &Session{maxTrades: maxTrades, startedAt: startedAt}
}

func (s *Session) MaxReached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxTrades > 0 && s.trades >= s.maxTrades
}

func (s *Session) RecordDispatch(w models.DecisionWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	s.trades++
	s.last = w
}

func (s *Session) RecordSkip(w models.DecisionWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	s.skipped++
	s.last = w
}

func (s *Session) Trades() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trades
}

func (s *Session) fill(st *models.SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.StartedAt = s.startedAt
	st.Cycles = s.cycles
	st.Trades = s.trades
	st.MaxTrades = s.maxTrades
	st.Skipped = s.skipped
	st.LastWindow = s.last
}
