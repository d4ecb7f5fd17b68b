package service

import (
	"sync"
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected  atomic.Bool
	lastTickUnix atomic.Int64 // unix millis

	mu         sync.RWMutex
	readyCheck func() bool
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }

// SetReadyCheck adds a condition on top of the ready flag, e.g. enough closed candles.
func (s *State) SetReadyCheck(fn func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readyCheck = fn
}

func (s *State) Ready() bool {
	if !s.ready.Load() {
		return false
	}
	s.mu.RLock()
	fn := s.readyCheck
	s.mu.RUnlock()
	return fn == nil || fn()
}

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.UnixMilli()) }
func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.UnixMilli(u)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
