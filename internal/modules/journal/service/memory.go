package service

import (
	"context"
	"sync"

	"fivesec_bot/internal/models"
)

type Memory struct {
	mu      sync.RWMutex
	records []models.TradeRecord
	events  []models.Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, rec models.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) AppendEvent(_ context.Context, ev models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *Memory) Stats(context.Context) (models.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wins, losses int
	for _, r := range m.records {
		switch r.Result {
		case models.Win:
			wins++
		case models.Loss:
			losses++
		}
	}
	return models.NewStats(wins, losses), nil
}

func (m *Memory) Records() []models.TradeRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.TradeRecord(nil), m.records...)
}

func (m *Memory) Events() []models.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Event(nil), m.events...)
}
