package service

import "fivesec_bot/internal/models"

// DefaultHistory keeps more than the 2 candles the pattern reads.
const DefaultHistory = 20

// History is a fixed-capacity ring of closed candles; the oldest is evicted first.
type History struct {
	buf  []models.Candle
	head int // index of the oldest entry
	size int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistory
	}
	return &History{buf: make([]models.Candle, capacity)}
}

func (h *History) Push(c models.Candle) {
	if h.size < len(h.buf) {
		h.buf[(h.head+h.size)%len(h.buf)] = c
		h.size++
		return
	}
	h.buf[h.head] = c
	h.head = (h.head + 1) % len(h.buf)
}

func (h *History) Len() int { return h.size }

// LastN returns up to n most recent candles, oldest first.
func (h *History) LastN(n int) []models.Candle {
	if n > h.size {
		n = h.size
	}
	if n <= 0 {
		return nil
	}
	out := make([]models.Candle, n)
	first := h.size - n
	for i := 0; i < n; i++ {
		out[i] = h.buf[(h.head+first+i)%len(h.buf)]
	}
	return out
}

// Last returns the most recent candle.
func (h *History) Last() (models.Candle, bool) {
	if h.size == 0 {
		return models.Candle{}, false
	}
	return h.buf[(h.head+h.size-1)%len(h.buf)], true
}
