package service

import (
	"context"
	"sync/atomic"
	"time"

	"fivesec_bot/internal/models"

	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

type entry struct {
	rec   *models.TradeRecord
	event *models.Event
}

// Recorder moves journal writes off the hot path: Record and Event never
// block, a single worker drains the buffer into the Journal.
type Recorder struct {
	j  Journal
	l  *zap.Logger
	in chan entry

	dropped atomic.Uint64
	failed  atomic.Uint64

	done chan struct{}
}

func NewRecorder(j Journal, buffer int, l *zap.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 1
	}
	return &Recorder{
		j:    j,
		l:    l.Named("journal"),
		in:   make(chan entry, buffer),
		done: make(chan struct{}),
	}
}

func (r *Recorder) Record(rec models.TradeRecord) bool {
	return r.offer(entry{rec: &rec})
}

func (r *Recorder) Event(name string, at time.Time, payload map[string]any) bool {
	return r.offer(entry{event: &models.Event{Name: name, At: at, Payload: payload}})
}

func (r *Recorder) offer(e entry) bool {
	select {
	case r.in <- e:
		return true
	default:
		n := r.dropped.Add(1)
		r.l.Warn("journal buffer full, entry dropped", zap.Uint64("dropped", n))
		return false
	}
}

// Stats reads straight from the backing journal.
func (r *Recorder) Stats(ctx context.Context) (models.Stats, error) {
	return r.j.Stats(ctx)
}

func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }
func (r *Recorder) Failed() uint64  { return r.failed.Load() }

// Run writes entries until ctx is done, then flushes what is already buffered.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case e := <-r.in:
			r.write(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-r.in:
					r.write(e)
				default:
					return
				}
			}
		}
	}
}

// Wait blocks until Run has returned.
func (r *Recorder) Wait(ctx context.Context) {
	select {
	case <-r.done:
	case <-ctx.Done():
	}
}

func (r *Recorder) write(e entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	switch {
	case e.rec != nil:
		err = r.j.Append(ctx, *e.rec)
	case e.event != nil:
		err = r.j.AppendEvent(ctx, *e.event)
	}
	if err != nil {
		r.failed.Add(1)
		r.l.Error("journal write failed", zap.Error(err))
	}
}
