package runner

import (
	"context"
	"errors"
	"time"

	"fivesec_bot/internal/models"
	candles "fivesec_bot/internal/modules/candles/service"
	"fivesec_bot/pkg/clock"

	"go.uber.org/zap"
)

// CloseEvent announces a freshly closed candle.
type CloseEvent struct {
	Candle models.Candle
	// DetectedAt is read from the pipeline clock and carries its monotonic reading.
	DetectedAt time.Time
}

// CloseSink accepts close events without blocking; false means the event was dropped.
type CloseSink interface {
	Offer(ev CloseEvent) bool
}

// Pipeline is the only writer of the aggregator. It folds queued ticks and
// closes the open candle on its boundary even when no tick arrives.
//
// A candle closed by the clock has no third candle open yet. Its close event is
// held until the first tick of the next window opens one, or until thirdWait
// past the boundary, whichever comes first.
type Pipeline struct {
	agg       *candles.Aggregator
	clk       clock.Clock
	spinLead  time.Duration
	thirdWait time.Duration
	out       CloseSink
	metrics   *Metrics
	l         *zap.Logger

	held    CloseEvent
	holding bool
}

func NewPipeline(
	agg *candles.Aggregator,
	clk clock.Clock,
	spinLead, thirdWait time.Duration,
	out CloseSink,
	m *Metrics,
	l *zap.Logger,
) *Pipeline {
	return &Pipeline{
		agg:       agg,
		clk:       clk,
		spinLead:  spinLead,
		thirdWait: thirdWait,
		out:       out,
		metrics:   m,
		l:         l.Named("pipeline"),
	}
}

func (p *Pipeline) Run(ctx context.Context, ticks <-chan models.Tick) {
	boundary := time.NewTimer(time.Hour)
	boundary.Stop()
	defer boundary.Stop()
	hold := time.NewTimer(time.Hour)
	hold.Stop()
	defer hold.Stop()

	var (
		armed     time.Time
		boundaryC <-chan time.Time
		holdC     <-chan time.Time
	)
	for {
		if end, ok := p.agg.CurrentEnd(); ok {
			if !end.Equal(armed) {
				boundary.Reset(end.Sub(p.clk.Now()) - p.spinLead)
				armed, boundaryC = end, boundary.C
			}
		} else {
			armed, boundaryC = time.Time{}, nil
		}

		switch {
		case p.holding && holdC == nil:
			hold.Reset(p.holdLeft())
			holdC = hold.C
		case !p.holding && holdC != nil:
			hold.Stop()
			holdC = nil
		}

		select {
		case <-ctx.Done():
			return
		case t := <-ticks:
			p.Ingest(t)
		case <-boundaryC:
			if err := clock.WaitUntil(ctx, p.clk, armed, p.spinLead); err != nil {
				return
			}
			p.CloseDue()
			armed, boundaryC = time.Time{}, nil
		case <-holdC:
			holdC = nil
			if p.holding {
				p.l.Debug("no tick opened the next candle in time",
					zap.Time("candle_end", p.held.Candle.End))
			}
			p.Release()
		}
	}
}

// Ingest folds one tick; a tick past the open window closes it first.
// The first tick after a clock close opens the third candle and releases the held event.
func (p *Pipeline) Ingest(t models.Tick) {
	closed, ok, err := p.agg.AddPrice(t.Price, t.At)
	if err != nil {
		if errors.Is(err, candles.ErrStaleTick) {
			p.metrics.staleTicks.Inc()
			p.l.Debug("stale tick dropped", zap.Time("at", t.At), zap.Float64("price", t.Price))
			return
		}
		p.l.Error("add price", zap.Error(err))
		return
	}
	p.metrics.ticks.Inc()
	p.Release()
	if ok {
		p.emit(p.event(closed))
	}
}

// CloseDue is the clock check for the open candle.
func (p *Pipeline) CloseDue() {
	closed, ok := p.agg.CloseDue(p.clk.Now())
	if !ok {
		return
	}
	ev := p.event(closed)
	if p.thirdWait <= 0 {
		p.emit(ev)
		return
	}
	p.held, p.holding = ev, true
}

// Release hands a held close event to the scheduler.
func (p *Pipeline) Release() {
	if !p.holding {
		return
	}
	ev := p.held
	p.held, p.holding = CloseEvent{}, false
	p.emit(ev)
}

// holdLeft is measured on the monotonic reading taken at close detection.
func (p *Pipeline) holdLeft() time.Duration {
	until := clock.Anchor(p.held.DetectedAt, p.held.Candle.End.Add(p.thirdWait))
	return until.Sub(p.clk.Now())
}

func (p *Pipeline) event(c models.Candle) CloseEvent {
	p.metrics.candles.Inc()
	return CloseEvent{Candle: c, DetectedAt: p.clk.Now()}
}

func (p *Pipeline) emit(ev CloseEvent) {
	if !p.out.Offer(ev) {
		p.metrics.droppedCloses.Inc()
		p.l.Warn("close event dropped, decision cycle still in flight",
			zap.Time("candle_end", ev.Candle.End))
	}
}
