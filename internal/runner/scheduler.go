package runner

import (
	"context"
	"sync/atomic"
	"time"

	"fivesec_bot/internal/models"
	candles "fivesec_bot/internal/modules/candles/service"
	executor "fivesec_bot/internal/modules/executor/service"
	staking "fivesec_bot/internal/modules/staking/service"
	strategy "fivesec_bot/internal/modules/strategy/service"
	"fivesec_bot/pkg/clock"
	"fivesec_bot/pkg/tracing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State int32

const (
	StateIdle State = iota
	StateWaitingForClose
	StateEvaluating
	StateDispatched
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateWaitingForClose:
		return "WAITING_FOR_CLOSE"
	case StateEvaluating:
		return "EVALUATING"
	case StateDispatched:
		return "DISPATCHED"
	case StateSkipped:
		return "SKIPPED"
	}
	return "UNKNOWN"
}

// Skip reasons, also used as metric labels and journal payloads.
const (
	ReasonWarmingUp     = "warming_up"
	ReasonSuperseded    = "superseded"
	ReasonMaxTrades     = "max_trades"
	ReasonLateStart     = "late_start"
	ReasonDeadline      = "deadline_exceeded"
	ReasonNoTrade       = "no_trade"
	ReasonCancelled     = "cancelled"
	ReasonDispatchError = "dispatch_failed"
)

type Lookbacker interface {
	Lookback() (candles.Lookback, bool)
}

// Stake yields amount and step from one read of the ladder.
type Stake interface {
	Snapshot() staking.Snapshot
}

// EventRecorder is the non-blocking side of the journal.
type EventRecorder interface {
	Event(name string, at time.Time, payload map[string]any) bool
}

// ServiceNotifier must not block the caller.
type ServiceNotifier interface {
	SendService(ctx context.Context, format string, args ...any)
}

type SchedulerConfig struct {
	Symbol        string
	Budget        time.Duration
	ExpirySeconds int
}

// Scheduler runs one decision cycle per accepted close event.
// Close events are accepted only while idle; anything arriving mid-cycle is dropped.
type Scheduler struct {
	cfg     SchedulerConfig
	agg     Lookbacker
	engine  strategy.Engine
	stake   Stake
	sink    executor.Sink
	tracker *Tracker
	rec     EventRecorder
	notify  ServiceNotifier
	session *Session
	clk     clock.Clock
	metrics *Metrics
	l       *zap.Logger

	state         atomic.Int32
	limitNotified atomic.Bool
	events        chan CloseEvent
	newID         func() string
}

func NewScheduler(
	cfg SchedulerConfig,
	agg Lookbacker,
	engine strategy.Engine,
	stake Stake,
	sink executor.Sink,
	tracker *Tracker,
	rec EventRecorder,
	notify ServiceNotifier,
	session *Session,
	clk clock.Clock,
	m *Metrics,
	l *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		agg:     agg,
		engine:  engine,
		stake:   stake,
		sink:    sink,
		tracker: tracker,
		rec:     rec,
		notify:  notify,
		session: session,
		clk:     clk,
		metrics: m,
		l:       l.Named("scheduler"),
		events:  make(chan CloseEvent, 1),
		newID:   uuid.NewString,
	}
}

func (s *Scheduler) State() State { return State(s.state.Load()) }

func (s *Scheduler) Offer(ev CloseEvent) bool {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateWaitingForClose)) {
		return false
	}
	s.events <- ev
	return true
}

func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.Cycle(ctx, ev)
		}
	}
}

// Cycle evaluates one close event and leaves the scheduler idle.
func (s *Scheduler) Cycle(ctx context.Context, ev CloseEvent) (w models.DecisionWindow) {
	s.state.Store(int32(StateEvaluating))
	defer s.state.Store(int32(StateIdle))

	lb, ok := s.agg.Lookback()
	if !ok {
		s.l.Debug("warming up", zap.Time("candle_end", ev.Candle.End))
		return models.DecisionWindow{CloseAt: ev.Candle.End, Reason: ReasonWarmingUp}
	}

	w = models.DecisionWindow{CloseAt: lb.C2.End, Deadline: lb.C2.End.Add(s.cfg.Budget)}
	deadline := clock.Anchor(ev.DetectedAt, w.Deadline)

	span, ctx := tracing.StartSpan(ctx, "decision_cycle", map[string]any{
		"candle_end": lb.C2.End.UnixMilli(),
	})
	defer func() {
		span.SetTag("dispatched", w.Dispatched)
		span.SetTag("reason", w.Reason)
		span.Finish()
	}()

	if !lb.C2.End.Equal(ev.Candle.End) {
		return s.skip(ctx, w, ReasonSuperseded)
	}
	if ctx.Err() != nil {
		return s.skip(ctx, w, ReasonCancelled)
	}
	if s.session.MaxReached() {
		return s.skip(ctx, w, ReasonMaxTrades)
	}
	if !s.clk.Now().Before(deadline) {
		return s.skip(ctx, w, ReasonLateStart)
	}

	var thirdOpen *float64
	if lb.HasThird {
		thirdOpen = &lb.ThirdOpen
	}
	dec := s.engine.Evaluate(lb.C1, lb.C2, thirdOpen, lb.Price)
	w.Decision = dec.Direction

	decidedAt := s.clk.Now()
	s.metrics.decisionLatency.Observe(decidedAt.Sub(lb.C2.End).Seconds())
	if !decidedAt.Before(deadline) {
		s.l.Warn("decision past deadline, discarded",
			zap.String("direction", dec.Direction.String()),
			zap.Duration("late", decidedAt.Sub(deadline)))
		return s.skip(ctx, w, ReasonDeadline)
	}
	if !dec.Direction.Tradable() {
		s.l.Debug("no trade", zap.String("rule", string(dec.Rule)))
		return s.skip(ctx, w, ReasonNoTrade)
	}
	if ctx.Err() != nil {
		return s.skip(ctx, w, ReasonCancelled)
	}

	stake := s.stake.Snapshot()
	intent := models.TradeIntent{
		ID:            s.newID(),
		Symbol:        s.cfg.Symbol,
		Direction:     dec.Direction,
		Amount:        stake.Amount,
		Step:          stake.Step,
		OpenedAt:      decidedAt,
		ExpirySeconds: s.cfg.ExpirySeconds,
	}

	// the sink sees the remaining budget as a real-time deadline
	placeCtx, cancel := context.WithTimeout(ctx, deadline.Sub(decidedAt))
	defer cancel()

	s.tracker.Register(intent)
	if err := s.sink.Place(placeCtx, intent); err != nil {
		s.tracker.Forget(intent.ID)
		s.l.Error("dispatch failed", zap.String("trade_id", intent.ID), zap.Error(err))
		return s.skip(ctx, w, ReasonDispatchError)
	}

	w.Dispatched = true
	s.state.Store(int32(StateDispatched))
	s.session.RecordDispatch(w)
	s.metrics.cycles.WithLabelValues("dispatched", string(dec.Rule)).Inc()
	s.metrics.stake.Set(intent.Amount)
	span.SetTag("trade_id", intent.ID)

	s.l.Info("trade dispatched",
		zap.String("trade_id", intent.ID),
		zap.String("direction", intent.Direction.String()),
		zap.String("rule", string(dec.Rule)),
		zap.Float64("amount", intent.Amount),
		zap.Int("step", intent.Step),
		zap.Duration("latency", decidedAt.Sub(lb.C2.End)),
	)
	s.rec.Event("dispatch", decidedAt, map[string]any{
		"trade_id":  intent.ID,
		"direction": intent.Direction.String(),
		"rule":      string(dec.Rule),
		"amount":    intent.Amount,
		"step":      intent.Step,
	})
	s.notify.SendService(ctx, "📤 %s %s stake %.2f (step %d, %s)",
		intent.Direction, intent.Symbol, intent.Amount, intent.Step, dec.Rule)
	return w
}

func (s *Scheduler) skip(ctx context.Context, w models.DecisionWindow, reason string) models.DecisionWindow {
	w.Reason = reason
	s.state.Store(int32(StateSkipped))
	s.session.RecordSkip(w)
	s.metrics.cycles.WithLabelValues("skipped", reason).Inc()

	if reason != ReasonNoTrade {
		s.l.Info("cycle skipped", zap.String("reason", reason), zap.Time("candle_end", w.CloseAt))
		s.rec.Event("skip", s.clk.Now(), map[string]any{
			"reason":     reason,
			"candle_end": w.CloseAt,
		})
	}
	if reason == ReasonMaxTrades && s.session.Trades() > 0 {
		s.notifyLimitOnce(ctx)
	}
	return w
}

func (s *Scheduler) notifyLimitOnce(ctx context.Context) {
	if s.limitNotified.CompareAndSwap(false, true) {
		s.notify.SendService(ctx, "⏹ trade limit reached (%d), no more trades this session", s.session.Trades())
	}
}

// Status snapshots the session for health and chat commands.
func (s *Scheduler) Status() models.SessionStatus {
	stake := s.stake.Snapshot()
	st := models.SessionStatus{
		State:   s.State().String(),
		Pending: s.tracker.Pending(),
		Step:    stake.Step,
		Stake:   stake.Amount,
	}
	s.session.fill(&st)
	return st
}
