package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fivesec_bot/internal/models"
	staking "fivesec_bot/internal/modules/staking/service"
	"fivesec_bot/pkg/clock"
	"fivesec_bot/pkg/tracing"

	"go.uber.org/zap"
)

var (
	ErrUnknownTrade     = errors.New("outcome for unknown trade")
	ErrDuplicateOutcome = errors.New("duplicate outcome")
	ErrInvalidResult    = errors.New("invalid outcome result")
)

// settledMemory bounds how many settled ids are remembered for duplicate detection.
const settledMemory = 256

// Ladder is the mutating side of the staking policy.
type Ladder interface {
	OnWin()
	OnLoss()
	Reset()
	Snapshot() staking.Snapshot
}

// TradeRecorder is the non-blocking side of the journal.
type TradeRecorder interface {
	Record(rec models.TradeRecord) bool
	EventRecorder
}

// Tracker matches outcomes to dispatched intents and feeds them back into the ladder.
// Mismatched outcomes are reported and discarded; the ladder is left untouched.
type Tracker struct {
	ladder            Ladder
	continueAfterLoss bool
	rec               TradeRecorder
	notify            ServiceNotifier
	clk               clock.Clock
	metrics           *Metrics
	l                 *zap.Logger

	mu      sync.Mutex
	pending map[string]models.TradeIntent
	settled map[string]struct{}
	order   []string
}

func NewTracker(ladder Ladder, continueAfterLoss bool, rec TradeRecorder, notify ServiceNotifier, clk clock.Clock, m *Metrics, l *zap.Logger) *Tracker {
	return &Tracker{
		ladder:            ladder,
		continueAfterLoss: continueAfterLoss,
		rec:               rec,
		notify:            notify,
		clk:               clk,
		metrics:           m,
		l:                 l.Named("tracker"),
		pending:           make(map[string]models.TradeIntent),
		settled:           make(map[string]struct{}),
	}
}

func (t *Tracker) Register(in models.TradeIntent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[in.ID] = in
}

// Forget drops an intent that never reached the sink.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Tracker) Run(ctx context.Context, outcomes <-chan models.TradeOutcome) {
	for {
		select {
		case <-ctx.Done():
			return
		case out := <-outcomes:
			_ = t.Settle(ctx, out)
		}
	}
}

func (t *Tracker) OnOutcome(tradeID string, result models.Result) error {
	return t.Settle(context.Background(), models.TradeOutcome{
		TradeID:   tradeID,
		Result:    result,
		SettledAt: t.clk.Now(),
	})
}

func (t *Tracker) Settle(ctx context.Context, out models.TradeOutcome) error {
	span, ctx := tracing.StartSpan(ctx, "trade_outcome", map[string]any{
		"trade_id": out.TradeID,
		"result":   string(out.Result),
	})
	defer span.Finish()

	in, err := t.take(out)
	if err != nil {
		span.SetTag("error", true)
		t.reject(out, err)
		return err
	}

	switch out.Result {
	case models.Win:
		t.ladder.OnWin()
	case models.Loss:
		if t.continueAfterLoss {
			t.ladder.OnLoss()
		} else {
			t.ladder.Reset()
		}
	}
	next := t.ladder.Snapshot()
	t.metrics.outcomes.WithLabelValues(string(out.Result)).Inc()
	t.metrics.step.Set(float64(next.Step))

	t.rec.Record(models.NewTradeRecord(in, out))
	t.l.Info("trade settled",
		zap.String("trade_id", in.ID),
		zap.String("result", string(out.Result)),
		zap.Float64("amount", in.Amount),
		zap.Int("next_step", next.Step),
		zap.Float64("next_stake", next.Amount),
	)
	icon := "✅"
	if out.Result == models.Loss {
		icon = "❌"
	}
	t.notify.SendService(ctx, "%s %s %s %.2f → next stake %.2f",
		icon, out.Result, in.Direction, in.Amount, next.Amount)
	return nil
}

func (t *Tracker) take(out models.TradeOutcome) (models.TradeIntent, error) {
	if !out.Result.Valid() {
		return models.TradeIntent{}, fmt.Errorf("%w: %q", ErrInvalidResult, out.Result)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	in, ok := t.pending[out.TradeID]
	if !ok {
		if _, done := t.settled[out.TradeID]; done {
			return models.TradeIntent{}, fmt.Errorf("%w: %s", ErrDuplicateOutcome, out.TradeID)
		}
		return models.TradeIntent{}, fmt.Errorf("%w: %s", ErrUnknownTrade, out.TradeID)
	}
	delete(t.pending, out.TradeID)

	t.settled[out.TradeID] = struct{}{}
	t.order = append(t.order, out.TradeID)
	if len(t.order) > settledMemory {
		delete(t.settled, t.order[0])
		t.order = t.order[1:]
	}
	return in, nil
}

func (t *Tracker) reject(out models.TradeOutcome, err error) {
	kind := "unknown"
	switch {
	case errors.Is(err, ErrDuplicateOutcome):
		kind = "duplicate"
	case errors.Is(err, ErrInvalidResult):
		kind = "invalid"
	}
	t.metrics.outcomeErrors.WithLabelValues(kind).Inc()
	t.l.Error("outcome discarded",
		zap.String("trade_id", out.TradeID),
		zap.String("result", string(out.Result)),
		zap.Error(err),
	)
	t.rec.Event("outcome_mismatch", t.clk.Now(), map[string]any{
		"trade_id": out.TradeID,
		"result":   string(out.Result),
		"kind":     kind,
	})
}
