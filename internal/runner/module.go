package runner

import (
	"context"
	"sync"

	candles "fivesec_bot/internal/modules/candles/service"
	"fivesec_bot/internal/modules/config"
	executor "fivesec_bot/internal/modules/executor/service"
	journal "fivesec_bot/internal/modules/journal/service"
	market "fivesec_bot/internal/modules/market/service"
	staking "fivesec_bot/internal/modules/staking/service"
	strategy "fivesec_bot/internal/modules/strategy/service"
	"fivesec_bot/pkg/clock"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the pipeline, scheduler and tracker and runs them for the app's lifetime.
// It expects a prometheus.Registerer and a ServiceNotifier from the caller.
func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewMetrics,
			func(cfg *config.Config, clk clock.Clock) *Session {
				return NewSession(cfg.Session.MaxTrades, clk.Now())
			},
			func(cfg *config.Config, m *staking.Martingale, rec *journal.Recorder, n ServiceNotifier, clk clock.Clock, met *Metrics, l *zap.Logger) *Tracker {
				return NewTracker(m, cfg.Staking.ContinueAfterLoss, rec, n, clk, met, l)
			},
			func(
				cfg *config.Config,
				agg *candles.Aggregator,
				engine strategy.Engine,
				m *staking.Martingale,
				sink executor.Sink,
				tr *Tracker,
				rec *journal.Recorder,
				n ServiceNotifier,
				session *Session,
				clk clock.Clock,
				met *Metrics,
				l *zap.Logger,
			) *Scheduler {
				return NewScheduler(SchedulerConfig{
					Symbol:        cfg.Market.Symbol,
					Budget:        cfg.Scheduler.DecisionBudget,
					ExpirySeconds: cfg.Session.ExpirySeconds,
				}, agg, engine, m, sink, tr, rec, n, session, clk, met, l)
			},
			func(cfg *config.Config, agg *candles.Aggregator, clk clock.Clock, s *Scheduler, met *Metrics, l *zap.Logger) *Pipeline {
				return NewPipeline(agg, clk, cfg.Scheduler.SpinLead, cfg.Scheduler.ThirdWait, s, met, l)
			},
		),
		fx.Invoke(registerQueueMetrics),
		fx.Invoke(start),
	)
}

func registerQueueMetrics(reg prometheus.Registerer, q *market.Queue) error {
	return reg.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "fivesec_ticks_dropped_total",
		Help: "Ticks dropped because the ingestion queue was full",
	}, func() float64 {
		return float64(q.Dropped())
	}))
}

func start(
	lc fx.Lifecycle,
	p *Pipeline,
	s *Scheduler,
	tr *Tracker,
	q *market.Queue,
	sink executor.Sink,
	l *zap.Logger,
) {
	var (
		cancel context.CancelFunc
		wg     sync.WaitGroup
	)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			wg.Add(3)
			go func() {
				defer wg.Done()
				tr.Run(ctx, sink.Outcomes())
			}()
			go func() {
				defer wg.Done()
				s.Run(ctx)
			}()
			go func() {
				defer wg.Done()
				p.Run(ctx, q.C())
			}()
			l.Info("runner started", zap.String("state", s.State().String()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-ctx.Done():
			}
			st := s.Status()
			l.Info("runner stopped",
				zap.Int("trades", st.Trades),
				zap.Int("skipped", st.Skipped),
				zap.Int("pending", st.Pending),
			)
			return nil
		},
	})
}
