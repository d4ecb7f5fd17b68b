package market

import (
	"context"

	"fivesec_bot/internal/modules/config"
	"fivesec_bot/internal/modules/market/service"
	"fivesec_bot/pkg/clock"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module streams ticks from the configured source into the shared *service.Queue.
// A service.Status must be supplied by the caller.
func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			func(cfg *config.Config) *service.Queue {
				return service.NewQueue(cfg.Market.QueueSize)
			},
			NewSource,
		),
		fx.Invoke(func(lc fx.Lifecycle, src service.Source, q *service.Queue, l *zap.Logger) {
			var (
				cancel context.CancelFunc
				done   = make(chan struct{})
			)
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					var runCtx context.Context
					runCtx, cancel = context.WithCancel(context.Background())
					go func() {
						defer close(done)
						if err := src.Run(runCtx, q); err != nil {
							l.Error("market source stopped", zap.String("source", src.Name()), zap.Error(err))
						}
					}()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					cancel()
					select {
					case <-done:
					case <-ctx.Done():
					}
					return nil
				},
			})
		}),
	)
}

func NewSource(cfg *config.Config, clk clock.Clock, status service.Status, l *zap.Logger) service.Source {
	m := cfg.Market
	if m.Source == "ws" {
		return service.NewWSFeed(service.WSConfig{
			URL:            m.WSURL,
			Subscribe:      m.Subscribe,
			Symbol:         m.Symbol,
			ReconnectDelay: m.ReconnectDelay,
			PingInterval:   m.PingInterval,
		}, clk, status, l)
	}
	return service.NewSimFeed(service.SimConfig{
		Symbol:     m.Symbol,
		StartPrice: m.Sim.StartPrice,
		Volatility: m.Sim.Volatility,
		Interval:   m.Sim.Interval,
		Seed:       m.Sim.Seed,
	}, clk, status, l)
}
