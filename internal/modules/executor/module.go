package executor

import (
	"context"

	candles "fivesec_bot/internal/modules/candles/service"
	"fivesec_bot/internal/modules/config"
	"fivesec_bot/internal/modules/executor/service"
	"fivesec_bot/pkg/clock"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("executor",
		fx.Provide(NewSink),
		fx.Invoke(func(lc fx.Lifecycle, s service.Sink, l *zap.Logger) {
			l.Info("execution sink ready", zap.String("mode", s.Name()))
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					s.Close()
					return nil
				},
			})
		}),
	)
}

func NewSink(cfg *config.Config, agg *candles.Aggregator, clk clock.Clock, l *zap.Logger) service.Sink {
	if cfg.Executor.Mode == "random" {
		return service.NewRandomSink(cfg.Executor.Seed, cfg.Executor.WinProbability, clk, l)
	}
	return service.NewPaperSink(agg, clk, l)
}
