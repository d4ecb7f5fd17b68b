package app

import (
	"fivesec_bot/internal/modules/candles"
	"fivesec_bot/internal/modules/config"
	"fivesec_bot/internal/modules/executor"
	"fivesec_bot/internal/modules/journal"
	"fivesec_bot/internal/modules/market"
	"fivesec_bot/internal/modules/staking"
	"fivesec_bot/internal/modules/strategy"
	"fivesec_bot/internal/runner"
	"fivesec_bot/pkg/clock"
	"fivesec_bot/pkg/logger"
	"fivesec_bot/pkg/tracing"

	"go.uber.org/fx"
)

// Core is the trading pipeline shared by the live bot and the simulator.
// Callers add the notifier, the metrics registry and the feed status.
func Core() fx.Option {
	return fx.Options(
		fx.Provide(
			func() clock.Clock { return clock.System{} },
			func(cfg *config.Config) logger.Config {
				logger.SetServiceName(cfg.Service.Name)
				return cfg.Log
			},
			func(cfg *config.Config) tracing.Config {
				tracing.SetServiceName(cfg.Service.Name)
				return tracing.Config{
					Enabled: cfg.Tracing.Enabled,
					Host:    cfg.Tracing.Host,
					Port:    cfg.Tracing.Port,
				}
			},
		),
		fx.WithLogger(logger.FxEvents),
		config.Module(),
		logger.Module(),
		tracing.Module(),
		candles.Module(),
		strategy.Module(),
		staking.Module(),
		market.Module(),
		executor.Module(),
		journal.Module(),
		runner.Module(),
	)
}
