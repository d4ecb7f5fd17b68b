package staking

import (
	"fivesec_bot/internal/modules/staking/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("staking",
		fx.Provide(
			service.NewPolicy, // *service.Martingale, fails startup on a bad ladder
		),
		fx.Invoke(func(m *service.Martingale, l *zap.Logger) {
			m.Reset()
			s := m.Snapshot()
			l.Named("staking").Info("martingale ready",
				zap.Float64("base", s.BaseAmount),
				zap.Float64("factor", s.Factor),
				zap.Int("max_steps", s.MaxSteps),
			)
		}),
	)
}
