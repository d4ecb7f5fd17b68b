package candles

import (
	"fivesec_bot/internal/modules/candles/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("candles",
		fx.Provide(
			service.NewAggregator, // *service.Aggregator
		),
	)
}
