package main

import (
	"fivesec_bot/internal/app"
	"fivesec_bot/internal/modules/health"
	healthservice "fivesec_bot/internal/modules/health/service"
	market "fivesec_bot/internal/modules/market/service"
	telegram "fivesec_bot/internal/modules/telegram_bot"

	"go.uber.org/fx"
)

func main() {
	fx.New(
		app.Core(),
		fx.Provide(
			func(s *healthservice.State) market.Status { return s },
		),
		health.Module(),
		telegram.Module(),
	).Run()
}
