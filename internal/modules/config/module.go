package config

import "go.uber.org/fx"

// Module provides *Config; an invalid config fails fx start.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
		),
	)
}
