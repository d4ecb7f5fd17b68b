package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Module provides *zap.Logger built from the Config supplied by the caller
// and routes fx's own events through it.
func Module() fx.Option {
	return fx.Module("logger",
		fx.Provide(New),
		fx.Invoke(func(lc fx.Lifecycle, l *zap.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					_ = l.Sync()
					return nil
				},
			})
		}),
	)
}

// FxEvents is passed to fx.WithLogger.
func FxEvents(l *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: l.Named("fx")}
}
