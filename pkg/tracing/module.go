package tracing

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
)

// Module provides the tracer from a Config supplied by the caller; the
// jaeger reporter is flushed on stop.
func Module() fx.Option {
	return fx.Module("tracing",
		fx.Provide(func(lc fx.Lifecycle, conf Config) (opentracing.Tracer, error) {
			tracer, closeFn, err := InitTracer(conf)
			if err != nil {
				return nil, err
			}
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					closeFn()
					return nil
				},
			})
			return tracer, nil
		}),
		// construct eagerly: spans go through the global tracer
		fx.Invoke(func(opentracing.Tracer) {}),
	)
}
