package journal

import (
	"context"
	"fmt"
	"time"

	"fivesec_bot/internal/modules/config"
	"fivesec_bot/internal/modules/journal/service"
	"fivesec_bot/internal/modules/postgres"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			NewJournal,
			func(j service.Journal, cfg *config.Config, l *zap.Logger) *service.Recorder {
				return service.NewRecorder(j, cfg.Journal.Buffer, l)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, r *service.Recorder) {
			var cancel context.CancelFunc
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					var runCtx context.Context
					runCtx, cancel = context.WithCancel(context.Background())
					go r.Run(runCtx)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					cancel()
					r.Wait(ctx)
					return nil
				},
			})
		}),
	)
}

// NewJournal opens the configured backend.
func NewJournal(lc fx.Lifecycle, cfg *config.Config, l *zap.Logger) (service.Journal, error) {
	switch cfg.Journal.Backend {
	case "memory":
		return service.NewMemory(), nil

	case "postgres":
		tm, err := postgres.Open(lc, cfg.DB, l)
		if err != nil {
			return nil, err
		}
		pg := service.NewPostgres(tm)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
		return pg, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return service.NewRedis(client, cfg.Redis.Prefix), nil
	}
	return nil, fmt.Errorf("%w: %q", service.ErrUnknownBackend, cfg.Journal.Backend)
}
