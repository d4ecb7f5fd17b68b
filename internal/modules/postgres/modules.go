package postgres

import (
	"context"
	"time"

	"fivesec_bot/pkg/db"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Open connects and pings the pool; the pool closes with the app.
// Only the postgres journal backend calls it, so other backends start without a database.
func Open(lc fx.Lifecycle, dsn string, l *zap.Logger) (*db.PgTxManager, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	tm, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			tm.Close()
			return nil
		},
	})
	l.Named("postgres").Info("connected")
	return tm, nil
}
