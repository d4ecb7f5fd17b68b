package service

import (
	"context"
	"fmt"

	"fivesec_bot/internal/models"
	"fivesec_bot/pkg/db"

	"github.com/bytedance/sonic"
)

const (
	schemaSQL = `
CREATE TABLE IF NOT EXISTS trades (
	id          TEXT PRIMARY KEY,
	symbol      TEXT NOT NULL,
	direction   TEXT NOT NULL,
	amount      DOUBLE PRECISION NOT NULL,
	step        INT NOT NULL,
	opened_at   TIMESTAMPTZ NOT NULL,
	result      TEXT NOT NULL,
	settled_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	id       BIGSERIAL PRIMARY KEY,
	name     TEXT NOT NULL,
	at       TIMESTAMPTZ NOT NULL,
	payload  JSONB
);`

	insertTradeSQL = `INSERT INTO trades (id, symbol, direction, amount, step, opened_at, result, settled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`

	insertEventSQL = `INSERT INTO events (name, at, payload) VALUES ($1, $2, $3)`

	statsSQL = `SELECT
	COUNT(*) FILTER (WHERE result = 'win'),
	COUNT(*) FILTER (WHERE result = 'loss')
FROM trades`
)

type Postgres struct {
	db db.TxManager
}

func NewPostgres(tm db.TxManager) *Postgres {
	return &Postgres{db: tm}
}

// Migrate creates the journal tables when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	return p.db.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, schemaSQL)
		return err
	})
}

func (p *Postgres) Append(ctx context.Context, rec models.TradeRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Append: %w", err)
		}
	}()
	_, err = p.db.Conn().Exec(ctx, insertTradeSQL,
		rec.ID, rec.Symbol, string(rec.Direction), rec.Amount, rec.Step,
		rec.OpenedAt, string(rec.Result), rec.SettledAt,
	)
	return err
}

func (p *Postgres) AppendEvent(ctx context.Context, ev models.Event) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.AppendEvent: %w", err)
		}
	}()
	var payload []byte
	if ev.Payload != nil {
		if payload, err = sonic.Marshal(ev.Payload); err != nil {
			return err
		}
	}
	_, err = p.db.Conn().Exec(ctx, insertEventSQL, ev.Name, ev.At, payload)
	return err
}

func (p *Postgres) Stats(ctx context.Context) (models.Stats, error) {
	var wins, losses int
	if err := p.db.Conn().QueryRow(ctx, statsSQL).Scan(&wins, &losses); err != nil {
		return models.Stats{}, fmt.Errorf("pg.Stats: %w", err)
	}
	return models.NewStats(wins, losses), nil
}
