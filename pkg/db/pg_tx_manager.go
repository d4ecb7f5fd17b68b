package db

import (
	"context"
	"fmt"

	"fivesec_bot/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txStarter is the part of *pgxpool.Pool that opens transactions.
type txStarter interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// PgTxManager serves the journal: schema changes run in a transaction,
// single inserts and stats queries go straight to the pool.
type PgTxManager struct {
	pool  *pgxpool.Pool
	begin txStarter
	conn  Transaction
}

func NewPgTxManager(pool *pgxpool.Pool) *PgTxManager {
	return &PgTxManager{pool: pool, begin: pool, conn: pool}
}

// Connect opens a pool for dsn and checks it answers.
func Connect(ctx context.Context, dsn string) (*PgTxManager, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg.Connect: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg.Connect: ping: %w", err)
	}
	return NewPgTxManager(pool), nil
}

func (m *PgTxManager) Close() {
	if m.pool != nil {
		m.pool.Close()
	}
}

// RunMaster runs fn in one read-committed transaction. fn's error or panic rolls it back.
func (m *PgTxManager) RunMaster(ctx context.Context, fn func(ctxTx context.Context, tx Transaction) error) (err error) {
	tx, err := m.begin.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("pg.RunMaster: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			logger.Error("pg.RunMaster: rollback after panic: %v", p)
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if err = tx.Commit(ctx); err != nil {
			err = fmt.Errorf("pg.RunMaster: commit: %w", err)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return fmt.Errorf("pg.RunMaster: %w", err)
	}
	return nil
}

func (m *PgTxManager) Conn() Transaction {
	return m.conn
}
