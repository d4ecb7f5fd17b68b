package db

import (
	"context"
	"errors"
	"testing"

	"fivesec_bot/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeTx implements the pgx.Tx methods RunMaster touches.
type fakeTx struct {
	pgx.Tx
	execs     []string
	commits   int
	rollbacks int
	commitErr error
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	return pgconn.NewCommandTag("OK"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rollbacks++
	return nil
}

type fakeStarter struct {
	tx   *fakeTx
	err  error
	opts pgx.TxOptions
}

func (s *fakeStarter) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.tx, nil
}

func newManager(tx *fakeTx) (*PgTxManager, *fakeStarter) {
	s := &fakeStarter{tx: tx}
	return &PgTxManager{begin: s, conn: tx}, s
}

var errBoom = errors.New("boom")

func TestRunMasterCommits(t *testing.T) {
	tx := &fakeTx{}
	m, s := newManager(tx)

	err := m.RunMaster(context.Background(), func(ctx context.Context, q Transaction) error {
		_, err := q.Exec(ctx, "CREATE TABLE t ()")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, pgx.ReadCommitted, s.opts.IsoLevel)
	assert.Equal(t, []string{"CREATE TABLE t ()"}, tx.execs)
	assert.Equal(t, 1, tx.commits)
	assert.Zero(t, tx.rollbacks)
}

func TestRunMasterRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	m, _ := newManager(tx)

	err := m.RunMaster(context.Background(), func(context.Context, Transaction) error { return errBoom })

	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, tx.commits)
	assert.Equal(t, 1, tx.rollbacks)
}

func TestRunMasterReportsCommitError(t *testing.T) {
	tx := &fakeTx{commitErr: errBoom}
	m, _ := newManager(tx)

	err := m.RunMaster(context.Background(), func(context.Context, Transaction) error { return nil })
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorContains(t, err, "commit")
}

func TestRunMasterBeginError(t *testing.T) {
	m, s := newManager(&fakeTx{})
	s.err = errBoom

	called := false
	err := m.RunMaster(context.Background(), func(context.Context, Transaction) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, called)
}

func TestRunMasterRollsBackOnPanic(t *testing.T) {
	logger.Set(zaptest.NewLogger(t))
	tx := &fakeTx{}
	m, _ := newManager(tx)

	assert.PanicsWithValue(t, "bad row", func() {
		_ = m.RunMaster(context.Background(), func(context.Context, Transaction) error { panic("bad row") })
	})
	assert.Equal(t, 1, tx.rollbacks)
	assert.Zero(t, tx.commits)
}

func TestConnBypassesTransactions(t *testing.T) {
	tx := &fakeTx{}
	m, _ := newManager(tx)
	assert.Same(t, tx, m.Conn())
}
