package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursehub/internal/config"
)

// fakeTx records how a transaction ended. Methods other than Commit and
// Rollback are not used by RunInTx.
type fakeTx struct {
	pgx.Tx
	committed, rolledBack bool
	commitErr             error
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	err      error
	deadline bool
}

func (b *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	_, b.deadline = ctx.Deadline()
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestRunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{}}
		require.NoError(t, RunInTx(ctx, b, func(context.Context, pgx.Tx) error { return nil }))
		assert.True(t, b.tx.committed)
		assert.False(t, b.tx.rolledBack)
		assert.True(t, b.deadline, "a timeout is added to contexts without deadline")
	})

	t.Run("rollback on error", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{}}
		boom := errors.New("boom")
		err := RunInTx(ctx, b, func(context.Context, pgx.Tx) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.True(t, b.tx.rolledBack)
		assert.False(t, b.tx.committed)
	})

	t.Run("rollback on panic", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{}}
		assert.Panics(t, func() {
			_ = RunInTx(ctx, b, func(context.Context, pgx.Tx) error { panic("boom") })
		})
		assert.True(t, b.tx.rolledBack)
	})

	t.Run("commit failure", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization failure")}}
		err := RunInTx(ctx, b, func(context.Context, pgx.Tx) error { return nil })
		assert.ErrorContains(t, err, "failed to commit transaction")
	})

	t.Run("begin failure", func(t *testing.T) {
		b := &fakeBeginner{err: errors.New("pool closed")}
		err := RunInTx(ctx, b, func(context.Context, pgx.Tx) error { return nil })
		assert.ErrorContains(t, err, "failed to begin transaction: pool closed")
	})
}

func TestPoolConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5432"
	cfg.Database.User = "coursehub"
	cfg.Database.Password = "secret"
	cfg.Database.DBName = "coursehub"
	cfg.Database.MaxOpenConns = 20
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = "30m"

	pc, err := PoolConfig(cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 20, pc.MaxConns)
	assert.EqualValues(t, 5, pc.MinConns)
	assert.Equal(t, 30*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, "coursehub", pc.ConnConfig.Database)

	cfg.Database.ConnMaxLifetime = "forever"
	_, err = PoolConfig(cfg)
	assert.ErrorContains(t, err, "invalid conn_max_lifetime")
}
