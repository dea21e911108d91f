package pgsql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	"github.com/mhgaber/dukan_pos_backend/internal/repositories/database/pgsql"
)

// failingTx stubs just the lifecycle methods; anything else panics, which is
// what we want in these tests.
type failingTx struct {
	pgx.Tx
	err error
}

func (t failingTx) Commit(ctx context.Context) error   { return t.err }
func (t failingTx) Rollback(ctx context.Context) error { return t.err }

func TestCommit_FailureIsPersistenceError(t *testing.T) {
	r := &pgsql.BaseRepository{}
	cause := errors.New("connection reset by peer")

	err := r.Commit(context.Background(), failingTx{err: cause})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, err, cause)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Code)
}

func TestRollback_FailureIsPersistenceError(t *testing.T) {
	r := &pgsql.BaseRepository{}

	err := r.Rollback(context.Background(), failingTx{err: errors.New("broken pipe")})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestRollback_ClosedTxIsNotAnError(t *testing.T) {
	r := &pgsql.BaseRepository{}

	require.NoError(t, r.Rollback(context.Background(), failingTx{err: pgx.ErrTxClosed}))
}
