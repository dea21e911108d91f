package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager is the unit-of-work boundary. Every balance-affecting
// repository operation runs between one Begin and one Commit; any failure in
// between rolls the whole scope back so a movement record and its balance
// update are never persisted separately.
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction. Rolling back an already-committed
	// transaction is a no-op.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
