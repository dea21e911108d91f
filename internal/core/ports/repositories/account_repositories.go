package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for ledger accounts.
type AccountReader interface {
	// FindAccountByID retrieves a ledger account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error)

	// FindAccountsByIDs retrieves multiple ledger accounts keyed by ID.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.LedgerAccount, error)

	// ListAccounts retrieves a paginated list of accounts, optionally filtered
	// by kind, using token-based pagination.
	ListAccounts(ctx context.Context, kind *domain.AccountKind, limit int, nextToken *string) ([]domain.LedgerAccount, *string, error)

	// CountMovementsForAccount returns how many committed movement records
	// reference the account. Accounts with references must never be deleted.
	CountMovementsForAccount(ctx context.Context, accountID string) (int64, error)
}

// AccountWriter defines write operations for ledger accounts.
type AccountWriter interface {
	// SaveAccount inserts a new ledger account.
	SaveAccount(ctx context.Context, account domain.LedgerAccount) error

	// SetAccountActive flips the account's active flag.
	SetAccountActive(ctx context.Context, accountID string, active bool, userID string, at time.Time) error

	// DeleteAccount removes an account row. Callers must first verify no
	// movement records reference it.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountTxOperator exposes account operations that participate in a caller's
// transaction. Used by the movement and invoice repositories so a balance
// update commits together with the records that explain it.
type AccountTxOperator interface {
	// FindAccountsByIDsInTx re-reads accounts inside the given transaction,
	// returning current balances and version tokens.
	FindAccountsByIDsInTx(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.LedgerAccount, error)

	// ApplyBalanceChangesInTx applies signed deltas to account balances inside
	// the given transaction. Each update is conditioned on the version token
	// captured in expectedVersions; a stale token yields ErrConcurrencyConflict
	// and the caller must roll back the whole scope.
	ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, expectedVersions map[string]int64, userID string, at time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTxOperator
}
