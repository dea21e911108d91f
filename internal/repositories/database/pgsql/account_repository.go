package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
	"github.com/mhgaber/dukan_pos_backend/internal/models"
	"github.com/mhgaber/dukan_pos_backend/internal/utils/mapping"
	"github.com/mhgaber/dukan_pos_backend/internal/utils/pagination"
)

const accountColumns = `account_id, kind, name, description, is_active, balance, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for ledger account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*domain.LedgerAccount, error) {
	var m models.LedgerAccount
	var description sql.NullString
	err := row.Scan(
		&m.AccountID,
		&m.Kind,
		&m.Name,
		&description,
		&m.IsActive,
		&m.Balance,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.Description = description.String
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// SaveAccount inserts a new ledger account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.LedgerAccount) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO ledger_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Kind,
		m.Name,
		m.Description,
		m.IsActive,
		m.Balance,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return acc, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing IDs fail
// the whole lookup with ErrNotFound so callers never operate on a partial set.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.LedgerAccount{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE account_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.LedgerAccount, len(accountIDs))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		result[acc.AccountID] = *acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading accounts: %w", err)
	}
	for _, id := range accountIDs {
		if _, ok := result[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return result, nil
}

// ListAccounts retrieves a page of accounts ordered by creation time, newest
// first, optionally filtered by kind.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, kind *domain.AccountKind, limit int, nextToken *string) ([]domain.LedgerAccount, *string, error) {
	args := []interface{}{}
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts`
	conditions := ""
	argPos := 1

	if kind != nil {
		conditions += fmt.Sprintf(" WHERE kind = $%d", argPos)
		args = append(args, string(*kind))
		argPos++
	}
	if nextToken != nil && *nextToken != "" {
		createdAt, lastID, err := pagination.DecodeCursorToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		if conditions == "" {
			conditions = " WHERE"
		} else {
			conditions += " AND"
		}
		conditions += fmt.Sprintf(" (created_at, account_id) < ($%d, $%d)", argPos, argPos+1)
		args = append(args, createdAt, lastID)
		argPos += 2
	}

	query += conditions + fmt.Sprintf(" ORDER BY created_at DESC, account_id DESC LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.LedgerAccount, 0, limit)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading accounts: %w", err)
	}

	var token *string
	if len(accounts) > limit {
		accounts = accounts[:limit]
		last := accounts[limit-1]
		t := pagination.EncodeCursorToken(last.CreatedAt, last.AccountID)
		token = &t
	}
	return accounts, token, nil
}

// CountMovementsForAccount returns how many movement records reference the
// account.
func (r *PgxAccountRepository) CountMovementsForAccount(ctx context.Context, accountID string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM movement_records WHERE account_id = $1;`, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count movements for account %s: %w", accountID, err)
	}
	return count, nil
}

// SetAccountActive flips the account's active flag.
func (r *PgxAccountRepository) SetAccountActive(ctx context.Context, accountID string, active bool, userID string, at time.Time) error {
	query := `
		UPDATE ledger_accounts
		SET is_active = $1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $4;
	`
	tag, err := r.Pool.Exec(ctx, query, active, at, userID, accountID)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account row.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM ledger_accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: account %s is still referenced", apperrors.ErrValidation, accountID)
		}
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountsByIDsInTx re-reads accounts inside the given transaction,
// returning the balances and version tokens the subsequent conditional update
// will be checked against.
func (r *PgxAccountRepository) FindAccountsByIDsInTx(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.LedgerAccount{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE account_id = ANY($1);`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts in tx: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.LedgerAccount, len(accountIDs))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account in tx: %w", err)
		}
		result[acc.AccountID] = *acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading accounts in tx: %w", err)
	}
	for _, id := range accountIDs {
		if _, ok := result[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return result, nil
}

// ApplyBalanceChangesInTx applies signed deltas to account balances. Every
// update is conditioned on the version token read earlier in this unit of
// work; zero rows affected means a concurrent writer bumped the version first
// and the whole scope must roll back. The balance check constraint turns a
// cash box overdraft into ErrInsufficientBalance.
func (r *PgxAccountRepository) ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, expectedVersions map[string]int64, userID string, at time.Time) error {
	query := `
		UPDATE ledger_accounts
		SET balance = balance + $1, version = version + 1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $4 AND version = $5;
	`
	for accountID, delta := range changes {
		version, ok := expectedVersions[accountID]
		if !ok {
			return fmt.Errorf("missing expected version for account %s", accountID)
		}
		tag, err := tx.Exec(ctx, query, delta, at, userID, accountID, version)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23514" {
				return fmt.Errorf("%w: account %s delta %s", apperrors.ErrInsufficientBalance, accountID, delta)
			}
			return fmt.Errorf("failed to update balance of account %s: %w", accountID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: account %s version %d is stale", apperrors.ErrConcurrencyConflict, accountID, version)
		}
	}
	return nil
}
