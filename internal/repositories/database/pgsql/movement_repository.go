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

const movementColumns = `movement_id, account_id, amount, movement_type, transaction_number, pair_id, description, reference_kind, reference_id, created_at, created_by, last_updated_at, last_updated_by`

const insertMovementQuery = `
	INSERT INTO movement_records (` + movementColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

type PgxMovementRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountTxOperator
	numbering   portsrepo.NumberingRepository
}

// newPgxMovementRepository creates the movement record repository. The account
// operator is injected so a balance update always shares the transaction of
// the movement insert that explains it.
func newPgxMovementRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountTxOperator, numbering portsrepo.NumberingRepository) portsrepo.MovementRepositoryFacade {
	return &PgxMovementRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		numbering:      numbering,
	}
}

var _ portsrepo.MovementRepositoryFacade = (*PgxMovementRepository)(nil)

// numberPrefix maps an account kind to its document number prefix.
func numberPrefix(kind domain.AccountKind) string {
	switch kind {
	case domain.CashBox:
		return "CBX"
	case domain.Customer:
		return "CUS"
	case domain.Supplier:
		return "SUP"
	}
	return "MOV"
}

func execInsertMovement(ctx context.Context, tx pgx.Tx, movement domain.MovementRecord) error {
	m := mapping.ToModelMovement(movement)
	var pairID sql.NullString
	if m.PairID != "" {
		pairID = sql.NullString{String: m.PairID, Valid: true}
	}
	_, err := tx.Exec(ctx, insertMovementQuery,
		m.MovementID,
		m.AccountID,
		m.Amount,
		m.Type,
		m.TransactionNumber,
		pairID,
		m.Description,
		m.ReferenceKind,
		m.ReferenceID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: movement number %s", apperrors.ErrDuplicate, m.TransactionNumber)
		}
		return fmt.Errorf("failed to insert movement %s: %w", m.MovementID, err)
	}
	return nil
}

func scanMovement(row pgx.Row) (*domain.MovementRecord, error) {
	var m models.MovementRecord
	var pairID, description sql.NullString
	err := row.Scan(
		&m.MovementID,
		&m.AccountID,
		&m.Amount,
		&m.Type,
		&m.TransactionNumber,
		&pairID,
		&description,
		&m.ReferenceKind,
		&m.ReferenceID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.PairID = pairID.String
	m.Description = description.String
	movement := mapping.ToDomainMovement(m)
	return &movement, nil
}

// SaveMovement commits one income/expense record together with its balance
// effect. The transaction number is minted from the account-scoped sequence
// inside the same transaction.
func (r *PgxMovementRepository) SaveMovement(ctx context.Context, movement domain.MovementRecord) (*domain.MovementRecord, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	accounts, err := r.accountRepo.FindAccountsByIDsInTx(ctx, tx, []string{movement.AccountID})
	if err != nil {
		return nil, err
	}
	account := accounts[movement.AccountID]

	seq, err := r.numbering.NextNumberInTx(ctx, tx, portsrepo.MovementScope(movement.AccountID))
	if err != nil {
		return nil, err
	}
	movement.TransactionNumber = fmt.Sprintf("%s-%06d", numberPrefix(account.Kind), seq)

	delta, ok := movement.SignedAmount()
	if !ok {
		return nil, fmt.Errorf("movement %s has no resolvable direction; transfers go through SaveTransferPair", movement.MovementID)
	}

	if err := execInsertMovement(ctx, tx, movement); err != nil {
		return nil, err
	}
	err = r.accountRepo.ApplyBalanceChangesInTx(ctx, tx,
		map[string]decimal.Decimal{movement.AccountID: delta},
		map[string]int64{movement.AccountID: account.Version},
		movement.CreatedBy, movement.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &movement, nil
}

// SaveTransferPair commits both transfer legs and both balance effects in one
// unit of work. One TRANSFER sequence value is minted and both legs carry it,
// suffixed by direction.
func (r *PgxMovementRepository) SaveTransferPair(ctx context.Context, out domain.MovementRecord, in domain.MovementRecord) (*domain.MovementRecord, *domain.MovementRecord, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	accounts, err := r.accountRepo.FindAccountsByIDsInTx(ctx, tx, []string{out.AccountID, in.AccountID})
	if err != nil {
		return nil, nil, err
	}

	seq, err := r.numbering.NextNumberInTx(ctx, tx, portsrepo.ScopeTransfer)
	if err != nil {
		return nil, nil, err
	}
	prefix := fmt.Sprintf("TRF-%06d", seq)
	out.TransactionNumber = prefix + domain.TransferOutSuffix
	in.TransactionNumber = prefix + domain.TransferInSuffix

	if err := execInsertMovement(ctx, tx, out); err != nil {
		return nil, nil, err
	}
	if err := execInsertMovement(ctx, tx, in); err != nil {
		return nil, nil, err
	}

	err = r.accountRepo.ApplyBalanceChangesInTx(ctx, tx,
		map[string]decimal.Decimal{
			out.AccountID: out.Amount.Neg(),
			in.AccountID:  in.Amount,
		},
		map[string]int64{
			out.AccountID: accounts[out.AccountID].Version,
			in.AccountID:  accounts[in.AccountID].Version,
		},
		out.CreatedBy, out.CreatedAt,
	)
	if err != nil {
		return nil, nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}
	return &out, &in, nil
}

// DeleteMovementWithAdjustment removes a movement record and applies the given
// inverse delta to its account in one commit.
func (r *PgxMovementRepository) DeleteMovementWithAdjustment(ctx context.Context, movementID string, accountID string, inverseDelta decimal.Decimal, userID string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	accounts, err := r.accountRepo.FindAccountsByIDsInTx(ctx, tx, []string{accountID})
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM movement_records WHERE movement_id = $1;`, movementID)
	if err != nil {
		return fmt.Errorf("failed to delete movement %s: %w", movementID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
	}

	err = r.accountRepo.ApplyBalanceChangesInTx(ctx, tx,
		map[string]decimal.Decimal{accountID: inverseDelta},
		map[string]int64{accountID: accounts[accountID].Version},
		userID, at,
	)
	if err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindMovementByID retrieves a movement record by its ID.
func (r *PgxMovementRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_records WHERE movement_id = $1;`
	movement, err := scanMovement(r.Pool.QueryRow(ctx, query, movementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find movement %s: %w", movementID, err)
	}
	return movement, nil
}

// FindMovementsByReference retrieves every movement record created for the
// given business document, oldest first.
func (r *PgxMovementRepository) FindMovementsByReference(ctx context.Context, ref domain.Reference) ([]domain.MovementRecord, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movement_records
		WHERE reference_kind = $1 AND reference_id = $2
		ORDER BY created_at ASC, movement_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, string(ref.Kind), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements by reference: %w", err)
	}
	defer rows.Close()

	var movements []domain.MovementRecord
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading movements: %w", err)
	}
	return movements, nil
}

// FindPairLeg retrieves the other leg of a transfer by pair ID.
func (r *PgxMovementRepository) FindPairLeg(ctx context.Context, pairID string, excludeMovementID string) (*domain.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_records WHERE pair_id = $1 AND movement_id <> $2;`
	movement, err := scanMovement(r.Pool.QueryRow(ctx, query, pairID, excludeMovementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pair leg of %s: %w", pairID, err)
	}
	return movement, nil
}

// ListMovementsByAccount retrieves a page of an account's movements, newest
// first.
func (r *PgxMovementRepository) ListMovementsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.MovementRecord, *string, error) {
	args := []interface{}{accountID}
	query := `SELECT ` + movementColumns + ` FROM movement_records WHERE account_id = $1`
	argPos := 2

	if nextToken != nil && *nextToken != "" {
		createdAt, lastID, err := pagination.DecodeCursorToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += fmt.Sprintf(" AND (created_at, movement_id) < ($%d, $%d)", argPos, argPos+1)
		args = append(args, createdAt, lastID)
		argPos += 2
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, movement_id DESC LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	movements := make([]domain.MovementRecord, 0, limit)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading movements: %w", err)
	}

	var token *string
	if len(movements) > limit {
		movements = movements[:limit]
		last := movements[limit-1]
		t := pagination.EncodeCursorToken(last.CreatedAt, last.MovementID)
		token = &t
	}
	return movements, token, nil
}

// InsertMovementsInTx inserts prepared movement records inside the caller's
// transaction without touching balances.
func (r *PgxMovementRepository) InsertMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.MovementRecord) error {
	for _, movement := range movements {
		if err := execInsertMovement(ctx, tx, movement); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMovementsInTx removes movement records by ID inside the caller's
// transaction without touching balances.
func (r *PgxMovementRepository) DeleteMovementsInTx(ctx context.Context, tx pgx.Tx, movementIDs []string) error {
	if len(movementIDs) == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `DELETE FROM movement_records WHERE movement_id = ANY($1);`, movementIDs)
	if err != nil {
		return fmt.Errorf("failed to delete movements: %w", err)
	}
	if tag.RowsAffected() != int64(len(movementIDs)) {
		return fmt.Errorf("%w: expected to delete %d movements, deleted %d", apperrors.ErrNotFound, len(movementIDs), tag.RowsAffected())
	}
	return nil
}
