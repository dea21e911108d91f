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

const stockEntryColumns = `entry_id, product_id, product_name, warehouse_id, quantity, version, created_at, created_by, last_updated_at, last_updated_by`

const stockMovementColumns = `movement_id, entry_id, quantity, movement_type, movement_number, description, reference_kind, reference_id, created_at, created_by, last_updated_at, last_updated_by`

const insertStockMovementQuery = `
	INSERT INTO stock_movements (` + stockMovementColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`

type PgxStockRepository struct {
	BaseRepository
	numbering portsrepo.NumberingRepository
}

// newPgxStockRepository creates the stock entry/movement repository.
func newPgxStockRepository(pool *pgxpool.Pool, numbering portsrepo.NumberingRepository) portsrepo.StockRepositoryFacade {
	return &PgxStockRepository{
		BaseRepository: BaseRepository{Pool: pool},
		numbering:      numbering,
	}
}

var _ portsrepo.StockRepositoryFacade = (*PgxStockRepository)(nil)

func scanStockEntry(row pgx.Row) (*domain.StockEntry, error) {
	var m models.StockEntry
	var warehouseID sql.NullString
	err := row.Scan(
		&m.EntryID,
		&m.ProductID,
		&m.ProductName,
		&warehouseID,
		&m.Quantity,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.WarehouseID = warehouseID.String
	entry := mapping.ToDomainStockEntry(m)
	return &entry, nil
}

func scanStockMovement(row pgx.Row) (*domain.StockMovement, error) {
	var m models.StockMovement
	var description sql.NullString
	err := row.Scan(
		&m.MovementID,
		&m.EntryID,
		&m.Quantity,
		&m.Type,
		&m.MovementNumber,
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
	m.Description = description.String
	movement := mapping.ToDomainStockMovement(m)
	return &movement, nil
}

func execInsertStockMovement(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	m := mapping.ToModelStockMovement(movement)
	_, err := tx.Exec(ctx, insertStockMovementQuery,
		m.MovementID,
		m.EntryID,
		m.Quantity,
		m.Type,
		m.MovementNumber,
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
			return fmt.Errorf("%w: stock movement number %s", apperrors.ErrDuplicate, m.MovementNumber)
		}
		return fmt.Errorf("failed to insert stock movement %s: %w", m.MovementID, err)
	}
	return nil
}

// SaveStockEntry inserts a new stock entry.
func (r *PgxStockRepository) SaveStockEntry(ctx context.Context, entry domain.StockEntry) error {
	m := mapping.ToModelStockEntry(entry)
	var warehouseID sql.NullString
	if m.WarehouseID != "" {
		warehouseID = sql.NullString{String: m.WarehouseID, Valid: true}
	}
	query := `
		INSERT INTO stock_entries (` + stockEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.EntryID,
		m.ProductID,
		m.ProductName,
		warehouseID,
		m.Quantity,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: product %s already tracked", apperrors.ErrDuplicate, m.ProductID)
		}
		return fmt.Errorf("failed to save stock entry %s: %w", m.EntryID, err)
	}
	return nil
}

// SaveStockMovement commits one stock movement together with its quantity
// effect, minting the movement number inside the same transaction.
func (r *PgxStockRepository) SaveStockMovement(ctx context.Context, movement domain.StockMovement) (*domain.StockMovement, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	entries, err := r.FindEntriesByIDsInTx(ctx, tx, []string{movement.EntryID})
	if err != nil {
		return nil, err
	}
	entry := entries[movement.EntryID]

	seq, err := r.numbering.NextNumberInTx(ctx, tx, portsrepo.ScopeStockMovement)
	if err != nil {
		return nil, err
	}
	movement.MovementNumber = fmt.Sprintf("STK-%06d", seq)

	if err := execInsertStockMovement(ctx, tx, movement); err != nil {
		return nil, err
	}
	err = r.ApplyQuantityChangesInTx(ctx, tx,
		map[string]decimal.Decimal{movement.EntryID: movement.SignedQuantity()},
		map[string]int64{movement.EntryID: entry.Version},
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

// FindEntryByID retrieves a stock entry by its ID.
func (r *PgxStockRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.StockEntry, error) {
	query := `SELECT ` + stockEntryColumns + ` FROM stock_entries WHERE entry_id = $1;`
	entry, err := scanStockEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stock entry %s: %w", entryID, err)
	}
	return entry, nil
}

// FindEntryByProduct retrieves the stock entry for a product, optionally
// scoped to a warehouse.
func (r *PgxStockRepository) FindEntryByProduct(ctx context.Context, productID, warehouseID string) (*domain.StockEntry, error) {
	query := `SELECT ` + stockEntryColumns + ` FROM stock_entries WHERE product_id = $1 AND COALESCE(warehouse_id, '') = $2;`
	entry, err := scanStockEntry(r.Pool.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stock entry for product %s: %w", productID, err)
	}
	return entry, nil
}

// FindStockMovementsByReference retrieves every stock movement created for the
// given business document, oldest first.
func (r *PgxStockRepository) FindStockMovementsByReference(ctx context.Context, ref domain.Reference) ([]domain.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE reference_kind = $1 AND reference_id = $2
		ORDER BY created_at ASC, movement_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, string(ref.Kind), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements by reference: %w", err)
	}
	defer rows.Close()

	var movements []domain.StockMovement
	for rows.Next() {
		m, err := scanStockMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading stock movements: %w", err)
	}
	return movements, nil
}

// ListMovementsByEntry retrieves a page of an entry's movements, newest first.
func (r *PgxStockRepository) ListMovementsByEntry(ctx context.Context, entryID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	args := []interface{}{entryID}
	query := `SELECT ` + stockMovementColumns + ` FROM stock_movements WHERE entry_id = $1`
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
		return nil, nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	movements := make([]domain.StockMovement, 0, limit)
	for rows.Next() {
		m, err := scanStockMovement(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading stock movements: %w", err)
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

// FindEntriesByIDsInTx re-reads stock entries inside the given transaction.
func (r *PgxStockRepository) FindEntriesByIDsInTx(ctx context.Context, tx pgx.Tx, entryIDs []string) (map[string]domain.StockEntry, error) {
	if len(entryIDs) == 0 {
		return map[string]domain.StockEntry{}, nil
	}
	query := `SELECT ` + stockEntryColumns + ` FROM stock_entries WHERE entry_id = ANY($1);`
	rows, err := tx.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock entries in tx: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows, entryIDs)
}

func collectEntries(rows pgx.Rows, entryIDs []string) (map[string]domain.StockEntry, error) {
	result := make(map[string]domain.StockEntry, len(entryIDs))
	for rows.Next() {
		entry, err := scanStockEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock entry: %w", err)
		}
		result[entry.EntryID] = *entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading stock entries: %w", err)
	}
	for _, id := range entryIDs {
		if _, ok := result[id]; !ok {
			return nil, fmt.Errorf("%w: stock entry %s", apperrors.ErrNotFound, id)
		}
	}
	return result, nil
}

// InsertStockMovementsInTx inserts prepared stock movements inside the
// caller's transaction without touching quantities.
func (r *PgxStockRepository) InsertStockMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement) error {
	for _, movement := range movements {
		if err := execInsertStockMovement(ctx, tx, movement); err != nil {
			return err
		}
	}
	return nil
}

// DeleteStockMovementsInTx removes stock movements by ID inside the caller's
// transaction without touching quantities.
func (r *PgxStockRepository) DeleteStockMovementsInTx(ctx context.Context, tx pgx.Tx, movementIDs []string) error {
	if len(movementIDs) == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `DELETE FROM stock_movements WHERE movement_id = ANY($1);`, movementIDs)
	if err != nil {
		return fmt.Errorf("failed to delete stock movements: %w", err)
	}
	if tag.RowsAffected() != int64(len(movementIDs)) {
		return fmt.Errorf("%w: expected to delete %d stock movements, deleted %d", apperrors.ErrNotFound, len(movementIDs), tag.RowsAffected())
	}
	return nil
}

// ApplyQuantityChangesInTx applies signed quantity deltas under the version
// tokens read earlier in this unit of work. The quantity check constraint
// turns a negative result into ErrInsufficientStock.
func (r *PgxStockRepository) ApplyQuantityChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, expectedVersions map[string]int64, userID string, at time.Time) error {
	query := `
		UPDATE stock_entries
		SET quantity = quantity + $1, version = version + 1, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $4 AND version = $5;
	`
	for entryID, delta := range changes {
		version, ok := expectedVersions[entryID]
		if !ok {
			return fmt.Errorf("missing expected version for stock entry %s", entryID)
		}
		tag, err := tx.Exec(ctx, query, delta, at, userID, entryID, version)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23514" {
				return fmt.Errorf("%w: entry %s delta %s", apperrors.ErrInsufficientStock, entryID, delta)
			}
			return fmt.Errorf("failed to update quantity of entry %s: %w", entryID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: stock entry %s version %d is stale", apperrors.ErrConcurrencyConflict, entryID, version)
		}
	}
	return nil
}
