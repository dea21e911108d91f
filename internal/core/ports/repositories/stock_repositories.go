package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StockReader defines read operations for stock entries and movements.
type StockReader interface {
	// FindEntryByID retrieves a stock entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.StockEntry, error)

	// FindEntryByProduct retrieves the stock entry for a product, optionally
	// scoped to a warehouse (empty warehouseID for untracked products).
	FindEntryByProduct(ctx context.Context, productID, warehouseID string) (*domain.StockEntry, error)

	// FindStockMovementsByReference retrieves every stock movement created for
	// the given business document.
	FindStockMovementsByReference(ctx context.Context, ref domain.Reference) ([]domain.StockMovement, error)

	// ListMovementsByEntry retrieves a paginated list of an entry's movements
	// using token-based pagination.
	ListMovementsByEntry(ctx context.Context, entryID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error)
}

// StockWriter defines write operations for stock entries and movements.
type StockWriter interface {
	// SaveStockEntry inserts a new stock entry.
	SaveStockEntry(ctx context.Context, entry domain.StockEntry) error

	// SaveStockMovement mints the movement number, inserts the record and
	// applies its signed quantity to the entry, all in one commit. Fails with
	// ErrInsufficientStock when the resulting quantity would be negative.
	SaveStockMovement(ctx context.Context, movement domain.StockMovement) (*domain.StockMovement, error)
}

// StockTxOperator exposes stock writes that participate in a caller's
// transaction (invoice posting and voiding).
type StockTxOperator interface {
	// FindEntriesByIDsInTx re-reads stock entries inside the given transaction,
	// returning current quantities and version tokens.
	FindEntriesByIDsInTx(ctx context.Context, tx pgx.Tx, entryIDs []string) (map[string]domain.StockEntry, error)

	// InsertStockMovementsInTx inserts prepared stock movement records inside
	// the given transaction without touching quantities.
	InsertStockMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement) error

	// DeleteStockMovementsInTx removes stock movement records by ID inside the
	// given transaction without touching quantities.
	DeleteStockMovementsInTx(ctx context.Context, tx pgx.Tx, movementIDs []string) error

	// ApplyQuantityChangesInTx applies signed quantity deltas inside the given
	// transaction, conditioned on the version tokens in expectedVersions.
	// A stale token yields ErrConcurrencyConflict; a negative resulting
	// quantity yields ErrInsufficientStock.
	ApplyQuantityChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, expectedVersions map[string]int64, userID string, at time.Time) error
}

// StockRepositoryFacade combines all stock repository interfaces.
type StockRepositoryFacade interface {
	StockReader
	StockWriter
	StockTxOperator
}
