package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MovementReader defines read operations for movement records.
type MovementReader interface {
	// FindMovementByID retrieves a movement record by its unique identifier.
	FindMovementByID(ctx context.Context, movementID string) (*domain.MovementRecord, error)

	// FindMovementsByReference retrieves every movement record created for the
	// given business document.
	FindMovementsByReference(ctx context.Context, ref domain.Reference) ([]domain.MovementRecord, error)

	// FindPairLeg retrieves the other leg of a transfer by pair ID.
	FindPairLeg(ctx context.Context, pairID string, excludeMovementID string) (*domain.MovementRecord, error)

	// ListMovementsByAccount retrieves a paginated list of an account's
	// movements using token-based pagination.
	ListMovementsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.MovementRecord, *string, error)
}

// MovementWriter defines the atomic balance-mutation operations. Each method
// is one unit of work: the movement insert and the balance update commit
// together or not at all.
type MovementWriter interface {
	// SaveMovement mints the transaction number, inserts the record and applies
	// its signed delta to the owning account's balance, all in one commit.
	// Returns the record with the minted number. Fails with
	// ErrInsufficientBalance when an expense would drive a cash box negative.
	SaveMovement(ctx context.Context, movement domain.MovementRecord) (*domain.MovementRecord, error)

	// SaveTransferPair commits both legs of a transfer in one unit of work.
	// The legs share a minted number prefix, suffixed -OUT and -IN, and a pair
	// ID. Neither leg is persisted if either fails.
	SaveTransferPair(ctx context.Context, out domain.MovementRecord, in domain.MovementRecord) (*domain.MovementRecord, *domain.MovementRecord, error)

	// DeleteMovementWithAdjustment removes a movement record and applies the
	// given inverse delta to its account balance in one commit.
	DeleteMovementWithAdjustment(ctx context.Context, movementID string, accountID string, inverseDelta decimal.Decimal, userID string, at time.Time) error
}

// MovementTxOperator exposes movement writes that participate in a caller's
// transaction (invoice posting and voiding).
type MovementTxOperator interface {
	// InsertMovementsInTx inserts prepared movement records inside the given
	// transaction without touching balances.
	InsertMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.MovementRecord) error

	// DeleteMovementsInTx removes movement records by ID inside the given
	// transaction without touching balances.
	DeleteMovementsInTx(ctx context.Context, tx pgx.Tx, movementIDs []string) error
}

// MovementRepositoryFacade combines all movement repository interfaces.
type MovementRepositoryFacade interface {
	MovementReader
	MovementWriter
	MovementTxOperator
}
