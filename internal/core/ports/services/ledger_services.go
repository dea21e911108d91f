package services

import (
	"context"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
)

// LedgerSvcFacade is the balance-mutation engine surface: manual cash
// movements, transfers and reversals. Every operation commits atomically or
// not at all.
type LedgerSvcFacade interface {
	// ApplyMovement records a manual income or expense against an account and
	// applies the signed delta to its balance in one unit of work.
	ApplyMovement(ctx context.Context, req dto.ApplyMovementRequest, userID string) (*domain.MovementRecord, error)

	// Transfer moves cash between two cash boxes: two movement records with a
	// shared number prefix (-OUT/-IN), one commit.
	Transfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.MovementRecord, *domain.MovementRecord, error)

	// Reverse undoes one committed movement record: applies the inverse delta
	// and deletes the record. Transfer legs are reversed individually; callers
	// void both legs explicitly.
	Reverse(ctx context.Context, movementID string, userID string) error

	// GetMovement retrieves a movement record by ID.
	GetMovement(ctx context.Context, movementID string) (*domain.MovementRecord, error)

	// GetPairLeg retrieves the other leg of a transfer, so callers reversing
	// one leg can find and reverse its counterpart.
	GetPairLeg(ctx context.Context, movementID string) (*domain.MovementRecord, error)

	// ListAccountMovements retrieves an account's movements, newest first.
	ListAccountMovements(ctx context.Context, accountID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error)
}
