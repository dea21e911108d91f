package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
	"github.com/mhgaber/dukan_pos_backend/internal/middleware"
)

var ErrZeroAdjustment = errors.New("stock adjustment quantity must not be zero")

type stockService struct {
	stockRepo portsrepo.StockRepositoryFacade
}

// NewStockService creates a new StockService.
func NewStockService(stockRepo portsrepo.StockRepositoryFacade) portssvc.StockSvcFacade {
	return &stockService{stockRepo: stockRepo}
}

var _ portssvc.StockSvcFacade = (*stockService)(nil)

// CreateStockEntry starts tracking a product. The entry row starts at zero;
// a positive opening quantity is booked as an initial IN movement so the
// quantity stays the sum of the entry's movements.
// Implements portssvc.StockSvcFacade.
func (s *stockService) CreateStockEntry(ctx context.Context, req dto.CreateStockEntryRequest, creatorUserID string) (*domain.StockEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningQuantity.IsNegative() {
		return nil, fmt.Errorf("%w: opening quantity %s", apperrors.ErrValidation, req.OpeningQuantity)
	}

	if existing, err := s.stockRepo.FindEntryByProduct(ctx, req.ProductID, req.WarehouseID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: product %s already tracked as entry %s", apperrors.ErrDuplicate, req.ProductID, existing.EntryID)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check product %s: %w", req.ProductID, err)
	}

	now := time.Now().UTC()
	entry := domain.StockEntry{
		EntryID:     uuid.NewString(),
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		WarehouseID: req.WarehouseID,
		Quantity:    decimal.Zero,
		AuditFields: domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.stockRepo.SaveStockEntry(ctx, entry); err != nil {
		logger.Error("Failed to save stock entry", slog.String("product_id", req.ProductID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save stock entry: %w", err)
	}

	if req.OpeningQuantity.IsPositive() {
		opening := domain.StockMovement{
			MovementID:  uuid.NewString(),
			EntryID:     entry.EntryID,
			Quantity:    req.OpeningQuantity,
			Type:        domain.StockIn,
			Description: "Opening quantity",
			Reference:   domain.Reference{Kind: domain.RefStockAdjustment, ID: entry.EntryID},
			AuditFields: domain.NewAuditFields(creatorUserID, now),
		}
		if _, err := s.stockRepo.SaveStockMovement(ctx, opening); err != nil {
			logger.Error("Failed to book opening quantity", slog.String("entry_id", entry.EntryID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to book opening quantity: %w", err)
		}
		entry.Quantity = req.OpeningQuantity
	}

	logger.Info("Stock entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("product_id", entry.ProductID),
	)
	return &entry, nil
}

// GetStockEntry retrieves a stock entry by ID.
// Implements portssvc.StockSvcFacade.
func (s *stockService) GetStockEntry(ctx context.Context, entryID string) (*domain.StockEntry, error) {
	entry, err := s.stockRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock entry %s: %w", entryID, err)
	}
	return entry, nil
}

// GetStockEntryByProduct retrieves the entry for a product/warehouse pair.
// Implements portssvc.StockSvcFacade.
func (s *stockService) GetStockEntryByProduct(ctx context.Context, productID, warehouseID string) (*domain.StockEntry, error) {
	entry, err := s.stockRepo.FindEntryByProduct(ctx, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock entry for product %s: %w", productID, err)
	}
	return entry, nil
}

// AdjustStock records a signed manual correction. The repository applies the
// quantity delta and inserts the ADJUSTMENT movement in one commit; a negative
// resulting quantity fails the whole operation with ErrInsufficientStock.
// Implements portssvc.StockSvcFacade.
func (s *stockService) AdjustStock(ctx context.Context, req dto.AdjustStockRequest, userID string) (*domain.StockMovement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Quantity.IsZero() {
		return nil, ErrZeroAdjustment
	}

	entry, err := s.stockRepo.FindEntryByID(ctx, req.EntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock entry %s: %w", req.EntryID, err)
	}

	// Pre-check; the repository enforces again inside the transaction.
	if req.Quantity.IsNegative() && entry.Quantity.Add(req.Quantity).IsNegative() {
		return nil, fmt.Errorf("%w: entry %s quantity %s, adjustment %s",
			apperrors.ErrInsufficientStock, entry.EntryID, entry.Quantity, req.Quantity)
	}

	now := time.Now().UTC()
	movement := domain.StockMovement{
		MovementID:  uuid.NewString(),
		EntryID:     entry.EntryID,
		Quantity:    req.Quantity,
		Type:        domain.StockAdjustment,
		Description: req.Description,
		Reference:   domain.Reference{Kind: domain.RefStockAdjustment, ID: uuid.NewString()},
		AuditFields: domain.NewAuditFields(userID, now),
	}

	saved, err := s.stockRepo.SaveStockMovement(ctx, movement)
	if err != nil {
		logger.Error("Failed to save stock adjustment", slog.String("entry_id", entry.EntryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save stock adjustment: %w", err)
	}

	logger.Info("Stock adjusted",
		slog.String("entry_id", entry.EntryID),
		slog.String("movement_number", saved.MovementNumber),
		slog.String("quantity", req.Quantity.String()),
	)
	return saved, nil
}

// ListEntryMovements retrieves an entry's movements, newest first.
// Implements portssvc.StockSvcFacade.
func (s *stockService) ListEntryMovements(ctx context.Context, entryID string, limit int, nextToken *string) (*dto.ListStockMovementsResponse, error) {
	if _, err := s.stockRepo.FindEntryByID(ctx, entryID); err != nil {
		return nil, fmt.Errorf("failed to find stock entry %s: %w", entryID, err)
	}

	if limit <= 0 {
		limit = 50
	}
	movements, nextOut, err := s.stockRepo.ListMovementsByEntry(ctx, entryID, limit, nextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements for entry %s: %w", entryID, err)
	}
	return &dto.ListStockMovementsResponse{
		Movements: dto.ToStockMovementResponses(movements),
		NextToken: nextOut,
	}, nil
}
