package services

import (
	"context"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
)

// StockSvcFacade manages stock entries and manual adjustments. Quantities are
// only ever changed through stock movements, never written directly.
type StockSvcFacade interface {
	// CreateStockEntry starts tracking a product, optionally per warehouse.
	// A non-zero opening quantity is recorded as an initial IN movement.
	CreateStockEntry(ctx context.Context, req dto.CreateStockEntryRequest, creatorUserID string) (*domain.StockEntry, error)

	// GetStockEntry retrieves a stock entry by ID.
	GetStockEntry(ctx context.Context, entryID string) (*domain.StockEntry, error)

	// GetStockEntryByProduct retrieves the entry for a product/warehouse pair.
	GetStockEntryByProduct(ctx context.Context, productID, warehouseID string) (*domain.StockEntry, error)

	// AdjustStock records a signed manual correction as an ADJUSTMENT movement
	// and applies it to the entry quantity in one unit of work.
	AdjustStock(ctx context.Context, req dto.AdjustStockRequest, userID string) (*domain.StockMovement, error)

	// ListEntryMovements retrieves an entry's movements, newest first.
	ListEntryMovements(ctx context.Context, entryID string, limit int, nextToken *string) (*dto.ListStockMovementsResponse, error)
}
