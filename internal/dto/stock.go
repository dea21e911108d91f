package dto

import (
	"time"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateStockEntryRequest defines the data needed to start tracking a product.
type CreateStockEntryRequest struct {
	ProductID       string          `json:"productID" binding:"required"`
	ProductName     string          `json:"productName" binding:"required"`
	WarehouseID     string          `json:"warehouseID"`
	OpeningQuantity decimal.Decimal `json:"openingQuantity" binding:"gte=0"`
}

// AdjustStockRequest defines a manual quantity correction. Quantity is signed:
// positive adds stock, negative removes it.
type AdjustStockRequest struct {
	EntryID     string          `json:"entryID" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Description string          `json:"description"`
}

// StockEntryResponse defines the data returned for a stock entry.
type StockEntryResponse struct {
	EntryID       string          `json:"entryID"`
	ProductID     string          `json:"productID"`
	ProductName   string          `json:"productName"`
	WarehouseID   string          `json:"warehouseID,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// StockMovementResponse defines the data returned for a stock movement.
type StockMovementResponse struct {
	MovementID     string          `json:"movementID"`
	EntryID        string          `json:"entryID"`
	Quantity       decimal.Decimal `json:"quantity"`
	Type           string          `json:"type"`
	MovementNumber string          `json:"movementNumber"`
	Description    string          `json:"description"`
	ReferenceKind  string          `json:"referenceKind"`
	ReferenceID    string          `json:"referenceID"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// ListStockMovementsResponse is the paginated stock movement listing.
type ListStockMovementsResponse struct {
	Movements []StockMovementResponse `json:"movements"`
	NextToken *string                 `json:"nextToken,omitempty"`
}

// ToStockEntryResponse converts a domain.StockEntry to StockEntryResponse.
func ToStockEntryResponse(e *domain.StockEntry) StockEntryResponse {
	return StockEntryResponse{
		EntryID:       e.EntryID,
		ProductID:     e.ProductID,
		ProductName:   e.ProductName,
		WarehouseID:   e.WarehouseID,
		Quantity:      e.Quantity,
		CreatedAt:     e.CreatedAt,
		LastUpdatedAt: e.LastUpdatedAt,
	}
}

// ToStockMovementResponse converts a domain.StockMovement.
func ToStockMovementResponse(m *domain.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		MovementID:     m.MovementID,
		EntryID:        m.EntryID,
		Quantity:       m.Quantity,
		Type:           string(m.Type),
		MovementNumber: m.MovementNumber,
		Description:    m.Description,
		ReferenceKind:  string(m.Reference.Kind),
		ReferenceID:    m.Reference.ID,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}

// ToStockMovementResponses converts a slice of domain stock movements.
func ToStockMovementResponses(ms []domain.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(ms))
	for i := range ms {
		responses[i] = ToStockMovementResponse(&ms[i])
	}
	return responses
}
