package domain

import "github.com/shopspring/decimal"

// StockMovementType discriminates how a stock movement's unsigned quantity
// hits the entry's current quantity.
type StockMovementType string

const (
	StockIn         StockMovementType = "IN"
	StockOut        StockMovementType = "OUT"
	StockAdjustment StockMovementType = "ADJUSTMENT"
)

// StockEntry holds the current quantity of one product, optionally split per
// warehouse. Quantity is the sum of all committed stock movements and is kept
// non-negative.
type StockEntry struct {
	EntryID     string
	ProductID   string
	ProductName string
	WarehouseID string // empty when the product is not warehouse-tracked
	Quantity    decimal.Decimal
	Version     int64
	AuditFields
}

// StockMovement is one committed quantity delta against a stock entry, with a
// reference back to the document that caused it. Adjustment movements carry a
// signed quantity; IN/OUT movements are unsigned with the sign implied by type.
type StockMovement struct {
	MovementID     string
	EntryID        string
	Quantity       decimal.Decimal
	Type           StockMovementType
	MovementNumber string
	Description    string
	Reference      Reference
	AuditFields
}

// SignedQuantity resolves the movement's effect on the entry quantity.
func (m StockMovement) SignedQuantity() decimal.Decimal {
	switch m.Type {
	case StockIn:
		return m.Quantity
	case StockOut:
		return m.Quantity.Neg()
	case StockAdjustment:
		return m.Quantity
	}
	return decimal.Zero
}
