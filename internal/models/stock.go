package models

import "github.com/shopspring/decimal"

// StockMovementType mirrors domain.StockMovementType at the storage layer.
type StockMovementType string

const (
	StockIn         StockMovementType = "IN"
	StockOut        StockMovementType = "OUT"
	StockAdjustment StockMovementType = "ADJUSTMENT"
)

// StockEntry is the stock_entries row.
type StockEntry struct {
	EntryID     string          `db:"entry_id"`
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	WarehouseID string          `db:"warehouse_id"` // nullable in the schema
	Quantity    decimal.Decimal `db:"quantity"`
	Version     int64           `db:"version"`
	AuditFields
}

// StockMovement is the stock_movements row.
type StockMovement struct {
	MovementID     string            `db:"movement_id"`
	EntryID        string            `db:"entry_id"`
	Quantity       decimal.Decimal   `db:"quantity"`
	Type           StockMovementType `db:"movement_type"`
	MovementNumber string            `db:"movement_number"`
	Description    string            `db:"description"`
	ReferenceKind  string            `db:"reference_kind"`
	ReferenceID    string            `db:"reference_id"`
	AuditFields
}
