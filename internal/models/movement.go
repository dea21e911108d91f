package models

import "github.com/shopspring/decimal"

// MovementType mirrors domain.MovementType at the storage layer.
type MovementType string

const (
	Income   MovementType = "INCOME"
	Expense  MovementType = "EXPENSE"
	Transfer MovementType = "TRANSFER"
)

// MovementRecord is the movement_records row. Amount is stored unsigned; the
// type column (and the transaction number suffix for transfers) carries the
// direction.
type MovementRecord struct {
	MovementID        string          `db:"movement_id"`
	AccountID         string          `db:"account_id"`
	Amount            decimal.Decimal `db:"amount"`
	Type              MovementType    `db:"movement_type"`
	TransactionNumber string          `db:"transaction_number"`
	PairID            string          `db:"pair_id"` // nullable in the schema
	Description       string          `db:"description"`
	ReferenceKind     string          `db:"reference_kind"`
	ReferenceID       string          `db:"reference_id"`
	AuditFields
}
