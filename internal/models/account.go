package models

import "github.com/shopspring/decimal"

// AccountKind mirrors domain.AccountKind at the storage layer.
type AccountKind string

const (
	CashBox  AccountKind = "CASHBOX"
	Customer AccountKind = "CUSTOMER"
	Supplier AccountKind = "SUPPLIER"
)

// LedgerAccount is the ledger_accounts row.
type LedgerAccount struct {
	AccountID   string          `db:"account_id"`
	Kind        AccountKind     `db:"kind"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	IsActive    bool            `db:"is_active"`
	Balance     decimal.Decimal `db:"balance"`
	Version     int64           `db:"version"`
	AuditFields
}
