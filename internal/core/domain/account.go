package domain

import (
	"github.com/shopspring/decimal"
)

// AccountKind identifies which business party a ledger account belongs to.
type AccountKind string

const (
	CashBox  AccountKind = "CASHBOX"
	Customer AccountKind = "CUSTOMER"
	Supplier AccountKind = "SUPPLIER"
)

// LedgerAccount holds a single running monetary balance for a cash box,
// customer or supplier. The balance is the algebraic sum of all committed
// movement records referencing the account and is only ever changed by the
// balance-mutation engine or the reversal procedure.
type LedgerAccount struct {
	AccountID   string
	Kind        AccountKind
	Name        string
	Description string
	IsActive    bool
	Balance     decimal.Decimal
	// Version is a monotonically-increasing token bumped on every balance
	// update. A stale token at write time means a concurrent writer got
	// there first.
	Version int64
	AuditFields
}

// EnforcesNonNegative reports whether the account's balance may never drop
// below zero. Customer/supplier balances are allowed to swing either way.
func (a LedgerAccount) EnforcesNonNegative() bool {
	return a.Kind == CashBox
}
