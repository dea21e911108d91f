package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MovementType discriminates how a movement's unsigned amount hits the balance.
type MovementType string

const (
	Income   MovementType = "INCOME"
	Expense  MovementType = "EXPENSE"
	Transfer MovementType = "TRANSFER"
)

// Directional suffixes carried by transfer leg transaction numbers.
const (
	TransferOutSuffix = "-OUT"
	TransferInSuffix  = "-IN"
)

// MovementRecord is one committed balance delta against a ledger account.
// Amount is stored unsigned; MovementType (plus, for transfers, the leg
// direction) decides the sign. Once committed the record never changes; the
// only way to undo it is the reversal procedure, which deletes it.
type MovementRecord struct {
	MovementID string
	AccountID  string
	Amount     decimal.Decimal
	Type       MovementType
	// TransactionNumber is a unique human-readable number, account-scoped and
	// zero-padded. Transfer legs carry a -OUT / -IN suffix on a shared prefix.
	TransactionNumber string
	// PairID links the two legs of a transfer directly; empty for
	// non-transfer movements and for legacy rows that predate the column.
	PairID      string
	Description string
	Reference   Reference
	AuditFields
}

// IsTransferLeg reports whether the record is one side of a cash transfer.
func (m MovementRecord) IsTransferLeg() bool {
	return m.Type == Transfer
}

// SignedAmount resolves the record's effect on its account balance.
// The second return is false when the direction cannot be determined, which
// only happens for transfer legs whose transaction number lacks a recognizable
// suffix.
func (m MovementRecord) SignedAmount() (decimal.Decimal, bool) {
	switch m.Type {
	case Income:
		return m.Amount, true
	case Expense:
		return m.Amount.Neg(), true
	case Transfer:
		if strings.HasSuffix(m.TransactionNumber, TransferOutSuffix) {
			return m.Amount.Neg(), true
		}
		if strings.HasSuffix(m.TransactionNumber, TransferInSuffix) {
			return m.Amount, true
		}
		return decimal.Zero, false
	}
	return decimal.Zero, false
}

// TransferPrefix strips the directional suffix off a transfer leg's
// transaction number, yielding the correlation prefix shared by both legs.
// Returns "" when no suffix is present.
func (m MovementRecord) TransferPrefix() string {
	if p, ok := strings.CutSuffix(m.TransactionNumber, TransferOutSuffix); ok {
		return p
	}
	if p, ok := strings.CutSuffix(m.TransactionNumber, TransferInSuffix); ok {
		return p
	}
	return ""
}
