package accounting

import (
	"fmt"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta resolves the balance effect of a movement record. It is the one
// place the sign convention lives; services and repositories both use it so
// the applied delta and the reported delta can never diverge.
// Transfer legs whose transaction number lacks a -OUT/-IN suffix cannot be
// resolved and surface ErrAmbiguousReversal from the caller, never a guess.
func SignedDelta(m domain.MovementRecord) (decimal.Decimal, error) {
	delta, ok := m.SignedAmount()
	if !ok {
		return decimal.Zero, fmt.Errorf("cannot resolve direction of movement %s (number %q, type %s)",
			m.MovementID, m.TransactionNumber, m.Type)
	}
	return delta, nil
}

// InverseDelta resolves the balance effect of reversing a movement record.
func InverseDelta(m domain.MovementRecord) (decimal.Decimal, error) {
	delta, err := SignedDelta(m)
	if err != nil {
		return decimal.Zero, err
	}
	return delta.Neg(), nil
}

// ValidatePositiveAmount rejects zero or negative movement amounts.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("movement amount must be positive, got %s", amount)
	}
	return nil
}
