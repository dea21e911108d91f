package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Sequence scopes used when minting document numbers. Cash movement sequences
// are account-scoped so each cash box, customer and supplier carries its own
// running numbers.
const (
	ScopeTransfer        = "TRANSFER"
	ScopeStockMovement   = "STOCK_MOVEMENT"
	ScopeSalesInvoice    = "SALES_INVOICE"
	ScopePurchaseInvoice = "PURCHASE_INVOICE"
)

// MovementScope builds the account-scoped sequence key for cash movements.
func MovementScope(accountID string) string {
	return "MOVEMENT:" + accountID
}

// NumberingRepository mints the next integer of a named sequence. The caller
// formats it into a document number (prefix + zero-padded value + optional
// directional suffix). Minting happens inside the caller's transaction so an
// aborted unit of work does not burn numbers silently out of order.
type NumberingRepository interface {
	NextNumberInTx(ctx context.Context, tx pgx.Tx, scope string) (int64, error)
}
