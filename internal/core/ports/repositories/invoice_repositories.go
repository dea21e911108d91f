package repositories

import (
	"context"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceReversal names a movement record to delete together with the inverse
// delta to apply to its account, computed by the caller before the unit of
// work opens.
type BalanceReversal struct {
	MovementID   string
	AccountID    string
	InverseDelta decimal.Decimal
}

// QuantityReversal names a stock movement to delete together with the inverse
// quantity delta to apply to its entry.
type QuantityReversal struct {
	MovementID   string
	EntryID      string
	InverseDelta decimal.Decimal
}

// InvoiceReader defines read operations for invoices.
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice with its lines.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves a paginated list of invoices, optionally filtered
	// by kind, using token-based pagination.
	ListInvoices(ctx context.Context, kind *domain.InvoiceKind, limit int, nextToken *string) ([]domain.Invoice, *string, error)
}

// InvoiceWriter defines write operations for invoices. PostInvoice and
// VoidInvoice are each one unit of work covering the invoice row, the ledger
// movement(s), the stock movement(s) and the balance/quantity updates.
type InvoiceWriter interface {
	// SaveInvoice mints the invoice number and inserts the draft header and
	// lines in one commit. Returns the invoice with the minted number.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)

	// UpdateDraftInvoice replaces the header fields and lines of a draft.
	// The update is conditioned on the row still being in DRAFT status.
	UpdateDraftInvoice(ctx context.Context, invoice domain.Invoice) error

	// PostInvoice commits the posting effects atomically: the invoice row
	// moves to POSTED (conditioned on still being DRAFT), the counterparty
	// movement (nil when the invoice is fully paid) and the per-line stock
	// movements are inserted with minted numbers, and the account balance and
	// stock quantities are updated under their version tokens.
	PostInvoice(ctx context.Context, invoice domain.Invoice, ledgerMovement *domain.MovementRecord, stockMovements []domain.StockMovement) (*domain.Invoice, error)

	// VoidInvoice commits the voiding effects atomically: the invoice row
	// moves to VOIDED (conditioned on still being POSTED), the named movement
	// records are deleted and their inverse deltas applied.
	VoidInvoice(ctx context.Context, invoice domain.Invoice, ledgerReversals []BalanceReversal, stockReversals []QuantityReversal) error
}

// InvoiceRepositoryFacade combines all invoice repository interfaces.
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
