package services

import (
	"context"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
)

// InvoiceSvcFacade manages the invoice lifecycle: Draft -> Posted -> Voided.
// Drafts have no ledger effect; posting and voiding each run as one unit of
// work covering the counterparty balance and the stock quantities.
type InvoiceSvcFacade interface {
	// CreateInvoice creates a draft invoice with computed totals. When the
	// auto-post setting is on, the draft is posted immediately.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error)

	// UpdateDraftInvoice replaces the editable fields of a draft and
	// recomputes totals. Fails with ErrInvalidStateTransition on non-drafts.
	UpdateDraftInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error)

	// PostInvoice transitions Draft -> Posted: recomputes totals, books the
	// unpaid portion onto the counterparty balance and moves stock per line.
	PostInvoice(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error)

	// VoidInvoice transitions Posted -> Voided by reversing every movement
	// created at posting time.
	VoidInvoice(ctx context.Context, invoiceID string, userID string) error

	// GetInvoiceByID retrieves an invoice with its lines.
	GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves invoices with optional kind filter and pagination.
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error)
}
