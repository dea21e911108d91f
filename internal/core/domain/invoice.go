package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes sales invoices (customer side) from purchase
// invoices (supplier side).
type InvoiceKind string

const (
	SalesInvoice    InvoiceKind = "SALES"
	PurchaseInvoice InvoiceKind = "PURCHASE"
)

// InvoiceStatus models the invoice lifecycle: Draft -> Posted -> Voided.
// Draft is freely editable and has no ledger effect. Posting freezes the
// header and lines and commits the ledger/stock effects. Voided is terminal.
type InvoiceStatus string

const (
	Draft  InvoiceStatus = "DRAFT"
	Posted InvoiceStatus = "POSTED"
	Voided InvoiceStatus = "VOIDED"
)

// DiscountType selects how the header-level discount input is interpreted.
type DiscountType string

const (
	DiscountAmount     DiscountType = "AMOUNT"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

// InvoiceLine is one product line on an invoice.
// NetAmount = max(0, Quantity*UnitPrice - DiscountAmount).
type InvoiceLine struct {
	LineID         string
	InvoiceID      string
	ProductID      string
	Unit           string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	NetAmount      decimal.Decimal
}

// Invoice is a sales or purchase document. The derived totals are recomputed
// from the lines at posting time and frozen afterwards.
type Invoice struct {
	InvoiceID      string
	Kind           InvoiceKind
	InvoiceNumber  string
	CounterpartyID string // customer account for SALES, supplier account for PURCHASE
	InvoiceDate    time.Time
	Status         InvoiceStatus
	IsPosted       bool

	// Header-level discount/tax inputs.
	HeaderDiscount     decimal.Decimal
	HeaderDiscountType DiscountType
	TaxRate            decimal.Decimal
	TaxOnNetOfDiscount bool

	// Derived totals.
	SubTotal        decimal.Decimal
	DiscountTotal   decimal.Decimal
	TaxAmount       decimal.Decimal
	NetTotal        decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal

	Lines    []InvoiceLine
	PostedAt *time.Time
	VoidedAt *time.Time
	AuditFields
}

// ReferenceKind maps the invoice kind to the movement reference kind used for
// the ledger/stock records it creates at posting time.
func (i Invoice) ReferenceKind() ReferenceKind {
	if i.Kind == PurchaseInvoice {
		return RefPurchaseInvoice
	}
	return RefSalesInvoice
}

// StockDirection returns the stock movement type a posted line produces:
// sales ship goods out, purchases bring goods in.
func (i Invoice) StockDirection() StockMovementType {
	if i.Kind == PurchaseInvoice {
		return StockIn
	}
	return StockOut
}

// CanTransitionTo reports whether the lifecycle allows moving to the target
// status. Any transition not listed here is invalid, including Posted -> Draft.
func (i Invoice) CanTransitionTo(target InvoiceStatus) bool {
	switch i.Status {
	case Draft:
		return target == Posted
	case Posted:
		return target == Voided
	}
	return false
}
