package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceKind mirrors domain.InvoiceKind at the storage layer.
type InvoiceKind string

const (
	SalesInvoice    InvoiceKind = "SALES"
	PurchaseInvoice InvoiceKind = "PURCHASE"
)

// InvoiceStatus mirrors domain.InvoiceStatus at the storage layer.
type InvoiceStatus string

const (
	Draft  InvoiceStatus = "DRAFT"
	Posted InvoiceStatus = "POSTED"
	Voided InvoiceStatus = "VOIDED"
)

// Invoice is the invoices row.
type Invoice struct {
	InvoiceID      string        `db:"invoice_id"`
	Kind           InvoiceKind   `db:"kind"`
	InvoiceNumber  string        `db:"invoice_number"`
	CounterpartyID string        `db:"counterparty_id"`
	InvoiceDate    time.Time     `db:"invoice_date"`
	Status         InvoiceStatus `db:"status"`
	IsPosted       bool          `db:"is_posted"`

	HeaderDiscount     decimal.Decimal `db:"header_discount"`
	HeaderDiscountType string          `db:"header_discount_type"`
	TaxRate            decimal.Decimal `db:"tax_rate"`
	TaxOnNetOfDiscount bool            `db:"tax_on_net_of_discount"`

	SubTotal        decimal.Decimal `db:"sub_total"`
	DiscountTotal   decimal.Decimal `db:"discount_total"`
	TaxAmount       decimal.Decimal `db:"tax_amount"`
	NetTotal        decimal.Decimal `db:"net_total"`
	PaidAmount      decimal.Decimal `db:"paid_amount"`
	RemainingAmount decimal.Decimal `db:"remaining_amount"`

	PostedAt *time.Time `db:"posted_at"`
	VoidedAt *time.Time `db:"voided_at"`
	AuditFields
}

// InvoiceLine is the invoice_lines row.
type InvoiceLine struct {
	LineID         string          `db:"line_id"`
	InvoiceID      string          `db:"invoice_id"`
	ProductID      string          `db:"product_id"`
	Unit           string          `db:"unit"`
	Quantity       decimal.Decimal `db:"quantity"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	NetAmount      decimal.Decimal `db:"net_amount"`
}
