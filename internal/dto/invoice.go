package dto

import (
	"time"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest defines one product line on an invoice request.
type InvoiceLineRequest struct {
	ProductID      string          `json:"productID" binding:"required"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required,gt=0"`
	UnitPrice      decimal.Decimal `json:"unitPrice" binding:"gte=0"`
	DiscountAmount decimal.Decimal `json:"discountAmount" binding:"gte=0"`
}

// CreateInvoiceRequest defines the data needed to create a draft invoice.
// Tax fields default from system settings when omitted.
type CreateInvoiceRequest struct {
	Kind               domain.InvoiceKind   `json:"kind" binding:"required,oneof=SALES PURCHASE"`
	CounterpartyID     string               `json:"counterpartyID" binding:"required"`
	InvoiceDate        time.Time            `json:"invoiceDate" binding:"required"`
	Lines              []InvoiceLineRequest `json:"lines" binding:"dive"`
	HeaderDiscount     decimal.Decimal      `json:"headerDiscount" binding:"gte=0"`
	HeaderDiscountType domain.DiscountType  `json:"headerDiscountType" binding:"omitempty,oneof=AMOUNT PERCENTAGE"`
	TaxRate            *decimal.Decimal     `json:"taxRate"`
	TaxOnNetOfDiscount *bool                `json:"taxOnNetOfDiscount"`
	PaidAmount         decimal.Decimal      `json:"paidAmount" binding:"gte=0"`
}

// UpdateInvoiceRequest replaces the editable fields of a draft invoice.
type UpdateInvoiceRequest struct {
	CounterpartyID     *string              `json:"counterpartyID"`
	InvoiceDate        *time.Time           `json:"invoiceDate"`
	Lines              []InvoiceLineRequest `json:"lines" binding:"dive"`
	HeaderDiscount     *decimal.Decimal     `json:"headerDiscount"`
	HeaderDiscountType *domain.DiscountType `json:"headerDiscountType" binding:"omitempty,oneof=AMOUNT PERCENTAGE"`
	TaxRate            *decimal.Decimal     `json:"taxRate"`
	TaxOnNetOfDiscount *bool                `json:"taxOnNetOfDiscount"`
	PaidAmount         *decimal.Decimal     `json:"paidAmount"`
}

// InvoiceLineResponse defines the data returned for an invoice line.
type InvoiceLineResponse struct {
	LineID         string          `json:"lineID"`
	ProductID      string          `json:"productID"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	NetAmount      decimal.Decimal `json:"netAmount"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID          string                `json:"invoiceID"`
	Kind               domain.InvoiceKind    `json:"kind"`
	InvoiceNumber      string                `json:"invoiceNumber"`
	CounterpartyID     string                `json:"counterpartyID"`
	InvoiceDate        time.Time             `json:"invoiceDate"`
	Status             domain.InvoiceStatus  `json:"status"`
	IsPosted           bool                  `json:"isPosted"`
	SubTotal           decimal.Decimal       `json:"subTotal"`
	DiscountTotal      decimal.Decimal       `json:"discountTotal"`
	TaxAmount          decimal.Decimal       `json:"taxAmount"`
	NetTotal           decimal.Decimal       `json:"netTotal"`
	PaidAmount         decimal.Decimal       `json:"paidAmount"`
	RemainingAmount    decimal.Decimal       `json:"remainingAmount"`
	Lines              []InvoiceLineResponse `json:"lines,omitempty"`
	PostedAt           *time.Time            `json:"postedAt,omitempty"`
	VoidedAt           *time.Time            `json:"voidedAt,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	CreatedBy          string                `json:"createdBy"`
}

// ListInvoicesParams holds filters for listing invoices.
type ListInvoicesParams struct {
	Kind      *domain.InvoiceKind
	Limit     int
	NextToken *string
}

// ListInvoicesResponse is the paginated invoice listing.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToInvoiceLineResponse converts a domain invoice line.
func ToInvoiceLineResponse(l *domain.InvoiceLine) InvoiceLineResponse {
	return InvoiceLineResponse{
		LineID:         l.LineID,
		ProductID:      l.ProductID,
		Unit:           l.Unit,
		Quantity:       l.Quantity,
		UnitPrice:      l.UnitPrice,
		DiscountAmount: l.DiscountAmount,
		NetAmount:      l.NetAmount,
	}
}

// ToInvoiceResponse converts a domain.Invoice to InvoiceResponse.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i := range inv.Lines {
		lines[i] = ToInvoiceLineResponse(&inv.Lines[i])
	}
	return InvoiceResponse{
		InvoiceID:       inv.InvoiceID,
		Kind:            inv.Kind,
		InvoiceNumber:   inv.InvoiceNumber,
		CounterpartyID:  inv.CounterpartyID,
		InvoiceDate:     inv.InvoiceDate,
		Status:          inv.Status,
		IsPosted:        inv.IsPosted,
		SubTotal:        inv.SubTotal,
		DiscountTotal:   inv.DiscountTotal,
		TaxAmount:       inv.TaxAmount,
		NetTotal:        inv.NetTotal,
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.RemainingAmount,
		Lines:           lines,
		PostedAt:        inv.PostedAt,
		VoidedAt:        inv.VoidedAt,
		CreatedAt:       inv.CreatedAt,
		CreatedBy:       inv.CreatedBy,
	}
}
