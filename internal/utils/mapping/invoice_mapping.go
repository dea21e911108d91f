package mapping

import (
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/mhgaber/dukan_pos_backend/internal/models"
)

// ToModelInvoice converts a domain invoice header to its storage model.
// Lines are mapped separately; they live in their own table.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:          d.InvoiceID,
		Kind:               models.InvoiceKind(d.Kind),
		InvoiceNumber:      d.InvoiceNumber,
		CounterpartyID:     d.CounterpartyID,
		InvoiceDate:        d.InvoiceDate,
		Status:             models.InvoiceStatus(d.Status),
		IsPosted:           d.IsPosted,
		HeaderDiscount:     d.HeaderDiscount,
		HeaderDiscountType: string(d.HeaderDiscountType),
		TaxRate:            d.TaxRate,
		TaxOnNetOfDiscount: d.TaxOnNetOfDiscount,
		SubTotal:           d.SubTotal,
		DiscountTotal:      d.DiscountTotal,
		TaxAmount:          d.TaxAmount,
		NetTotal:           d.NetTotal,
		PaidAmount:         d.PaidAmount,
		RemainingAmount:    d.RemainingAmount,
		PostedAt:           d.PostedAt,
		VoidedAt:           d.VoidedAt,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a storage invoice header to its domain model.
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:          m.InvoiceID,
		Kind:               domain.InvoiceKind(m.Kind),
		InvoiceNumber:      m.InvoiceNumber,
		CounterpartyID:     m.CounterpartyID,
		InvoiceDate:        m.InvoiceDate,
		Status:             domain.InvoiceStatus(m.Status),
		IsPosted:           m.IsPosted,
		HeaderDiscount:     m.HeaderDiscount,
		HeaderDiscountType: domain.DiscountType(m.HeaderDiscountType),
		TaxRate:            m.TaxRate,
		TaxOnNetOfDiscount: m.TaxOnNetOfDiscount,
		SubTotal:           m.SubTotal,
		DiscountTotal:      m.DiscountTotal,
		TaxAmount:          m.TaxAmount,
		NetTotal:           m.NetTotal,
		PaidAmount:         m.PaidAmount,
		RemainingAmount:    m.RemainingAmount,
		PostedAt:           m.PostedAt,
		VoidedAt:           m.VoidedAt,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInvoiceLine converts a domain invoice line to its storage model.
func ToModelInvoiceLine(d domain.InvoiceLine) models.InvoiceLine {
	return models.InvoiceLine{
		LineID:         d.LineID,
		InvoiceID:      d.InvoiceID,
		ProductID:      d.ProductID,
		Unit:           d.Unit,
		Quantity:       d.Quantity,
		UnitPrice:      d.UnitPrice,
		DiscountAmount: d.DiscountAmount,
		NetAmount:      d.NetAmount,
	}
}

// ToDomainInvoiceLine converts a storage invoice line to its domain model.
func ToDomainInvoiceLine(m models.InvoiceLine) domain.InvoiceLine {
	return domain.InvoiceLine{
		LineID:         m.LineID,
		InvoiceID:      m.InvoiceID,
		ProductID:      m.ProductID,
		Unit:           m.Unit,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		DiscountAmount: m.DiscountAmount,
		NetAmount:      m.NetAmount,
	}
}
