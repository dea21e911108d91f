package domain

// ReferenceKind enumerates the business documents a movement record can point
// back to. A closed set keeps the polymorphic reference checkable instead of a
// free-form string pair.
type ReferenceKind string

const (
	RefManualEntry     ReferenceKind = "MANUAL_ENTRY"
	RefSalesInvoice    ReferenceKind = "SALES_INVOICE"
	RefPurchaseInvoice ReferenceKind = "PURCHASE_INVOICE"
	RefTransfer        ReferenceKind = "TRANSFER"
	RefStockAdjustment ReferenceKind = "STOCK_ADJUSTMENT"
)

// Reference points a movement record at the document that caused it.
type Reference struct {
	Kind ReferenceKind `json:"kind"`
	ID   string        `json:"id"`
}

// ManualRef builds a reference for a hand-entered cash transaction.
func ManualRef(id string) Reference {
	return Reference{Kind: RefManualEntry, ID: id}
}
