package mapping

import (
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/mhgaber/dukan_pos_backend/internal/models"
)

// ToModelStockEntry converts a domain stock entry to its storage model.
func ToModelStockEntry(d domain.StockEntry) models.StockEntry {
	return models.StockEntry{
		EntryID:     d.EntryID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		WarehouseID: d.WarehouseID,
		Quantity:    d.Quantity,
		Version:     d.Version,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStockEntry converts a storage stock entry to its domain model.
func ToDomainStockEntry(m models.StockEntry) domain.StockEntry {
	return domain.StockEntry{
		EntryID:     m.EntryID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		WarehouseID: m.WarehouseID,
		Quantity:    m.Quantity,
		Version:     m.Version,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelStockMovement converts a domain stock movement to its storage model.
func ToModelStockMovement(d domain.StockMovement) models.StockMovement {
	return models.StockMovement{
		MovementID:     d.MovementID,
		EntryID:        d.EntryID,
		Quantity:       d.Quantity,
		Type:           models.StockMovementType(d.Type),
		MovementNumber: d.MovementNumber,
		Description:    d.Description,
		ReferenceKind:  string(d.Reference.Kind),
		ReferenceID:    d.Reference.ID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStockMovement converts a storage stock movement to its domain model.
func ToDomainStockMovement(m models.StockMovement) domain.StockMovement {
	return domain.StockMovement{
		MovementID:     m.MovementID,
		EntryID:        m.EntryID,
		Quantity:       m.Quantity,
		Type:           domain.StockMovementType(m.Type),
		MovementNumber: m.MovementNumber,
		Description:    m.Description,
		Reference: domain.Reference{
			Kind: domain.ReferenceKind(m.ReferenceKind),
			ID:   m.ReferenceID,
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
