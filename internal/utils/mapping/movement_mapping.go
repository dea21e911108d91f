package mapping

import (
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/mhgaber/dukan_pos_backend/internal/models"
)

// ToModelMovement converts a domain movement record to its storage model.
func ToModelMovement(d domain.MovementRecord) models.MovementRecord {
	return models.MovementRecord{
		MovementID:        d.MovementID,
		AccountID:         d.AccountID,
		Amount:            d.Amount,
		Type:              models.MovementType(d.Type),
		TransactionNumber: d.TransactionNumber,
		PairID:            d.PairID,
		Description:       d.Description,
		ReferenceKind:     string(d.Reference.Kind),
		ReferenceID:       d.Reference.ID,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMovement converts a storage movement record to its domain model.
func ToDomainMovement(m models.MovementRecord) domain.MovementRecord {
	return domain.MovementRecord{
		MovementID:        m.MovementID,
		AccountID:         m.AccountID,
		Amount:            m.Amount,
		Type:              domain.MovementType(m.Type),
		TransactionNumber: m.TransactionNumber,
		PairID:            m.PairID,
		Description:       m.Description,
		Reference: domain.Reference{
			Kind: domain.ReferenceKind(m.ReferenceKind),
			ID:   m.ReferenceID,
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
