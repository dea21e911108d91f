package mapping

import (
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/mhgaber/dukan_pos_backend/internal/models"
)

// ToModelAccount converts a domain ledger account to its storage model.
func ToModelAccount(d domain.LedgerAccount) models.LedgerAccount {
	return models.LedgerAccount{
		AccountID:   d.AccountID,
		Kind:        models.AccountKind(d.Kind),
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		Balance:     d.Balance,
		Version:     d.Version,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a storage ledger account to its domain model.
func ToDomainAccount(m models.LedgerAccount) domain.LedgerAccount {
	return domain.LedgerAccount{
		AccountID:   m.AccountID,
		Kind:        domain.AccountKind(m.Kind),
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		Balance:     m.Balance,
		Version:     m.Version,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
