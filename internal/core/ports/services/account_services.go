package services

import (
	"context"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
)

// AccountSvcFacade manages ledger accounts (cash boxes, customers, suppliers).
// Balances are never mutated here; only the ledger service and the invoice
// posting path touch them.
type AccountSvcFacade interface {
	// CreateAccount creates a new ledger account. A non-zero opening balance
	// is recorded as an initial income movement so the balance-sum invariant
	// holds from day one.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.LedgerAccount, error)

	// GetAccountByID retrieves a single account.
	GetAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error)

	// ListAccounts retrieves accounts with optional kind filter and pagination.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error)

	// DeactivateAccount marks an account inactive; inactive accounts reject
	// new movements but keep their history.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error

	// DeleteAccount removes an account. Refused while any movement record
	// still references it.
	DeleteAccount(ctx context.Context, accountID string) error
}
