package dto

import (
	"time"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new ledger account.
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required"`
	Kind           domain.AccountKind `json:"kind" binding:"required,oneof=CASHBOX CUSTOMER SUPPLIER"`
	Description    string             `json:"description"`
	OpeningBalance decimal.Decimal    `json:"openingBalance" binding:"gte=0"`
}

// AccountResponse defines the data returned for a ledger account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Kind          domain.AccountKind `json:"kind"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	IsActive      bool               `json:"isActive"`
	Balance       decimal.Decimal    `json:"balance"`
	CreatedAt     time.Time          `json:"createdAt"`
	CreatedBy     string             `json:"createdBy"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy string             `json:"lastUpdatedBy"`
}

// ListAccountsParams holds filters for listing accounts.
type ListAccountsParams struct {
	Kind      *domain.AccountKind
	Limit     int
	NextToken *string
}

// ListAccountsResponse is the paginated account listing.
type ListAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToAccountResponse converts a domain.LedgerAccount to AccountResponse.
func ToAccountResponse(acc *domain.LedgerAccount) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Kind:          acc.Kind,
		Name:          acc.Name,
		Description:   acc.Description,
		IsActive:      acc.IsActive,
		Balance:       acc.Balance,
		CreatedAt:     acc.CreatedAt,
		CreatedBy:     acc.CreatedBy,
		LastUpdatedAt: acc.LastUpdatedAt,
		LastUpdatedBy: acc.LastUpdatedBy,
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accs []domain.LedgerAccount) []AccountResponse {
	responses := make([]AccountResponse, len(accs))
	for i := range accs {
		responses[i] = ToAccountResponse(&accs[i])
	}
	return responses
}
