package dto

import (
	"time"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyMovementRequest defines a manual cash transaction (deposit or
// withdrawal) against a ledger account.
type ApplyMovementRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Type        string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Description string          `json:"description"`
	// Optional back-reference; defaults to a fresh manual-entry reference.
	ReferenceKind *string `json:"referenceKind"`
	ReferenceID   *string `json:"referenceID"`
}

// TransferRequest defines a cash transfer between two cash boxes.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountID" binding:"required"`
	ToAccountID   string          `json:"toAccountID" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Description   string          `json:"description"`
}

// MovementResponse defines the data returned for a movement record.
type MovementResponse struct {
	MovementID        string          `json:"movementID"`
	AccountID         string          `json:"accountID"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	TransactionNumber string          `json:"transactionNumber"`
	PairID            string          `json:"pairID,omitempty"`
	Description       string          `json:"description"`
	ReferenceKind     string          `json:"referenceKind"`
	ReferenceID       string          `json:"referenceID"`
	CreatedAt         time.Time       `json:"createdAt"`
	CreatedBy         string          `json:"createdBy"`
}

// TransferResponse returns both committed legs of a transfer.
type TransferResponse struct {
	Out MovementResponse `json:"out"`
	In  MovementResponse `json:"in"`
}

// ListMovementsParams holds pagination inputs for an account's movements.
type ListMovementsParams struct {
	Limit     int
	NextToken *string
}

// ListMovementsResponse is the paginated movement listing.
type ListMovementsResponse struct {
	Movements []MovementResponse `json:"movements"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToMovementResponse converts a domain.MovementRecord to MovementResponse.
func ToMovementResponse(m *domain.MovementRecord) MovementResponse {
	return MovementResponse{
		MovementID:        m.MovementID,
		AccountID:         m.AccountID,
		Amount:            m.Amount,
		Type:              string(m.Type),
		TransactionNumber: m.TransactionNumber,
		PairID:            m.PairID,
		Description:       m.Description,
		ReferenceKind:     string(m.Reference.Kind),
		ReferenceID:       m.Reference.ID,
		CreatedAt:         m.CreatedAt,
		CreatedBy:         m.CreatedBy,
	}
}

// ToMovementResponses converts a slice of domain movement records.
func ToMovementResponses(ms []domain.MovementRecord) []MovementResponse {
	responses := make([]MovementResponse, len(ms))
	for i := range ms {
		responses[i] = ToMovementResponse(&ms[i])
	}
	return responses
}
