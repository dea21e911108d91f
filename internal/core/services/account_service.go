package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
	"github.com/mhgaber/dukan_pos_backend/internal/middleware"
)

var (
	ErrAccountInUse          = errors.New("account is referenced by movement records")
	ErrNegativeOpeningAmount = errors.New("opening balance must not be negative")
)

type accountService struct {
	accountRepo  portsrepo.AccountRepositoryFacade
	movementRepo portsrepo.MovementRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, movementRepo portsrepo.MovementRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates a new ledger account. The account row starts at zero;
// a non-zero opening balance is booked as an initial income movement so the
// balance stays the sum of its movement records.
// Implements portssvc.AccountSvcFacade.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.LedgerAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: got %s", ErrNegativeOpeningAmount, req.OpeningBalance)
	}

	now := time.Now().UTC()
	account := domain.LedgerAccount{
		AccountID:   uuid.NewString(),
		Kind:        req.Kind,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("name", req.Name), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	if req.OpeningBalance.IsPositive() {
		opening := domain.MovementRecord{
			MovementID:  uuid.NewString(),
			AccountID:   account.AccountID,
			Amount:      req.OpeningBalance,
			Type:        domain.Income,
			Description: "Opening balance",
			Reference:   domain.ManualRef(account.AccountID),
			AuditFields: domain.NewAuditFields(creatorUserID, now),
		}
		if _, err := s.movementRepo.SaveMovement(ctx, opening); err != nil {
			logger.Error("Failed to book opening balance", slog.String("account_id", account.AccountID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to book opening balance: %w", err)
		}
		account.Balance = req.OpeningBalance
	}

	logger.Info("Account created",
		slog.String("account_id", account.AccountID),
		slog.String("kind", string(account.Kind)),
		slog.String("name", account.Name),
	)
	return &account, nil
}

// GetAccountByID retrieves a single account.
// Implements portssvc.AccountSvcFacade.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// ListAccounts retrieves accounts with optional kind filter and pagination.
// Implements portssvc.AccountSvcFacade.
func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	accounts, nextToken, err := s.accountRepo.ListAccounts(ctx, params.Kind, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return &dto.ListAccountsResponse{
		Accounts:  dto.ToAccountResponses(accounts),
		NextToken: nextToken,
	}, nil
}

// DeactivateAccount marks an account inactive. History is untouched; the
// ledger service rejects new movements against inactive accounts.
// Implements portssvc.AccountSvcFacade.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if err := s.accountRepo.SetAccountActive(ctx, accountID, false, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}

// DeleteAccount removes an account that no movement record references.
// Deleting a referenced account would orphan committed history, so it is
// refused with ErrAccountInUse; deactivate instead.
// Implements portssvc.AccountSvcFacade.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	count, err := s.accountRepo.CountMovementsForAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to count movements for account %s: %w", accountID, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: account %s has %d movement(s)", ErrAccountInUse, accountID, count)
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}

	logger.Info("Account deleted", slog.String("account_id", accountID))
	return nil
}
