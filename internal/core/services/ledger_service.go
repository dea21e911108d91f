package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
	"github.com/mhgaber/dukan_pos_backend/internal/middleware"
	"github.com/mhgaber/dukan_pos_backend/internal/utils/accounting"
)

var (
	ErrAccountInactive    = errors.New("account is inactive")
	ErrSameAccount        = errors.New("transfer source and destination must differ")
	ErrNotCashBox         = errors.New("transfers are only allowed between cash boxes")
	ErrDirectTransferType = errors.New("transfer movements must be created through Transfer")
)

// ledgerService is the balance-mutation engine. It validates preconditions
// against a fresh read, builds the movement records, and delegates the atomic
// insert-plus-balance-update to the repository's unit of work.
type ledgerService struct {
	movementRepo portsrepo.MovementRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(movementRepo portsrepo.MovementRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		movementRepo: movementRepo,
		accountRepo:  accountRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// fetchActiveAccount loads an account and rejects missing or inactive ones.
func (s *ledgerService) fetchActiveAccount(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrAccountInactive, accountID)
	}
	return account, nil
}

// ApplyMovement records one manual income or expense and applies its delta.
// Implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ApplyMovement(ctx context.Context, req dto.ApplyMovementRequest, userID string) (*domain.MovementRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := accounting.ValidatePositiveAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	movementType := domain.MovementType(req.Type)
	if movementType != domain.Income && movementType != domain.Expense {
		if movementType == domain.Transfer {
			return nil, ErrDirectTransferType
		}
		return nil, fmt.Errorf("%w: unknown movement type %q", apperrors.ErrValidation, req.Type)
	}

	account, err := s.fetchActiveAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	// Pre-check before the unit of work opens; the repository re-reads and
	// enforces again inside the transaction.
	if movementType == domain.Expense && account.EnforcesNonNegative() {
		if account.Balance.LessThan(req.Amount) {
			return nil, fmt.Errorf("%w: account %s balance %s, requested %s",
				apperrors.ErrInsufficientBalance, account.AccountID, account.Balance, req.Amount)
		}
	}

	now := time.Now().UTC()
	reference := domain.ManualRef(uuid.NewString())
	if req.ReferenceKind != nil && req.ReferenceID != nil {
		reference = domain.Reference{Kind: domain.ReferenceKind(*req.ReferenceKind), ID: *req.ReferenceID}
	}

	movement := domain.MovementRecord{
		MovementID:  uuid.NewString(),
		AccountID:   account.AccountID,
		Amount:      req.Amount,
		Type:        movementType,
		Description: req.Description,
		Reference:   reference,
		AuditFields: domain.NewAuditFields(userID, now),
	}

	saved, err := s.movementRepo.SaveMovement(ctx, movement)
	if err != nil {
		logger.Error("Failed to save movement", slog.String("account_id", account.AccountID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save movement: %w", err)
	}

	logger.Info("Movement applied",
		slog.String("movement_id", saved.MovementID),
		slog.String("account_id", saved.AccountID),
		slog.String("transaction_number", saved.TransactionNumber),
		slog.String("type", string(saved.Type)),
	)
	return saved, nil
}

// Transfer moves cash between two cash boxes as a paired unit of work: both
// legs commit or neither does.
// Implements portssvc.LedgerSvcFacade.
func (s *ledgerService) Transfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.MovementRecord, *domain.MovementRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := accounting.ValidatePositiveAmount(req.Amount); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, nil, ErrSameAccount
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, []string{req.FromAccountID, req.ToAccountID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch transfer accounts: %w", err)
	}
	source, ok := accounts[req.FromAccountID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, req.FromAccountID)
	}
	dest, ok := accounts[req.ToAccountID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, req.ToAccountID)
	}
	for _, acc := range []domain.LedgerAccount{source, dest} {
		if acc.Kind != domain.CashBox {
			return nil, nil, fmt.Errorf("%w: account %s is %s", ErrNotCashBox, acc.AccountID, acc.Kind)
		}
		if !acc.IsActive {
			return nil, nil, fmt.Errorf("%w: %s", ErrAccountInactive, acc.AccountID)
		}
	}

	// Sufficient-funds check before either leg is built. The repository
	// enforces it again inside the transaction.
	if source.Balance.LessThan(req.Amount) {
		return nil, nil, fmt.Errorf("%w: account %s balance %s, requested %s",
			apperrors.ErrInsufficientBalance, source.AccountID, source.Balance, req.Amount)
	}

	now := time.Now().UTC()
	pairID := uuid.NewString()
	reference := domain.Reference{Kind: domain.RefTransfer, ID: pairID}

	out := domain.MovementRecord{
		MovementID:  uuid.NewString(),
		AccountID:   source.AccountID,
		Amount:      req.Amount,
		Type:        domain.Transfer,
		PairID:      pairID,
		Description: req.Description,
		Reference:   reference,
		AuditFields: domain.NewAuditFields(userID, now),
	}
	in := domain.MovementRecord{
		MovementID:  uuid.NewString(),
		AccountID:   dest.AccountID,
		Amount:      req.Amount,
		Type:        domain.Transfer,
		PairID:      pairID,
		Description: req.Description,
		Reference:   reference,
		AuditFields: domain.NewAuditFields(userID, now),
	}

	savedOut, savedIn, err := s.movementRepo.SaveTransferPair(ctx, out, in)
	if err != nil {
		logger.Error("Failed to save transfer pair",
			slog.String("from", source.AccountID),
			slog.String("to", dest.AccountID),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("failed to save transfer: %w", err)
	}

	logger.Info("Transfer committed",
		slog.String("pair_id", pairID),
		slog.String("out_number", savedOut.TransactionNumber),
		slog.String("in_number", savedIn.TransactionNumber),
	)
	return savedOut, savedIn, nil
}

// Reverse undoes one committed movement record: inverse delta plus record
// deletion in one unit of work. A transfer leg whose direction cannot be
// resolved is refused with ErrAmbiguousReversal rather than guessed at; a
// wrong guess corrupts a correct ledger silently. Reversing one transfer leg
// does not touch its pair; callers reverse both legs explicitly.
// Implements portssvc.LedgerSvcFacade.
func (s *ledgerService) Reverse(ctx context.Context, movementID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	movement, err := s.movementRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
		}
		return fmt.Errorf("failed to fetch movement %s: %w", movementID, err)
	}

	inverseDelta, err := accounting.InverseDelta(*movement)
	if err != nil {
		logger.Warn("Refusing ambiguous reversal",
			slog.String("movement_id", movement.MovementID),
			slog.String("transaction_number", movement.TransactionNumber),
		)
		return fmt.Errorf("%w: movement %s number %q", apperrors.ErrAmbiguousReversal, movement.MovementID, movement.TransactionNumber)
	}

	now := time.Now().UTC()
	if err := s.movementRepo.DeleteMovementWithAdjustment(ctx, movement.MovementID, movement.AccountID, inverseDelta, userID, now); err != nil {
		logger.Error("Failed to reverse movement", slog.String("movement_id", movement.MovementID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to reverse movement %s: %w", movement.MovementID, err)
	}

	logger.Info("Movement reversed",
		slog.String("movement_id", movement.MovementID),
		slog.String("account_id", movement.AccountID),
		slog.String("inverse_delta", inverseDelta.String()),
	)
	return nil
}

// GetMovement retrieves a movement record by ID.
// Implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GetMovement(ctx context.Context, movementID string) (*domain.MovementRecord, error) {
	movement, err := s.movementRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		return nil, fmt.Errorf("failed to find movement %s: %w", movementID, err)
	}
	return movement, nil
}

// GetPairLeg retrieves the other leg of a transfer.
// Implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GetPairLeg(ctx context.Context, movementID string) (*domain.MovementRecord, error) {
	movement, err := s.movementRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
		}
		return nil, fmt.Errorf("failed to fetch movement %s: %w", movementID, err)
	}
	if movement.PairID == "" {
		return nil, fmt.Errorf("%w: movement %s is not a transfer leg", apperrors.ErrValidation, movementID)
	}

	pair, err := s.movementRepo.FindPairLeg(ctx, movement.PairID, movement.MovementID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pair leg of %s: %w", movementID, err)
	}
	return pair, nil
}

// ListAccountMovements retrieves an account's movements, newest first.
// Implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ListAccountMovements(ctx context.Context, accountID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	movements, nextToken, err := s.movementRepo.ListMovementsByAccount(ctx, accountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements for account %s: %w", accountID, err)
	}

	return &dto.ListMovementsResponse{
		Movements: dto.ToMovementResponses(movements),
		NextToken: nextToken,
	}, nil
}
