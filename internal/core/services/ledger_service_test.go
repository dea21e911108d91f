package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/core/services"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockMovementRepo *MockMovementRepository
	mockAccountRepo  *MockAccountRepository
	service          portssvc.LedgerSvcFacade

	userID     string
	mainBox    domain.LedgerAccount
	driverBox  domain.LedgerAccount
	customerAC domain.LedgerAccount
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.mockMovementRepo = new(MockMovementRepository)
	s.mockAccountRepo = new(MockAccountRepository)
	s.service = services.NewLedgerService(s.mockMovementRepo, s.mockAccountRepo)

	s.userID = uuid.NewString()
	s.mainBox = domain.LedgerAccount{
		AccountID: uuid.NewString(),
		Kind:      domain.CashBox,
		Name:      "Main cash box",
		IsActive:  true,
		Balance:   decimal.NewFromInt(10000),
		Version:   3,
	}
	s.driverBox = domain.LedgerAccount{
		AccountID: uuid.NewString(),
		Kind:      domain.CashBox,
		Name:      "Driver cash box",
		IsActive:  true,
		Balance:   decimal.NewFromInt(5000),
		Version:   1,
	}
	s.customerAC = domain.LedgerAccount{
		AccountID: uuid.NewString(),
		Kind:      domain.Customer,
		Name:      "Walk-in customer",
		IsActive:  true,
		Balance:   decimal.NewFromInt(250),
		Version:   7,
	}
}

func (s *LedgerServiceTestSuite) TestApplyMovement_Income_Success() {
	ctx := context.Background()
	req := dto.ApplyMovementRequest{
		AccountID:   s.mainBox.AccountID,
		Amount:      decimal.NewFromInt(500),
		Type:        "INCOME",
		Description: "Cash deposit",
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.mainBox.AccountID).Return(&s.mainBox, nil).Once()
	s.mockMovementRepo.On("SaveMovement", ctx, mock.AnythingOfType("domain.MovementRecord")).
		Return(&domain.MovementRecord{
			MovementID:        uuid.NewString(),
			AccountID:         s.mainBox.AccountID,
			Amount:            req.Amount,
			Type:              domain.Income,
			TransactionNumber: "CBX-000042",
		}, nil).Once()

	saved, err := s.service.ApplyMovement(ctx, req, s.userID)

	s.Require().NoError(err)
	s.Require().NotNil(saved)
	s.Equal("CBX-000042", saved.TransactionNumber)
	s.Equal(domain.Income, saved.Type)

	// The record handed to the repository carries the manual reference and
	// the stamped audit fields.
	savedArg := s.mockMovementRepo.Calls[0].Arguments.Get(1).(domain.MovementRecord)
	s.Equal(domain.RefManualEntry, savedArg.Reference.Kind)
	s.Equal(s.userID, savedArg.CreatedBy)
	s.True(savedArg.Amount.Equal(decimal.NewFromInt(500)))

	s.mockAccountRepo.AssertExpectations(s.T())
	s.mockMovementRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestApplyMovement_ExpenseOverdraft_Fails() {
	ctx := context.Background()
	req := dto.ApplyMovementRequest{
		AccountID: s.mainBox.AccountID,
		Amount:    decimal.NewFromInt(10001),
		Type:      "EXPENSE",
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.mainBox.AccountID).Return(&s.mainBox, nil).Once()

	_, err := s.service.ApplyMovement(ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrInsufficientBalance)
	s.mockMovementRepo.AssertNotCalled(s.T(), "SaveMovement", mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestApplyMovement_CustomerMayGoNegative() {
	ctx := context.Background()
	req := dto.ApplyMovementRequest{
		AccountID: s.customerAC.AccountID,
		Amount:    decimal.NewFromInt(1000), // balance is 250
		Type:      "EXPENSE",
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.customerAC.AccountID).Return(&s.customerAC, nil).Once()
	s.mockMovementRepo.On("SaveMovement", ctx, mock.AnythingOfType("domain.MovementRecord")).
		Return(&domain.MovementRecord{MovementID: uuid.NewString(), Type: domain.Expense}, nil).Once()

	_, err := s.service.ApplyMovement(ctx, req, s.userID)

	s.Require().NoError(err)
	s.mockMovementRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestApplyMovement_RejectsNonPositiveAmount() {
	ctx := context.Background()
	req := dto.ApplyMovementRequest{
		AccountID: s.mainBox.AccountID,
		Amount:    decimal.NewFromInt(-5),
		Type:      "INCOME",
	}

	_, err := s.service.ApplyMovement(ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockAccountRepo.AssertNotCalled(s.T(), "FindAccountByID", mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestApplyMovement_RejectsDirectTransferType() {
	ctx := context.Background()
	req := dto.ApplyMovementRequest{
		AccountID: s.mainBox.AccountID,
		Amount:    decimal.NewFromInt(5),
		Type:      "TRANSFER",
	}

	_, err := s.service.ApplyMovement(ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrDirectTransferType)
}

func (s *LedgerServiceTestSuite) TestApplyMovement_InactiveAccount_Fails() {
	ctx := context.Background()
	inactive := s.mainBox
	inactive.IsActive = false
	req := dto.ApplyMovementRequest{
		AccountID: inactive.AccountID,
		Amount:    decimal.NewFromInt(5),
		Type:      "INCOME",
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, inactive.AccountID).Return(&inactive, nil).Once()

	_, err := s.service.ApplyMovement(ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrAccountInactive)
}

func (s *LedgerServiceTestSuite) TestTransfer_Success() {
	ctx := context.Background()
	amount := decimal.NewFromInt(2000)
	req := dto.TransferRequest{
		FromAccountID: s.mainBox.AccountID,
		ToAccountID:   s.driverBox.AccountID,
		Amount:        amount,
		Description:   "Daily float",
	}

	accountsMap := map[string]domain.LedgerAccount{
		s.mainBox.AccountID:   s.mainBox,
		s.driverBox.AccountID: s.driverBox,
	}
	s.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{s.mainBox.AccountID, s.driverBox.AccountID}).
		Return(accountsMap, nil).Once()
	s.mockMovementRepo.On("SaveTransferPair", ctx,
		mock.AnythingOfType("domain.MovementRecord"), mock.AnythingOfType("domain.MovementRecord")).
		Return(
			&domain.MovementRecord{TransactionNumber: "TRF-000007-OUT", Type: domain.Transfer},
			&domain.MovementRecord{TransactionNumber: "TRF-000007-IN", Type: domain.Transfer},
			nil,
		).Once()

	out, in, err := s.service.Transfer(ctx, req, s.userID)

	s.Require().NoError(err)
	s.Equal("TRF-000007-OUT", out.TransactionNumber)
	s.Equal("TRF-000007-IN", in.TransactionNumber)

	// Both legs handed to the repository share the pair ID and reference the
	// same transfer document.
	call := s.mockMovementRepo.Calls[0]
	outArg := call.Arguments.Get(1).(domain.MovementRecord)
	inArg := call.Arguments.Get(2).(domain.MovementRecord)
	s.NotEmpty(outArg.PairID)
	s.Equal(outArg.PairID, inArg.PairID)
	s.Equal(domain.RefTransfer, outArg.Reference.Kind)
	s.Equal(outArg.Reference, inArg.Reference)
	s.Equal(s.mainBox.AccountID, outArg.AccountID)
	s.Equal(s.driverBox.AccountID, inArg.AccountID)
	s.True(outArg.Amount.Equal(amount))
	s.True(inArg.Amount.Equal(amount))

	s.mockAccountRepo.AssertExpectations(s.T())
	s.mockMovementRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestTransfer_InsufficientFunds_Fails() {
	ctx := context.Background()
	req := dto.TransferRequest{
		FromAccountID: s.driverBox.AccountID,
		ToAccountID:   s.mainBox.AccountID,
		Amount:        decimal.NewFromInt(5001), // driver box holds 5000
	}

	accountsMap := map[string]domain.LedgerAccount{
		s.mainBox.AccountID:   s.mainBox,
		s.driverBox.AccountID: s.driverBox,
	}
	s.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{s.driverBox.AccountID, s.mainBox.AccountID}).
		Return(accountsMap, nil).Once()

	_, _, err := s.service.Transfer(ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrInsufficientBalance)
	s.mockMovementRepo.AssertNotCalled(s.T(), "SaveTransferPair", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestTransfer_SameAccount_Fails() {
	ctx := context.Background()
	req := dto.TransferRequest{
		FromAccountID: s.mainBox.AccountID,
		ToAccountID:   s.mainBox.AccountID,
		Amount:        decimal.NewFromInt(10),
	}

	_, _, err := s.service.Transfer(ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrSameAccount)
}

func (s *LedgerServiceTestSuite) TestTransfer_NonCashBox_Fails() {
	ctx := context.Background()
	req := dto.TransferRequest{
		FromAccountID: s.mainBox.AccountID,
		ToAccountID:   s.customerAC.AccountID,
		Amount:        decimal.NewFromInt(10),
	}

	accountsMap := map[string]domain.LedgerAccount{
		s.mainBox.AccountID:    s.mainBox,
		s.customerAC.AccountID: s.customerAC,
	}
	s.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{s.mainBox.AccountID, s.customerAC.AccountID}).
		Return(accountsMap, nil).Once()

	_, _, err := s.service.Transfer(ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrNotCashBox)
}

func (s *LedgerServiceTestSuite) TestReverse_Income_AppliesNegativeDelta() {
	ctx := context.Background()
	movement := domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         s.mainBox.AccountID,
		Amount:            decimal.NewFromInt(300),
		Type:              domain.Income,
		TransactionNumber: "CBX-000010",
	}

	s.mockMovementRepo.On("FindMovementByID", ctx, movement.MovementID).Return(&movement, nil).Once()
	s.mockMovementRepo.On("DeleteMovementWithAdjustment", ctx,
		movement.MovementID, movement.AccountID, mock.AnythingOfType("decimal.Decimal"),
		s.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := s.service.Reverse(ctx, movement.MovementID, s.userID)

	s.Require().NoError(err)
	delta := s.mockMovementRepo.Calls[1].Arguments.Get(3).(decimal.Decimal)
	s.True(delta.Equal(decimal.NewFromInt(-300)), "reversing an income subtracts it, got %s", delta)
	s.mockMovementRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestReverse_TransferOutLeg_RestoresBalance() {
	ctx := context.Background()
	movement := domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         s.mainBox.AccountID,
		Amount:            decimal.NewFromInt(2000),
		Type:              domain.Transfer,
		TransactionNumber: "TRF-000007-OUT",
		PairID:            uuid.NewString(),
	}

	s.mockMovementRepo.On("FindMovementByID", ctx, movement.MovementID).Return(&movement, nil).Once()
	s.mockMovementRepo.On("DeleteMovementWithAdjustment", ctx,
		movement.MovementID, movement.AccountID, mock.AnythingOfType("decimal.Decimal"),
		s.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := s.service.Reverse(ctx, movement.MovementID, s.userID)

	s.Require().NoError(err)
	delta := s.mockMovementRepo.Calls[1].Arguments.Get(3).(decimal.Decimal)
	s.True(delta.Equal(decimal.NewFromInt(2000)), "reversing an outgoing leg adds the amount back, got %s", delta)
}

func (s *LedgerServiceTestSuite) TestReverse_AmbiguousTransferLeg_Refused() {
	ctx := context.Background()
	// A transfer leg whose number lost its directional suffix cannot be
	// resolved; reversal must refuse rather than guess.
	movement := domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         s.mainBox.AccountID,
		Amount:            decimal.NewFromInt(2000),
		Type:              domain.Transfer,
		TransactionNumber: "TRF-000007",
	}

	s.mockMovementRepo.On("FindMovementByID", ctx, movement.MovementID).Return(&movement, nil).Once()

	err := s.service.Reverse(ctx, movement.MovementID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrAmbiguousReversal)
	s.mockMovementRepo.AssertNotCalled(s.T(), "DeleteMovementWithAdjustment",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestReverse_NotFound() {
	ctx := context.Background()
	movementID := uuid.NewString()

	s.mockMovementRepo.On("FindMovementByID", ctx, movementID).Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.Reverse(ctx, movementID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestApplyMovement_StaleVersion_SurfacesConflict() {
	ctx := context.Background()
	req := dto.ApplyMovementRequest{
		AccountID: s.mainBox.AccountID,
		Amount:    decimal.NewFromInt(500),
		Type:      "INCOME",
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.mainBox.AccountID).Return(&s.mainBox, nil).Once()
	s.mockMovementRepo.On("SaveMovement", ctx, mock.AnythingOfType("domain.MovementRecord")).
		Return(nil, apperrors.ErrConcurrencyConflict).Once()

	saved, err := s.service.ApplyMovement(ctx, req, s.userID)

	s.Require().Error(err)
	s.Nil(saved)
	s.ErrorIs(err, apperrors.ErrConcurrencyConflict)
	s.mockMovementRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestGetPairLeg_ReturnsOtherLeg() {
	ctx := context.Background()
	pairID := uuid.NewString()
	outLeg := domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         s.mainBox.AccountID,
		Amount:            decimal.NewFromInt(2000),
		Type:              domain.Transfer,
		TransactionNumber: "TRF-000007-OUT",
		PairID:            pairID,
	}
	inLeg := domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         s.driverBox.AccountID,
		Amount:            decimal.NewFromInt(2000),
		Type:              domain.Transfer,
		TransactionNumber: "TRF-000007-IN",
		PairID:            pairID,
	}

	s.mockMovementRepo.On("FindMovementByID", ctx, outLeg.MovementID).Return(&outLeg, nil).Once()
	s.mockMovementRepo.On("FindPairLeg", ctx, pairID, outLeg.MovementID).Return(&inLeg, nil).Once()

	pair, err := s.service.GetPairLeg(ctx, outLeg.MovementID)

	s.Require().NoError(err)
	s.Equal(inLeg.MovementID, pair.MovementID)
	s.Equal("TRF-000007-IN", pair.TransactionNumber)
	s.mockMovementRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestGetPairLeg_NotATransferLeg() {
	ctx := context.Background()
	movement := domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         s.mainBox.AccountID,
		Amount:            decimal.NewFromInt(300),
		Type:              domain.Income,
		TransactionNumber: "CBX-000010",
	}

	s.mockMovementRepo.On("FindMovementByID", ctx, movement.MovementID).Return(&movement, nil).Once()

	pair, err := s.service.GetPairLeg(ctx, movement.MovementID)

	s.Require().Error(err)
	s.Nil(pair)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockMovementRepo.AssertNotCalled(s.T(), "FindPairLeg", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
