package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
	"github.com/mhgaber/dukan_pos_backend/internal/handlers"
	"github.com/mhgaber/dukan_pos_backend/pkg/config"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) ApplyMovement(ctx context.Context, req dto.ApplyMovementRequest, userID string) (*domain.MovementRecord, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovementRecord), args.Error(1)
}
func (m *MockLedgerService) Transfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.MovementRecord, *domain.MovementRecord, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.MovementRecord), args.Get(1).(*domain.MovementRecord), args.Error(2)
}
func (m *MockLedgerService) Reverse(ctx context.Context, movementID string, userID string) error {
	args := m.Called(ctx, movementID, userID)
	return args.Error(0)
}
func (m *MockLedgerService) GetMovement(ctx context.Context, movementID string) (*domain.MovementRecord, error) {
	args := m.Called(ctx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovementRecord), args.Error(1)
}
func (m *MockLedgerService) GetPairLeg(ctx context.Context, movementID string) (*domain.MovementRecord, error) {
	args := m.Called(ctx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovementRecord), args.Error(1)
}
func (m *MockLedgerService) ListAccountMovements(ctx context.Context, accountID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListMovementsResponse), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListAccountsResponse), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock StockService ---
type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) CreateStockEntry(ctx context.Context, req dto.CreateStockEntryRequest, creatorUserID string) (*domain.StockEntry, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockEntry), args.Error(1)
}
func (m *MockStockService) GetStockEntry(ctx context.Context, entryID string) (*domain.StockEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockEntry), args.Error(1)
}
func (m *MockStockService) GetStockEntryByProduct(ctx context.Context, productID, warehouseID string) (*domain.StockEntry, error) {
	args := m.Called(ctx, productID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockEntry), args.Error(1)
}
func (m *MockStockService) AdjustStock(ctx context.Context, req dto.AdjustStockRequest, userID string) (*domain.StockMovement, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockMovement), args.Error(1)
}
func (m *MockStockService) ListEntryMovements(ctx context.Context, entryID string, limit int, nextToken *string) (*dto.ListStockMovementsResponse, error) {
	args := m.Called(ctx, entryID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListStockMovementsResponse), args.Error(1)
}

var _ portssvc.StockSvcFacade = (*MockStockService)(nil)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) UpdateDraftInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) PostInvoice(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) VoidInvoice(ctx context.Context, invoiceID string, userID string) error {
	args := m.Called(ctx, invoiceID, userID)
	return args.Error(0)
}
func (m *MockInvoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListInvoicesResponse), args.Error(1)
}

var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Test Suite ---
type LedgerHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockLedgerService  *MockLedgerService
	mockAccountService *MockAccountService
	mockStockService   *MockStockService
	mockInvoiceService *MockInvoiceService
	operatorID         string
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.operatorID = uuid.NewString()

	suite.mockLedgerService = new(MockLedgerService)
	suite.mockAccountService = new(MockAccountService)
	suite.mockStockService = new(MockStockService)
	suite.mockInvoiceService = new(MockInvoiceService)

	cfg := &config.Config{
		IsProduction:      true, // no swagger wiring in tests
		MutationRateLimit: "1000-S",
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Account: suite.mockAccountService,
		Ledger:  suite.mockLedgerService,
		Stock:   suite.mockStockService,
		Invoice: suite.mockInvoiceService,
	})
}

// doJSON issues a request with the operator identity header set.
func (suite *LedgerHandlerTestSuite) doJSON(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", suite.operatorID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerHandlerTestSuite) TestApplyMovement_Success() {
	accountID := uuid.NewString()
	reqBody := dto.ApplyMovementRequest{
		AccountID:   accountID,
		Amount:      decimal.NewFromInt(250),
		Type:        "INCOME",
		Description: "Morning cash in",
	}
	expected := &domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         accountID,
		Amount:            decimal.NewFromInt(250),
		Type:              domain.Income,
		TransactionNumber: "CBX-000042",
		Description:       "Morning cash in",
		Reference:         domain.ManualRef(uuid.NewString()),
		AuditFields:       domain.NewAuditFields(suite.operatorID, time.Now()),
	}

	suite.mockLedgerService.On("ApplyMovement",
		mock.Anything,
		mock.MatchedBy(func(r dto.ApplyMovementRequest) bool {
			return r.AccountID == accountID && r.Type == "INCOME" && r.Amount.Equal(decimal.NewFromInt(250))
		}),
		suite.operatorID,
	).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/movements", reqBody)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.MovementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.MovementID, resp.MovementID)
	suite.Equal("CBX-000042", resp.TransactionNumber)
	suite.Equal("INCOME", resp.Type)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestApplyMovement_MissingOperatorHeader() {
	reqBody := dto.ApplyMovementRequest{
		AccountID: uuid.NewString(),
		Amount:    decimal.NewFromInt(10),
		Type:      "INCOME",
	}
	var buf bytes.Buffer
	suite.Require().NoError(json.NewEncoder(&buf).Encode(reqBody))
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/movements", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "ApplyMovement")
}

func (suite *LedgerHandlerTestSuite) TestApplyMovement_InsufficientBalance() {
	reqBody := dto.ApplyMovementRequest{
		AccountID: uuid.NewString(),
		Amount:    decimal.NewFromInt(9999),
		Type:      "EXPENSE",
	}
	suite.mockLedgerService.On("ApplyMovement", mock.Anything, mock.Anything, suite.operatorID).
		Return(nil, fmt.Errorf("cash box overdrawn: %w", apperrors.ErrInsufficientBalance)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/movements", reqBody)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestTransfer_Success() {
	from := uuid.NewString()
	to := uuid.NewString()
	reqBody := dto.TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        decimal.NewFromInt(500),
		Description:   "Drawer to safe",
	}
	pairID := uuid.NewString()
	outLeg := &domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         from,
		Amount:            decimal.NewFromInt(500),
		Type:              domain.Transfer,
		TransactionNumber: "TRF-000007-OUT",
		PairID:            pairID,
	}
	inLeg := &domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         to,
		Amount:            decimal.NewFromInt(500),
		Type:              domain.Transfer,
		TransactionNumber: "TRF-000007-IN",
		PairID:            pairID,
	}

	suite.mockLedgerService.On("Transfer", mock.Anything, reqBody, suite.operatorID).
		Return(outLeg, inLeg, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers", reqBody)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("TRF-000007-OUT", resp.Out.TransactionNumber)
	suite.Equal("TRF-000007-IN", resp.In.TransactionNumber)
	suite.Equal(resp.Out.PairID, resp.In.PairID)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestReverseMovement_Ambiguous() {
	movementID := uuid.NewString()
	suite.mockLedgerService.On("Reverse", mock.Anything, movementID, suite.operatorID).
		Return(fmt.Errorf("transfer leg TRF-000007 has no direction suffix: %w", apperrors.ErrAmbiguousReversal)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/movements/"+movementID+"/reverse", nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestReverseMovement_Success() {
	movementID := uuid.NewString()
	suite.mockLedgerService.On("Reverse", mock.Anything, movementID, suite.operatorID).
		Return(nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/movements/"+movementID+"/reverse", nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestGetMovement_NotFound() {
	movementID := uuid.NewString()
	suite.mockLedgerService.On("GetMovement", mock.Anything, movementID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/movements/"+movementID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestGetPairLeg_Success() {
	movementID := uuid.NewString()
	pair := &domain.MovementRecord{
		MovementID:        uuid.NewString(),
		AccountID:         uuid.NewString(),
		Amount:            decimal.NewFromInt(2000),
		Type:              domain.Transfer,
		TransactionNumber: "TRF-000007-IN",
		PairID:            uuid.NewString(),
		AuditFields:       domain.NewAuditFields(suite.operatorID, time.Now()),
	}
	suite.mockLedgerService.On("GetPairLeg", mock.Anything, movementID).
		Return(pair, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/movements/"+movementID+"/pair", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.MovementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("TRF-000007-IN", resp.TransactionNumber)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestGetPairLeg_NotATransferLeg() {
	movementID := uuid.NewString()
	suite.mockLedgerService.On("GetPairLeg", mock.Anything, movementID).
		Return(nil, fmt.Errorf("%w: movement %s is not a transfer leg", apperrors.ErrValidation, movementID)).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/movements/"+movementID+"/pair", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestPostInvoice_NotADraft() {
	invoiceID := uuid.NewString()
	suite.mockInvoiceService.On("PostInvoice", mock.Anything, invoiceID, suite.operatorID).
		Return(nil, fmt.Errorf("invoice already posted: %w", apperrors.ErrInvalidStateTransition)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/post", nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestVoidInvoice_Success() {
	invoiceID := uuid.NewString()
	suite.mockInvoiceService.On("VoidInvoice", mock.Anything, invoiceID, suite.operatorID).
		Return(nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/void", nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestListInvoices_KindFilter() {
	expected := &dto.ListInvoicesResponse{Invoices: []dto.InvoiceResponse{}}
	suite.mockInvoiceService.On("ListInvoices", mock.Anything,
		mock.MatchedBy(func(p dto.ListInvoicesParams) bool {
			return p.Kind != nil && *p.Kind == domain.SalesInvoice && p.Limit == 10
		})).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/invoices?kind=SALES&limit=10", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestListInvoices_BadKind() {
	w := suite.doJSON(http.MethodGet, "/api/v1/invoices?kind=QUOTE", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockInvoiceService.AssertNotCalled(suite.T(), "ListInvoices")
}

func (suite *LedgerHandlerTestSuite) TestAdjustStock_InsufficientStock() {
	reqBody := dto.AdjustStockRequest{
		EntryID:  uuid.NewString(),
		Quantity: decimal.NewFromInt(-50),
	}
	suite.mockStockService.On("AdjustStock", mock.Anything, mock.Anything, suite.operatorID).
		Return(nil, fmt.Errorf("entry would go negative: %w", apperrors.ErrInsufficientStock)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/stock/adjustments", reqBody)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockStockService.AssertExpectations(suite.T())
}

func TestLedgerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
