package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, kind *domain.AccountKind, limit int, nextToken *string) ([]domain.LedgerAccount, *string, error) {
	args := m.Called(ctx, kind, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		v := args.Get(1).(string)
		token = &v
	}
	return args.Get(0).([]domain.LedgerAccount), token, args.Error(2)
}

func (m *MockAccountRepository) CountMovementsForAccount(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.LedgerAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountActive(ctx context.Context, accountID string, active bool, userID string, at time.Time) error {
	args := m.Called(ctx, accountID, active, userID, at)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsInTx(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, expectedVersions map[string]int64, userID string, at time.Time) error {
	args := m.Called(ctx, tx, changes, expectedVersions, userID, at)
	return args.Error(0)
}

// --- Mock MovementRepository ---

type MockMovementRepository struct {
	mock.Mock
}

var _ portsrepo.MovementRepositoryFacade = (*MockMovementRepository)(nil)

func (m *MockMovementRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.MovementRecord, error) {
	args := m.Called(ctx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovementRecord), args.Error(1)
}

func (m *MockMovementRepository) FindMovementsByReference(ctx context.Context, ref domain.Reference) ([]domain.MovementRecord, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MovementRecord), args.Error(1)
}

func (m *MockMovementRepository) FindPairLeg(ctx context.Context, pairID string, excludeMovementID string) (*domain.MovementRecord, error) {
	args := m.Called(ctx, pairID, excludeMovementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovementRecord), args.Error(1)
}

func (m *MockMovementRepository) ListMovementsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.MovementRecord, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		v := args.Get(1).(string)
		token = &v
	}
	return args.Get(0).([]domain.MovementRecord), token, args.Error(2)
}

func (m *MockMovementRepository) SaveMovement(ctx context.Context, movement domain.MovementRecord) (*domain.MovementRecord, error) {
	args := m.Called(ctx, movement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovementRecord), args.Error(1)
}

func (m *MockMovementRepository) SaveTransferPair(ctx context.Context, out domain.MovementRecord, in domain.MovementRecord) (*domain.MovementRecord, *domain.MovementRecord, error) {
	args := m.Called(ctx, out, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.MovementRecord), args.Get(1).(*domain.MovementRecord), args.Error(2)
}

func (m *MockMovementRepository) DeleteMovementWithAdjustment(ctx context.Context, movementID string, accountID string, inverseDelta decimal.Decimal, userID string, at time.Time) error {
	args := m.Called(ctx, movementID, accountID, inverseDelta, userID, at)
	return args.Error(0)
}

func (m *MockMovementRepository) InsertMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.MovementRecord) error {
	args := m.Called(ctx, tx, movements)
	return args.Error(0)
}

func (m *MockMovementRepository) DeleteMovementsInTx(ctx context.Context, tx pgx.Tx, movementIDs []string) error {
	args := m.Called(ctx, tx, movementIDs)
	return args.Error(0)
}

// --- Mock StockRepository ---

type MockStockRepository struct {
	mock.Mock
}

var _ portsrepo.StockRepositoryFacade = (*MockStockRepository)(nil)

func (m *MockStockRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.StockEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockEntry), args.Error(1)
}

func (m *MockStockRepository) FindEntryByProduct(ctx context.Context, productID, warehouseID string) (*domain.StockEntry, error) {
	args := m.Called(ctx, productID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockEntry), args.Error(1)
}

func (m *MockStockRepository) FindStockMovementsByReference(ctx context.Context, ref domain.Reference) ([]domain.StockMovement, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockStockRepository) ListMovementsByEntry(ctx context.Context, entryID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	args := m.Called(ctx, entryID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		v := args.Get(1).(string)
		token = &v
	}
	return args.Get(0).([]domain.StockMovement), token, args.Error(2)
}

func (m *MockStockRepository) SaveStockEntry(ctx context.Context, entry domain.StockEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockStockRepository) SaveStockMovement(ctx context.Context, movement domain.StockMovement) (*domain.StockMovement, error) {
	args := m.Called(ctx, movement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockMovement), args.Error(1)
}

func (m *MockStockRepository) FindEntriesByIDsInTx(ctx context.Context, tx pgx.Tx, entryIDs []string) (map[string]domain.StockEntry, error) {
	args := m.Called(ctx, tx, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.StockEntry), args.Error(1)
}

func (m *MockStockRepository) InsertStockMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement) error {
	args := m.Called(ctx, tx, movements)
	return args.Error(0)
}

func (m *MockStockRepository) DeleteStockMovementsInTx(ctx context.Context, tx pgx.Tx, movementIDs []string) error {
	args := m.Called(ctx, tx, movementIDs)
	return args.Error(0)
}

func (m *MockStockRepository) ApplyQuantityChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, expectedVersions map[string]int64, userID string, at time.Time) error {
	args := m.Called(ctx, tx, changes, expectedVersions, userID, at)
	return args.Error(0)
}

// --- Mock InvoiceRepository ---

type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryFacade = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoices(ctx context.Context, kind *domain.InvoiceKind, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	args := m.Called(ctx, kind, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		v := args.Get(1).(string)
		token = &v
	}
	return args.Get(0).([]domain.Invoice), token, args.Error(2)
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateDraftInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) PostInvoice(ctx context.Context, invoice domain.Invoice, ledgerMovement *domain.MovementRecord, stockMovements []domain.StockMovement) (*domain.Invoice, error) {
	args := m.Called(ctx, invoice, ledgerMovement, stockMovements)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) VoidInvoice(ctx context.Context, invoice domain.Invoice, ledgerReversals []portsrepo.BalanceReversal, stockReversals []portsrepo.QuantityReversal) error {
	args := m.Called(ctx, invoice, ledgerReversals, stockReversals)
	return args.Error(0)
}
