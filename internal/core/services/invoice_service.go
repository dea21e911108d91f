package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/internal/dto"
	"github.com/mhgaber/dukan_pos_backend/internal/middleware"
	"github.com/mhgaber/dukan_pos_backend/internal/utils/accounting"
)

var (
	ErrCounterpartyKind = errors.New("counterparty account kind does not match invoice kind")
	ErrNegativePaid     = errors.New("paid amount must not be negative")
	ErrEmptyInvoice     = errors.New("invoice must carry at least one line to post")
)

// InvoiceSettings carries the system-level invoice defaults. Tax policy is a
// runtime setting applied at create time; once a draft exists its policy is
// frozen onto the header and survives later settings changes.
type InvoiceSettings struct {
	DefaultTaxRate     decimal.Decimal
	TaxOnNetOfDiscount bool
	AutoPost           bool
}

type invoiceService struct {
	invoiceRepo  portsrepo.InvoiceRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	movementRepo portsrepo.MovementRepositoryFacade
	stockRepo    portsrepo.StockRepositoryFacade
	settings     InvoiceSettings
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	movementRepo portsrepo.MovementRepositoryFacade,
	stockRepo portsrepo.StockRepositoryFacade,
	settings InvoiceSettings,
) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		stockRepo:    stockRepo,
		settings:     settings,
	}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// counterpartyKindFor maps an invoice kind to the account kind it settles
// against.
func counterpartyKindFor(kind domain.InvoiceKind) domain.AccountKind {
	if kind == domain.PurchaseInvoice {
		return domain.Supplier
	}
	return domain.Customer
}

// fetchCounterparty loads the counterparty account and checks it is active and
// of the kind the invoice side requires.
func (s *invoiceService) fetchCounterparty(ctx context.Context, kind domain.InvoiceKind, accountID string) (*domain.LedgerAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch counterparty %s: %w", accountID, err)
	}
	if account.Kind != counterpartyKindFor(kind) {
		return nil, fmt.Errorf("%w: account %s is %s, invoice is %s", ErrCounterpartyKind, accountID, account.Kind, kind)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrAccountInactive, accountID)
	}
	return account, nil
}

// buildLines turns line requests into domain lines with computed net amounts.
func buildLines(invoiceID string, reqs []dto.InvoiceLineRequest) ([]domain.InvoiceLine, error) {
	lines := make([]domain.InvoiceLine, 0, len(reqs))
	for i, lr := range reqs {
		if lr.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: line %d quantity %s", apperrors.ErrValidation, i+1, lr.Quantity)
		}
		if lr.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: line %d unit price %s", apperrors.ErrValidation, i+1, lr.UnitPrice)
		}
		if lr.DiscountAmount.IsNegative() {
			return nil, fmt.Errorf("%w: line %d discount %s", apperrors.ErrValidation, i+1, lr.DiscountAmount)
		}
		lines = append(lines, domain.InvoiceLine{
			LineID:         uuid.NewString(),
			InvoiceID:      invoiceID,
			ProductID:      lr.ProductID,
			Unit:           lr.Unit,
			Quantity:       lr.Quantity,
			UnitPrice:      lr.UnitPrice,
			DiscountAmount: lr.DiscountAmount,
			NetAmount:      accounting.LineNetAmount(lr.Quantity, lr.UnitPrice, lr.DiscountAmount),
		})
	}
	return lines, nil
}

// policyOf reads the frozen settlement policy off an invoice header.
func policyOf(inv *domain.Invoice) accounting.SettlementPolicy {
	return accounting.SettlementPolicy{
		HeaderDiscount:     inv.HeaderDiscount,
		HeaderDiscountType: inv.HeaderDiscountType,
		TaxRate:            inv.TaxRate,
		TaxOnNetOfDiscount: inv.TaxOnNetOfDiscount,
	}
}

// CreateInvoice creates a draft invoice with computed totals, then posts it
// immediately when the auto-post setting is on.
// Implements portssvc.InvoiceSvcFacade.
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.PaidAmount.IsNegative() {
		return nil, fmt.Errorf("%w: got %s", ErrNegativePaid, req.PaidAmount)
	}
	if _, err := s.fetchCounterparty(ctx, req.Kind, req.CounterpartyID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invoiceID := uuid.NewString()

	lines, err := buildLines(invoiceID, req.Lines)
	if err != nil {
		return nil, err
	}

	taxRate := s.settings.DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	taxOnNet := s.settings.TaxOnNetOfDiscount
	if req.TaxOnNetOfDiscount != nil {
		taxOnNet = *req.TaxOnNetOfDiscount
	}
	discountType := req.HeaderDiscountType
	if discountType == "" {
		discountType = domain.DiscountAmount
	}

	invoice := domain.Invoice{
		InvoiceID:          invoiceID,
		Kind:               req.Kind,
		CounterpartyID:     req.CounterpartyID,
		InvoiceDate:        req.InvoiceDate,
		Status:             domain.Draft,
		HeaderDiscount:     req.HeaderDiscount,
		HeaderDiscountType: discountType,
		TaxRate:            taxRate,
		TaxOnNetOfDiscount: taxOnNet,
		Lines:              lines,
		AuditFields:        domain.NewAuditFields(creatorUserID, now),
	}
	accounting.ComputeSettlement(lines, policyOf(&invoice), req.PaidAmount).Apply(&invoice)

	saved, err := s.invoiceRepo.SaveInvoice(ctx, invoice)
	if err != nil {
		logger.Error("Failed to save invoice", slog.String("kind", string(req.Kind)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	logger.Info("Invoice drafted",
		slog.String("invoice_id", saved.InvoiceID),
		slog.String("invoice_number", saved.InvoiceNumber),
		slog.String("net_total", saved.NetTotal.String()),
	)

	if s.settings.AutoPost {
		return s.PostInvoice(ctx, saved.InvoiceID, creatorUserID)
	}
	return saved, nil
}

// UpdateDraftInvoice replaces the editable fields of a draft and recomputes
// totals. Any status other than DRAFT is rejected; posted headers are frozen.
// Implements portssvc.InvoiceSvcFacade.
func (s *invoiceService) UpdateDraftInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	if invoice.Status != domain.Draft {
		return nil, fmt.Errorf("%w: cannot edit %s invoice %s", apperrors.ErrInvalidStateTransition, invoice.Status, invoiceID)
	}

	if req.CounterpartyID != nil {
		if _, err := s.fetchCounterparty(ctx, invoice.Kind, *req.CounterpartyID); err != nil {
			return nil, err
		}
		invoice.CounterpartyID = *req.CounterpartyID
	}
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = *req.InvoiceDate
	}
	if req.Lines != nil {
		lines, err := buildLines(invoice.InvoiceID, req.Lines)
		if err != nil {
			return nil, err
		}
		invoice.Lines = lines
	}
	if req.HeaderDiscount != nil {
		invoice.HeaderDiscount = *req.HeaderDiscount
	}
	if req.HeaderDiscountType != nil {
		invoice.HeaderDiscountType = *req.HeaderDiscountType
	}
	if req.TaxRate != nil {
		invoice.TaxRate = *req.TaxRate
	}
	if req.TaxOnNetOfDiscount != nil {
		invoice.TaxOnNetOfDiscount = *req.TaxOnNetOfDiscount
	}
	paid := invoice.PaidAmount
	if req.PaidAmount != nil {
		if req.PaidAmount.IsNegative() {
			return nil, fmt.Errorf("%w: got %s", ErrNegativePaid, *req.PaidAmount)
		}
		paid = *req.PaidAmount
	}

	accounting.ComputeSettlement(invoice.Lines, policyOf(invoice), paid).Apply(invoice)
	invoice.Touch(userID, time.Now().UTC())

	if err := s.invoiceRepo.UpdateDraftInvoice(ctx, *invoice); err != nil {
		logger.Error("Failed to update draft invoice", slog.String("invoice_id", invoiceID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update draft invoice %s: %w", invoiceID, err)
	}

	logger.Info("Draft invoice updated", slog.String("invoice_id", invoiceID))
	return invoice, nil
}

// PostInvoice transitions Draft -> Posted. Totals are recomputed from the
// stored lines, the unpaid portion is booked onto the counterparty balance and
// every line moves stock; all of it commits as one unit of work.
// Implements portssvc.InvoiceSvcFacade.
func (s *invoiceService) PostInvoice(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	if !invoice.CanTransitionTo(domain.Posted) {
		return nil, fmt.Errorf("%w: cannot post %s invoice %s", apperrors.ErrInvalidStateTransition, invoice.Status, invoiceID)
	}
	if len(invoice.Lines) == 0 {
		return nil, fmt.Errorf("%w: invoice %s", ErrEmptyInvoice, invoiceID)
	}
	if _, err := s.fetchCounterparty(ctx, invoice.Kind, invoice.CounterpartyID); err != nil {
		return nil, err
	}

	// Totals are authoritative only at posting time; recompute from the lines
	// rather than trusting whatever the draft last stored.
	accounting.ComputeSettlement(invoice.Lines, policyOf(invoice), invoice.PaidAmount).Apply(invoice)

	now := time.Now().UTC()
	reference := domain.Reference{Kind: invoice.ReferenceKind(), ID: invoice.InvoiceID}

	// The unpaid remainder becomes the counterparty's debt movement. A fully
	// paid invoice books nothing on the ledger.
	var ledgerMovement *domain.MovementRecord
	if invoice.RemainingAmount.IsPositive() {
		ledgerMovement = &domain.MovementRecord{
			MovementID:  uuid.NewString(),
			AccountID:   invoice.CounterpartyID,
			Amount:      invoice.RemainingAmount,
			Type:        domain.Income,
			Description: fmt.Sprintf("Invoice %s remaining amount", invoice.InvoiceNumber),
			Reference:   reference,
			AuditFields: domain.NewAuditFields(userID, now),
		}
	}

	direction := invoice.StockDirection()
	stockMovements := make([]domain.StockMovement, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		entry, err := s.stockRepo.FindEntryByProduct(ctx, line.ProductID, "")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stock entry for product %s: %w", line.ProductID, err)
		}
		if direction == domain.StockOut && entry.Quantity.LessThan(line.Quantity) {
			return nil, fmt.Errorf("%w: product %s has %s, invoice needs %s",
				apperrors.ErrInsufficientStock, line.ProductID, entry.Quantity, line.Quantity)
		}
		stockMovements = append(stockMovements, domain.StockMovement{
			MovementID:  uuid.NewString(),
			EntryID:     entry.EntryID,
			Quantity:    line.Quantity,
			Type:        direction,
			Description: fmt.Sprintf("Invoice %s", invoice.InvoiceNumber),
			Reference:   reference,
			AuditFields: domain.NewAuditFields(userID, now),
		})
	}

	invoice.Status = domain.Posted
	invoice.IsPosted = true
	invoice.PostedAt = &now
	invoice.Touch(userID, now)

	posted, err := s.invoiceRepo.PostInvoice(ctx, *invoice, ledgerMovement, stockMovements)
	if err != nil {
		logger.Error("Failed to post invoice", slog.String("invoice_id", invoiceID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to post invoice %s: %w", invoiceID, err)
	}

	logger.Info("Invoice posted",
		slog.String("invoice_id", posted.InvoiceID),
		slog.String("invoice_number", posted.InvoiceNumber),
		slog.String("remaining", posted.RemainingAmount.String()),
	)
	return posted, nil
}

// VoidInvoice transitions Posted -> Voided by reversing every ledger and stock
// movement posting created, in one unit of work. The movement set is resolved
// by reference, never reconstructed from the totals, so a void after partial
// manual reversals still removes exactly what remains.
// Implements portssvc.InvoiceSvcFacade.
func (s *invoiceService) VoidInvoice(ctx context.Context, invoiceID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	if !invoice.CanTransitionTo(domain.Voided) {
		return fmt.Errorf("%w: cannot void %s invoice %s", apperrors.ErrInvalidStateTransition, invoice.Status, invoiceID)
	}

	reference := domain.Reference{Kind: invoice.ReferenceKind(), ID: invoice.InvoiceID}

	ledgerMovements, err := s.movementRepo.FindMovementsByReference(ctx, reference)
	if err != nil {
		return fmt.Errorf("failed to resolve ledger movements of invoice %s: %w", invoiceID, err)
	}
	ledgerReversals := make([]portsrepo.BalanceReversal, 0, len(ledgerMovements))
	for _, m := range ledgerMovements {
		inverse, err := accounting.InverseDelta(m)
		if err != nil {
			return fmt.Errorf("%w: movement %s of invoice %s", apperrors.ErrAmbiguousReversal, m.MovementID, invoiceID)
		}
		ledgerReversals = append(ledgerReversals, portsrepo.BalanceReversal{
			MovementID:   m.MovementID,
			AccountID:    m.AccountID,
			InverseDelta: inverse,
		})
	}

	stockMovements, err := s.stockRepo.FindStockMovementsByReference(ctx, reference)
	if err != nil {
		return fmt.Errorf("failed to resolve stock movements of invoice %s: %w", invoiceID, err)
	}
	stockReversals := make([]portsrepo.QuantityReversal, 0, len(stockMovements))
	for _, m := range stockMovements {
		stockReversals = append(stockReversals, portsrepo.QuantityReversal{
			MovementID:   m.MovementID,
			EntryID:      m.EntryID,
			InverseDelta: m.SignedQuantity().Neg(),
		})
	}

	now := time.Now().UTC()
	invoice.Status = domain.Voided
	invoice.VoidedAt = &now
	invoice.Touch(userID, now)

	if err := s.invoiceRepo.VoidInvoice(ctx, *invoice, ledgerReversals, stockReversals); err != nil {
		logger.Error("Failed to void invoice", slog.String("invoice_id", invoiceID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to void invoice %s: %w", invoiceID, err)
	}

	logger.Info("Invoice voided",
		slog.String("invoice_id", invoiceID),
		slog.Int("ledger_reversals", len(ledgerReversals)),
		slog.Int("stock_reversals", len(stockReversals)),
	)
	return nil
}

// GetInvoiceByID retrieves an invoice with its lines.
// Implements portssvc.InvoiceSvcFacade.
func (s *invoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

// ListInvoices retrieves invoices with optional kind filter and pagination.
// Implements portssvc.InvoiceSvcFacade.
func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	invoices, nextToken, err := s.invoiceRepo.ListInvoices(ctx, params.Kind, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	responses := make([]dto.InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = dto.ToInvoiceResponse(&invoices[i])
	}
	return &dto.ListInvoicesResponse{
		Invoices:  responses,
		NextToken: nextToken,
	}, nil
}
