package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mhgaber/dukan_pos_backend/internal/apperrors"
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
	"github.com/mhgaber/dukan_pos_backend/internal/models"
	"github.com/mhgaber/dukan_pos_backend/internal/utils/mapping"
	"github.com/mhgaber/dukan_pos_backend/internal/utils/pagination"
)

const invoiceColumns = `invoice_id, kind, invoice_number, counterparty_id, invoice_date, status, is_posted, header_discount, header_discount_type, tax_rate, tax_on_net_of_discount, sub_total, discount_total, tax_amount, net_total, paid_amount, remaining_amount, posted_at, voided_at, created_at, created_by, last_updated_at, last_updated_by`

const invoiceLineColumns = `line_id, invoice_id, product_id, unit, quantity, unit_price, discount_amount, net_amount`

type PgxInvoiceRepository struct {
	BaseRepository
	accountRepo  portsrepo.AccountTxOperator
	movementRepo portsrepo.MovementTxOperator
	stockRepo    portsrepo.StockTxOperator
	numbering    portsrepo.NumberingRepository
}

// newPgxInvoiceRepository creates the invoice repository. The sibling tx
// operators are injected so posting and voiding commit the invoice row, the
// movement records and the balance/quantity updates in one transaction.
func newPgxInvoiceRepository(
	pool *pgxpool.Pool,
	accountRepo portsrepo.AccountTxOperator,
	movementRepo portsrepo.MovementTxOperator,
	stockRepo portsrepo.StockTxOperator,
	numbering portsrepo.NumberingRepository,
) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		movementRepo:   movementRepo,
		stockRepo:      stockRepo,
		numbering:      numbering,
	}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

func invoiceScope(kind domain.InvoiceKind) (scope, prefix string) {
	if kind == domain.PurchaseInvoice {
		return portsrepo.ScopePurchaseInvoice, "PIN"
	}
	return portsrepo.ScopeSalesInvoice, "SIN"
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.Kind,
		&m.InvoiceNumber,
		&m.CounterpartyID,
		&m.InvoiceDate,
		&m.Status,
		&m.IsPosted,
		&m.HeaderDiscount,
		&m.HeaderDiscountType,
		&m.TaxRate,
		&m.TaxOnNetOfDiscount,
		&m.SubTotal,
		&m.DiscountTotal,
		&m.TaxAmount,
		&m.NetTotal,
		&m.PaidAmount,
		&m.RemainingAmount,
		&m.PostedAt,
		&m.VoidedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	invoice := mapping.ToDomainInvoice(m)
	return &invoice, nil
}

func insertInvoiceLinesTx(ctx context.Context, tx pgx.Tx, lines []domain.InvoiceLine) error {
	query := `
		INSERT INTO invoice_lines (` + invoiceLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelInvoiceLine(line)
		var unit sql.NullString
		if m.Unit != "" {
			unit = sql.NullString{String: m.Unit, Valid: true}
		}
		batch.Queue(query, m.LineID, m.InvoiceID, m.ProductID, unit, m.Quantity, m.UnitPrice, m.DiscountAmount, m.NetAmount)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert invoice line: %w", err)
		}
	}
	return nil
}

// SaveInvoice mints the invoice number and inserts the draft header and lines
// in one commit.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	scope, prefix := invoiceScope(invoice.Kind)
	seq, err := r.numbering.NextNumberInTx(ctx, tx, scope)
	if err != nil {
		return nil, err
	}
	invoice.InvoiceNumber = fmt.Sprintf("%s-%06d", prefix, seq)

	m := mapping.ToModelInvoice(invoice)
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err = tx.Exec(ctx, query,
		m.InvoiceID, m.Kind, m.InvoiceNumber, m.CounterpartyID, m.InvoiceDate, m.Status, m.IsPosted,
		m.HeaderDiscount, m.HeaderDiscountType, m.TaxRate, m.TaxOnNetOfDiscount,
		m.SubTotal, m.DiscountTotal, m.TaxAmount, m.NetTotal, m.PaidAmount, m.RemainingAmount,
		m.PostedAt, m.VoidedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrDuplicate, m.InvoiceID)
		}
		return nil, fmt.Errorf("failed to insert invoice %s: %w", m.InvoiceID, err)
	}

	if err := insertInvoiceLinesTx(ctx, tx, invoice.Lines); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateDraftInvoice replaces the header fields and lines of a draft. The
// header update is conditioned on the row still being DRAFT, so a concurrent
// post or void makes this a no-op failure instead of silently editing a
// frozen document.
func (r *PgxInvoiceRepository) UpdateDraftInvoice(ctx context.Context, invoice domain.Invoice) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelInvoice(invoice)
	query := `
		UPDATE invoices
		SET counterparty_id = $1, invoice_date = $2,
			header_discount = $3, header_discount_type = $4, tax_rate = $5, tax_on_net_of_discount = $6,
			sub_total = $7, discount_total = $8, tax_amount = $9, net_total = $10,
			paid_amount = $11, remaining_amount = $12,
			last_updated_at = $13, last_updated_by = $14
		WHERE invoice_id = $15 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, query,
		m.CounterpartyID, m.InvoiceDate,
		m.HeaderDiscount, m.HeaderDiscountType, m.TaxRate, m.TaxOnNetOfDiscount,
		m.SubTotal, m.DiscountTotal, m.TaxAmount, m.NetTotal,
		m.PaidAmount, m.RemainingAmount,
		m.LastUpdatedAt, m.LastUpdatedBy,
		m.InvoiceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", m.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s is not a draft", apperrors.ErrInvalidStateTransition, m.InvoiceID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1;`, m.InvoiceID); err != nil {
		return fmt.Errorf("failed to clear invoice lines of %s: %w", m.InvoiceID, err)
	}
	if err := insertInvoiceLinesTx(ctx, tx, invoice.Lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// PostInvoice commits the posting effects atomically. The status move is
// conditioned on the row still being DRAFT; the ledger movement gets an
// account-scoped number, the stock movements get STOCK_MOVEMENT numbers, and
// every balance/quantity update runs under its version token.
func (r *PgxInvoiceRepository) PostInvoice(ctx context.Context, invoice domain.Invoice, ledgerMovement *domain.MovementRecord, stockMovements []domain.StockMovement) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelInvoice(invoice)
	statusQuery := `
		UPDATE invoices
		SET status = 'POSTED', is_posted = TRUE, posted_at = $1,
			sub_total = $2, discount_total = $3, tax_amount = $4, net_total = $5,
			paid_amount = $6, remaining_amount = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE invoice_id = $10 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, statusQuery,
		m.PostedAt,
		m.SubTotal, m.DiscountTotal, m.TaxAmount, m.NetTotal,
		m.PaidAmount, m.RemainingAmount,
		m.LastUpdatedAt, m.LastUpdatedBy,
		m.InvoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to post invoice %s: %w", m.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: invoice %s is not a draft", apperrors.ErrInvalidStateTransition, m.InvoiceID)
	}

	if ledgerMovement != nil {
		accounts, err := r.accountRepo.FindAccountsByIDsInTx(ctx, tx, []string{ledgerMovement.AccountID})
		if err != nil {
			return nil, err
		}
		account := accounts[ledgerMovement.AccountID]

		seq, err := r.numbering.NextNumberInTx(ctx, tx, portsrepo.MovementScope(ledgerMovement.AccountID))
		if err != nil {
			return nil, err
		}
		ledgerMovement.TransactionNumber = fmt.Sprintf("%s-%06d", numberPrefix(account.Kind), seq)

		delta, ok := ledgerMovement.SignedAmount()
		if !ok {
			return nil, fmt.Errorf("invoice ledger movement %s has no resolvable direction", ledgerMovement.MovementID)
		}
		if err := r.movementRepo.InsertMovementsInTx(ctx, tx, []domain.MovementRecord{*ledgerMovement}); err != nil {
			return nil, err
		}
		err = r.accountRepo.ApplyBalanceChangesInTx(ctx, tx,
			map[string]decimal.Decimal{ledgerMovement.AccountID: delta},
			map[string]int64{ledgerMovement.AccountID: account.Version},
			invoice.LastUpdatedBy, invoice.LastUpdatedAt,
		)
		if err != nil {
			return nil, err
		}
	}

	if len(stockMovements) > 0 {
		entryIDs := make([]string, 0, len(stockMovements))
		for _, sm := range stockMovements {
			entryIDs = append(entryIDs, sm.EntryID)
		}
		entries, err := r.stockRepo.FindEntriesByIDsInTx(ctx, tx, entryIDs)
		if err != nil {
			return nil, err
		}

		quantityChanges := make(map[string]decimal.Decimal, len(stockMovements))
		expectedVersions := make(map[string]int64, len(stockMovements))
		for i := range stockMovements {
			seq, err := r.numbering.NextNumberInTx(ctx, tx, portsrepo.ScopeStockMovement)
			if err != nil {
				return nil, err
			}
			stockMovements[i].MovementNumber = fmt.Sprintf("STK-%06d", seq)

			entryID := stockMovements[i].EntryID
			quantityChanges[entryID] = quantityChanges[entryID].Add(stockMovements[i].SignedQuantity())
			expectedVersions[entryID] = entries[entryID].Version
		}

		if err := r.stockRepo.InsertStockMovementsInTx(ctx, tx, stockMovements); err != nil {
			return nil, err
		}
		err = r.stockRepo.ApplyQuantityChangesInTx(ctx, tx, quantityChanges, expectedVersions, invoice.LastUpdatedBy, invoice.LastUpdatedAt)
		if err != nil {
			return nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// VoidInvoice commits the voiding effects atomically: the status move is
// conditioned on POSTED, the named movement records are deleted and the
// precomputed inverse deltas applied under version tokens.
func (r *PgxInvoiceRepository) VoidInvoice(ctx context.Context, invoice domain.Invoice, ledgerReversals []portsrepo.BalanceReversal, stockReversals []portsrepo.QuantityReversal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelInvoice(invoice)
	statusQuery := `
		UPDATE invoices
		SET status = 'VOIDED', voided_at = $1, last_updated_at = $2, last_updated_by = $3
		WHERE invoice_id = $4 AND status = 'POSTED';
	`
	tag, err := tx.Exec(ctx, statusQuery, m.VoidedAt, m.LastUpdatedAt, m.LastUpdatedBy, m.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to void invoice %s: %w", m.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s is not posted", apperrors.ErrInvalidStateTransition, m.InvoiceID)
	}

	if len(ledgerReversals) > 0 {
		movementIDs := make([]string, 0, len(ledgerReversals))
		accountIDs := make([]string, 0, len(ledgerReversals))
		balanceChanges := make(map[string]decimal.Decimal, len(ledgerReversals))
		for _, rev := range ledgerReversals {
			movementIDs = append(movementIDs, rev.MovementID)
			if _, seen := balanceChanges[rev.AccountID]; !seen {
				accountIDs = append(accountIDs, rev.AccountID)
			}
			balanceChanges[rev.AccountID] = balanceChanges[rev.AccountID].Add(rev.InverseDelta)
		}

		accounts, err := r.accountRepo.FindAccountsByIDsInTx(ctx, tx, accountIDs)
		if err != nil {
			return err
		}
		expectedVersions := make(map[string]int64, len(accounts))
		for id, acc := range accounts {
			expectedVersions[id] = acc.Version
		}

		if err := r.movementRepo.DeleteMovementsInTx(ctx, tx, movementIDs); err != nil {
			return err
		}
		if err := r.accountRepo.ApplyBalanceChangesInTx(ctx, tx, balanceChanges, expectedVersions, invoice.LastUpdatedBy, invoice.LastUpdatedAt); err != nil {
			return err
		}
	}

	if len(stockReversals) > 0 {
		movementIDs := make([]string, 0, len(stockReversals))
		entryIDs := make([]string, 0, len(stockReversals))
		quantityChanges := make(map[string]decimal.Decimal, len(stockReversals))
		for _, rev := range stockReversals {
			movementIDs = append(movementIDs, rev.MovementID)
			if _, seen := quantityChanges[rev.EntryID]; !seen {
				entryIDs = append(entryIDs, rev.EntryID)
			}
			quantityChanges[rev.EntryID] = quantityChanges[rev.EntryID].Add(rev.InverseDelta)
		}

		entries, err := r.stockRepo.FindEntriesByIDsInTx(ctx, tx, entryIDs)
		if err != nil {
			return err
		}
		expectedVersions := make(map[string]int64, len(entries))
		for id, entry := range entries {
			expectedVersions[id] = entry.Version
		}

		if err := r.stockRepo.DeleteStockMovementsInTx(ctx, tx, movementIDs); err != nil {
			return err
		}
		if err := r.stockRepo.ApplyQuantityChangesInTx(ctx, tx, quantityChanges, expectedVersions, invoice.LastUpdatedBy, invoice.LastUpdatedAt); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// FindInvoiceByID retrieves an invoice with its lines.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	invoice, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}

	lines, err := r.findLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines
	return invoice, nil
}

func (r *PgxInvoiceRepository) findLines(ctx context.Context, invoiceID string) ([]domain.InvoiceLine, error) {
	query := `SELECT ` + invoiceLineColumns + ` FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_id;`
	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of invoice %s: %w", invoiceID, err)
	}
	defer rows.Close()

	var lines []domain.InvoiceLine
	for rows.Next() {
		var m models.InvoiceLine
		var unit sql.NullString
		if err := rows.Scan(&m.LineID, &m.InvoiceID, &m.ProductID, &unit, &m.Quantity, &m.UnitPrice, &m.DiscountAmount, &m.NetAmount); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		m.Unit = unit.String
		lines = append(lines, mapping.ToDomainInvoiceLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading invoice lines: %w", err)
	}
	return lines, nil
}

// ListInvoices retrieves a page of invoices ordered by creation time, newest
// first, optionally filtered by kind. Lines are not populated on listings.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, kind *domain.InvoiceKind, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	args := []interface{}{}
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	conditions := ""
	argPos := 1

	if kind != nil {
		conditions += fmt.Sprintf(" WHERE kind = $%d", argPos)
		args = append(args, string(*kind))
		argPos++
	}
	if nextToken != nil && *nextToken != "" {
		createdAt, lastID, err := pagination.DecodeCursorToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		if conditions == "" {
			conditions = " WHERE"
		} else {
			conditions += " AND"
		}
		conditions += fmt.Sprintf(" (created_at, invoice_id) < ($%d, $%d)", argPos, argPos+1)
		args = append(args, createdAt, lastID)
		argPos += 2
	}

	query += conditions + fmt.Sprintf(" ORDER BY created_at DESC, invoice_id DESC LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, limit)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading invoices: %w", err)
	}

	var token *string
	if len(invoices) > limit {
		invoices = invoices[:limit]
		last := invoices[limit-1]
		t := pagination.EncodeCursorToken(last.CreatedAt, last.InvoiceID)
		token = &t
	}
	return invoices, token, nil
}
