package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	numbering := newPgxNumberingRepository()
	accountRepo := newPgxAccountRepository(dbPool)
	movementRepo := newPgxMovementRepository(dbPool, accountRepo, numbering)
	stockRepo := newPgxStockRepository(dbPool, numbering)
	invoiceRepo := newPgxInvoiceRepository(dbPool, accountRepo, movementRepo, stockRepo, numbering)

	return portsrepo.RepositoryProvider{
		AccountRepo:  accountRepo,
		MovementRepo: movementRepo,
		StockRepo:    stockRepo,
		InvoiceRepo:  invoiceRepo,
	}
}
