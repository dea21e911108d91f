package services

import (
	"github.com/shopspring/decimal"

	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
	portssvc "github.com/mhgaber/dukan_pos_backend/internal/core/ports/services"
	"github.com/mhgaber/dukan_pos_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Ledger = NewLedgerService(repos.MovementRepo, repos.AccountRepo)
	container.Account = NewAccountService(repos.AccountRepo, repos.MovementRepo)
	container.Stock = NewStockService(repos.StockRepo)
	container.Invoice = NewInvoiceService(
		repos.InvoiceRepo,
		repos.AccountRepo,
		repos.MovementRepo,
		repos.StockRepo,
		InvoiceSettings{
			DefaultTaxRate:     decimal.NewFromFloat(cfg.DefaultTaxRate),
			TaxOnNetOfDiscount: cfg.TaxOnNetOfDiscount,
			AutoPost:           cfg.AutoPostInvoices,
		},
	)

	return container
}
