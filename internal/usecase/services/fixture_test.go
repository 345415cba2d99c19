package services_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/adapter/repository/memory"
	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/gate"
	"github.com/api-sage/settlement-core/internal/usecase/services"
)

const testLinkBase = "https://pay.test/l"

var testCeiling = decimal.RequireFromString("100000")

type fixture struct {
	store       *memory.Store
	ledgerRepo  *memory.LedgerRepository
	invoices    *memory.InvoiceRepository
	orders      *memory.OrderRepository
	ledger      *services.LedgerService
	settlements *services.SettlementService
	dispatcher  *services.OutboxDispatcher
	reconciler  *services.ReconciliationService
}

func newFixture() *fixture {
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	companies := memory.NewCompanyRepository(store)
	invoices := memory.NewInvoiceRepository(store)
	orders := memory.NewOrderRepository(store)
	products := memory.NewProductRepository(store)
	links := memory.NewPaymentLinkRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	outbox := memory.NewOutboxRepository(store)
	notifications := memory.NewNotificationRepository(store)

	g := gate.Default()

	return &fixture{
		store:      store,
		ledgerRepo: ledgerRepo,
		invoices:   invoices,
		orders:     orders,
		ledger:     services.NewLedgerService(accounts, ledgerRepo, g, testCeiling),
		settlements: services.NewSettlementService(
			accounts, companies, invoices, orders, products, links, ledgerRepo,
			g, testCeiling, testLinkBase,
		),
		dispatcher: services.NewOutboxDispatcher(outbox, notifications, time.Second, 2),
		reconciler: services.NewReconciliationService(ledgerRepo, invoices, orders, time.Second),
	}
}

func (f *fixture) seedAccount(id, email, balance string) {
	f.store.SeedAccount(domain.Account{
		ID:            id,
		Email:         email,
		WalletBalance: decimal.RequireFromString(balance),
		IsActive:      true,
	})
}

func (f *fixture) seedCompany(id, ownerID string) {
	f.store.SeedCompany(domain.Company{ID: id, OwnerID: ownerID, Name: "Co " + id})
}

func (f *fixture) seedInvoice(id, companyID, total string) {
	f.store.SeedInvoice(domain.Invoice{
		ID:        id,
		CompanyID: companyID,
		Total:     decimal.RequireFromString(total),
		Status:    domain.InvoiceStatusSent,
		DueDate:   time.Now().Add(24 * time.Hour),
	})
}

func (f *fixture) seedOrder(id, companyID, customerID, total string, items []domain.LineItem) {
	f.store.SeedOrder(domain.Order{
		ID:         id,
		CompanyID:  companyID,
		CustomerID: customerID,
		Items:      items,
		Total:      decimal.RequireFromString(total),
		Status:     domain.OrderStatusPending,
	})
}

func (f *fixture) seedProduct(id, companyID string, quantity int64) {
	f.store.SeedProduct(domain.Product{
		ID:        id,
		CompanyID: companyID,
		Name:      "Product " + id,
		Quantity:  quantity,
		IsActive:  true,
	})
}

func (f *fixture) balance(accountID string) decimal.Decimal {
	account, _ := f.store.Account(accountID)
	return account.WalletBalance
}
