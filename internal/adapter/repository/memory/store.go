// Package memory implements the repository contracts over in-process
// maps guarded by a single mutex. The mutex linearizes postings, which
// is the same isolation contract the postgres implementation gets from
// row locks, so the settlement semantics are identical. Used by tests
// and local development.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/domain"
)

type Store struct {
	mu sync.Mutex

	accounts      map[string]domain.Account
	transactions  map[string]domain.Transaction
	invoices      map[string]domain.Invoice
	orders        map[string]domain.Order
	products      map[string]domain.Product
	companies     map[string]domain.Company
	links         map[string]domain.PaymentLink
	notifications []domain.Notification
	events        []domain.OutboxEvent
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
		invoices:     make(map[string]domain.Invoice),
		orders:       make(map[string]domain.Order),
		products:     make(map[string]domain.Product),
		companies:    make(map[string]domain.Company),
		links:        make(map[string]domain.PaymentLink),
	}
}

// applyPosting mirrors the postgres posting unit. Callers must hold mu;
// any returned error leaves the store untouched.
func (s *Store) applyPosting(posting domain.Posting, now time.Time) (domain.Transaction, error) {
	payer, ok := s.accounts[posting.PayerID]
	if !ok {
		return domain.Transaction{}, domain.ErrAccountNotFound
	}
	receiver, ok := s.accounts[posting.ReceiverID]
	if !ok {
		return domain.Transaction{}, domain.ErrAccountNotFound
	}
	if !payer.IsActive || !receiver.IsActive {
		return domain.Transaction{}, domain.ErrAccountInactive
	}
	if !posting.SkipDebit && payer.WalletBalance.LessThan(posting.Amount) {
		return domain.Transaction{}, domain.ErrInsufficientFunds
	}

	if !posting.SkipDebit {
		payer.WalletBalance = payer.WalletBalance.Sub(posting.Amount)
		payer.UpdatedAt = now
		s.accounts[payer.ID] = payer
	}
	receiver = s.accounts[posting.ReceiverID]
	receiver.WalletBalance = receiver.WalletBalance.Add(posting.Amount)
	receiver.UpdatedAt = now
	s.accounts[receiver.ID] = receiver

	txn := s.insertTransaction(posting, domain.TransactionStatusCompleted, now)
	s.appendEvents(posting.Events, now)

	return txn, nil
}

func (s *Store) insertTransaction(posting domain.Posting, status domain.TransactionStatus, now time.Time) domain.Transaction {
	txn := domain.Transaction{
		ID:          posting.TransactionID,
		PayerID:     posting.PayerID,
		ReceiverID:  posting.ReceiverID,
		CompanyID:   posting.CompanyID,
		Amount:      posting.Amount,
		Type:        posting.Type,
		Status:      status,
		SourceApp:   posting.SourceApp,
		Description: posting.Description,
		Metadata:    posting.Metadata,
		CreatedAt:   now,
	}
	if status == domain.TransactionStatusCompleted {
		processedAt := now
		txn.ProcessedAt = &processedAt
	}
	s.transactions[txn.ID] = txn
	return txn
}

func (s *Store) appendEvents(events []domain.OutboxEvent, now time.Time) {
	for _, event := range events {
		event.ID = uuid.NewString()
		event.CreatedAt = now
		s.events = append(s.events, event)
	}
}

// Seed helpers for wiring fixtures without going through settlements.

func (s *Store) SeedAccount(account domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
}

func (s *Store) SeedCompany(company domain.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.ID] = company
}

func (s *Store) SeedInvoice(invoice domain.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[invoice.ID] = invoice
}

func (s *Store) SeedOrder(order domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
}

func (s *Store) SeedProduct(product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
}

// Inspection helpers.

func (s *Store) Account(id string) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	return account, ok
}

func (s *Store) Invoice(id string) (domain.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.invoices[id]
	return invoice, ok
}

func (s *Store) Order(id string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	return order, ok
}

func (s *Store) Product(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	return product, ok
}

func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Transaction, 0, len(s.transactions))
	for _, txn := range s.transactions {
		out = append(out, txn)
	}
	return out
}

func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *Store) Events() []domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OutboxEvent, len(s.events))
	copy(out, s.events)
	return out
}

// TotalBalance sums every wallet; the conservation property checks it
// never changes except by top-up credits.
func (s *Store) TotalBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, account := range s.accounts {
		total = total.Add(account.WalletBalance)
	}
	return total
}
