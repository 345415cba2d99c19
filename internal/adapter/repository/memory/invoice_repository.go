package memory

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type InvoiceRepository struct {
	store *Store
}

func NewInvoiceRepository(store *Store) *InvoiceRepository {
	return &InvoiceRepository{store: store}
}

func (r *InvoiceRepository) Create(_ context.Context, invoice domain.Invoice) (domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	r.store.invoices[invoice.ID] = invoice
	return invoice, nil
}

func (r *InvoiceRepository) GetByID(_ context.Context, id string) (domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	invoice, ok := r.store.invoices[id]
	if !ok {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return invoice, nil
}

func (r *InvoiceRepository) Settle(_ context.Context, settlement domain.InvoiceSettlement) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	invoice, ok := r.store.invoices[settlement.InvoiceID]
	if !ok {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if err := invoice.Payable(settlement.Now); err != nil {
		return domain.Transaction{}, err
	}

	posting := settlement.Posting
	posting.Amount = invoice.Total

	txn, err := r.store.applyPosting(posting, settlement.Now)
	if err != nil {
		return domain.Transaction{}, err
	}

	paidAt := settlement.Now
	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidAt = &paidAt
	invoice.PaymentTransactionID = &txn.ID
	invoice.UpdatedAt = settlement.Now
	r.store.invoices[invoice.ID] = invoice

	return txn, nil
}

func (r *InvoiceRepository) MarkPaid(_ context.Context, invoiceID, transactionID string, paidAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	invoice, ok := r.store.invoices[invoiceID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return false, nil
	}

	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidAt = &paidAt
	invoice.PaymentTransactionID = &transactionID
	invoice.UpdatedAt = paidAt
	r.store.invoices[invoiceID] = invoice
	return true, nil
}
