package memory

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) Post(_ context.Context, posting domain.Posting) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.applyPosting(posting, time.Now().UTC())
}

func (r *LedgerRepository) PostPending(_ context.Context, posting domain.Posting) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	payer, ok := r.store.accounts[posting.PayerID]
	if !ok {
		return domain.Transaction{}, domain.ErrAccountNotFound
	}
	if !payer.IsActive {
		return domain.Transaction{}, domain.ErrAccountInactive
	}

	if metadata, ok := posting.Metadata.(domain.TopUpMetadata); ok && metadata.ProviderReference != "" {
		if _, found := r.findByReferenceLocked(metadata.ProviderReference); found {
			return domain.Transaction{}, domain.ErrAlreadyProcessed
		}
	}

	return r.store.insertTransaction(posting, domain.TransactionStatusPending, time.Now().UTC()), nil
}

func (r *LedgerRepository) GetTransaction(_ context.Context, id string) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	txn, ok := r.store.transactions[id]
	if !ok {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return txn, nil
}

func (r *LedgerRepository) GetByProviderReference(_ context.Context, reference string) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	txn, found := r.findByReferenceLocked(reference)
	if !found {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return txn, nil
}

func (r *LedgerRepository) CompleteByReference(_ context.Context, reference string, events []domain.OutboxEvent) (domain.Transaction, error) {
	return r.resolveByReference(reference, domain.TransactionStatusCompleted, events)
}

func (r *LedgerRepository) FailByReference(_ context.Context, reference string, events []domain.OutboxEvent) (domain.Transaction, error) {
	return r.resolveByReference(reference, domain.TransactionStatusFailed, events)
}

func (r *LedgerRepository) resolveByReference(reference string, status domain.TransactionStatus, events []domain.OutboxEvent) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	txn, found := r.findByReferenceLocked(reference)
	if !found {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if txn.Status != domain.TransactionStatusPending {
		return domain.Transaction{}, domain.ErrAlreadyProcessed
	}

	now := time.Now().UTC()
	if status == domain.TransactionStatusCompleted {
		receiver, ok := r.store.accounts[txn.ReceiverID]
		if !ok {
			return domain.Transaction{}, domain.ErrAccountNotFound
		}
		if !receiver.IsActive {
			return domain.Transaction{}, domain.ErrAccountInactive
		}
		receiver.WalletBalance = receiver.WalletBalance.Add(txn.Amount)
		receiver.UpdatedAt = now
		r.store.accounts[receiver.ID] = receiver
	}

	txn.Status = status
	txn.ProcessedAt = &now
	r.store.transactions[txn.ID] = txn
	r.store.appendEvents(events, now)

	return txn, nil
}

func (r *LedgerRepository) ListUnreconciled(_ context.Context) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []domain.Transaction
	for _, txn := range r.store.transactions {
		if txn.Status != domain.TransactionStatusCompleted {
			continue
		}
		switch metadata := txn.Metadata.(type) {
		case domain.InvoiceMetadata:
			invoice, ok := r.store.invoices[metadata.InvoiceID]
			if ok && invoice.Status != domain.InvoiceStatusPaid {
				out = append(out, txn)
			}
		case domain.OrderMetadata:
			order, ok := r.store.orders[metadata.OrderID]
			if ok && order.Status != domain.OrderStatusPaid {
				out = append(out, txn)
			}
		}
	}
	return out, nil
}

func (r *LedgerRepository) findByReferenceLocked(reference string) (domain.Transaction, bool) {
	for _, txn := range r.store.transactions {
		if metadata, ok := txn.Metadata.(domain.TopUpMetadata); ok && metadata.ProviderReference == reference {
			return txn, true
		}
	}
	return domain.Transaction{}, false
}
