package memory

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.store.orders[order.ID] = order
	return order, nil
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return order, nil
}

func (r *OrderRepository) Settle(_ context.Context, settlement domain.OrderSettlement) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[settlement.OrderID]
	if !ok {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if order.CustomerID != settlement.PayerID {
		return domain.Transaction{}, domain.ErrOwnershipMismatch
	}
	if err := order.Payable(); err != nil {
		return domain.Transaction{}, err
	}

	// Validate the whole item list before touching anything so a losing
	// racer leaves every product unchanged.
	needed := make(map[string]int64, len(order.Items))
	for _, item := range order.Items {
		needed[item.ProductID] += item.Quantity
	}
	for productID, quantity := range needed {
		product, found := r.store.products[productID]
		if !found {
			return domain.Transaction{}, domain.ErrNotFound
		}
		if !product.IsActive || product.Quantity < quantity {
			return domain.Transaction{}, domain.ErrInsufficientStock
		}
	}

	posting := settlement.Posting
	posting.Amount = order.Total

	txn, err := r.store.applyPosting(posting, settlement.Now)
	if err != nil {
		return domain.Transaction{}, err
	}

	for productID, quantity := range needed {
		product := r.store.products[productID]
		product.Quantity -= quantity
		product.UpdatedAt = settlement.Now
		r.store.products[productID] = product
	}

	paidAt := settlement.Now
	order.Status = domain.OrderStatusPaid
	order.PaidAt = &paidAt
	order.PaymentTransactionID = &txn.ID
	order.UpdatedAt = settlement.Now
	r.store.orders[order.ID] = order

	return txn, nil
}

func (r *OrderRepository) MarkPaid(_ context.Context, orderID, transactionID string, paidAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[orderID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if order.Status != domain.OrderStatusPending {
		return false, nil
	}

	order.Status = domain.OrderStatusPaid
	order.PaidAt = &paidAt
	order.PaymentTransactionID = &transactionID
	order.UpdatedAt = paidAt
	r.store.orders[orderID] = order
	return true, nil
}
