package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/logger"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	logger.Info("order repository create", logger.Fields{
		"orderId":    order.ID,
		"companyId":  order.CompanyID,
		"customerId": order.CustomerID,
		"total":      order.Total.String(),
	})

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		const query = `
INSERT INTO orders (
	id, company_id, customer_id, subtotal, tax, total, status
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at`

		if err := tx.QueryRowContext(
			ctx,
			query,
			order.ID,
			order.CompanyID,
			order.CustomerID,
			order.Subtotal,
			order.Tax,
			order.Total,
			order.Status,
		).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		const itemQuery = `
INSERT INTO order_items (order_id, product_id, name, quantity, rate, total)
VALUES ($1, $2, $3, $4, $5, $6)`

		for _, item := range order.Items {
			if _, err := tx.ExecContext(ctx, itemQuery, order.ID, item.ProductID, item.Name, item.Quantity, item.Rate, item.Total); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("order repository create failed", err, logger.Fields{
			"orderId": order.ID,
		})
		return domain.Order{}, err
	}

	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	const query = `
SELECT id, company_id, customer_id, subtotal, tax, total, status, paid_at, payment_transaction_id, created_at, updated_at
FROM orders
WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Order{}, err
	}

	items, err := loadOrderItems(ctx, r.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

// Settle locks the order, its products and the two accounts in one
// transaction. Stock sufficiency is re-checked over the full item list
// under the product locks before any decrement, so a losing racer fails
// with nothing applied.
func (r *OrderRepository) Settle(ctx context.Context, settlement domain.OrderSettlement) (domain.Transaction, error) {
	logger.Info("order repository settle", logger.Fields{
		"orderId": settlement.OrderID,
		"payerId": settlement.PayerID,
	})

	var txn domain.Transaction
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		const query = `
SELECT id, company_id, customer_id, subtotal, tax, total, status, paid_at, payment_transaction_id, created_at, updated_at
FROM orders
WHERE id = $1
FOR UPDATE`

		order, err := scanOrder(tx.QueryRowContext(ctx, query, settlement.OrderID))
		if err != nil {
			return err
		}
		if order.CustomerID != settlement.PayerID {
			return domain.ErrOwnershipMismatch
		}
		if err := order.Payable(); err != nil {
			return err
		}

		items, err := loadOrderItems(ctx, tx, settlement.OrderID)
		if err != nil {
			return err
		}

		if err := decrementStock(ctx, tx, items); err != nil {
			return err
		}

		posting := settlement.Posting
		posting.Amount = order.Total

		txn, err = applyPosting(ctx, tx, posting, settlement.Now)
		if err != nil {
			return err
		}

		const patch = `
UPDATE orders
SET status = 'paid',
    paid_at = $2,
    payment_transaction_id = $3,
    updated_at = NOW()
WHERE id = $1`
		if _, err := tx.ExecContext(ctx, patch, settlement.OrderID, settlement.Now, txn.ID); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}

		return nil
	})
	if err != nil {
		logger.Error("order repository settle failed", err, logger.Fields{
			"orderId": settlement.OrderID,
		})
		return domain.Transaction{}, err
	}

	logger.Info("order repository settle success", logger.Fields{
		"orderId":       settlement.OrderID,
		"transactionId": txn.ID,
	})
	return txn, nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, orderID, transactionID string, paidAt time.Time) (bool, error) {
	const query = `
UPDATE orders
SET status = 'paid',
    paid_at = $3,
    payment_transaction_id = $2,
    updated_at = NOW()
WHERE id = $1
  AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, orderID, transactionID, paidAt)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark order paid rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check order exists: %w", err)
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// decrementStock locks every product on the order in id order, validates
// the whole list, then applies the decrements.
func decrementStock(ctx context.Context, tx *sql.Tx, items []domain.LineItem) error {
	needed := make(map[string]int64, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := needed[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		needed[item.ProductID] += item.Quantity
	}
	sort.Strings(ids)

	const query = `
SELECT id, quantity, is_active
FROM products
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE`

	rows, err := tx.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	type lockedProduct struct {
		quantity int64
		isActive bool
	}
	locked := make(map[string]lockedProduct, len(ids))
	for rows.Next() {
		var id string
		var product lockedProduct
		if err := rows.Scan(&id, &product.quantity, &product.isActive); err != nil {
			return fmt.Errorf("scan locked product: %w", err)
		}
		locked[id] = product
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate locked products: %w", err)
	}

	for _, id := range ids {
		product, found := locked[id]
		if !found {
			return domain.ErrNotFound
		}
		if !product.isActive || product.quantity < needed[id] {
			return domain.ErrInsufficientStock
		}
	}

	const decrement = `
UPDATE products
SET quantity = quantity - $2,
    updated_at = NOW()
WHERE id = $1`

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, decrement, id, needed[id]); err != nil {
			return fmt.Errorf("decrement stock for product %s: %w", id, err)
		}
	}

	return nil
}

type orderQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadOrderItems(ctx context.Context, q orderQueryer, orderID string) ([]domain.LineItem, error) {
	const query = `
SELECT id, product_id, name, quantity, rate, total
FROM order_items
WHERE order_id = $1
ORDER BY id`

	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Quantity, &item.Rate, &item.Total); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func scanOrder(scanner interface{ Scan(dest ...any) error }) (domain.Order, error) {
	var (
		order  domain.Order
		paidAt sql.NullTime
		txnID  sql.NullString
	)

	if err := scanner.Scan(
		&order.ID,
		&order.CompanyID,
		&order.CustomerID,
		&order.Subtotal,
		&order.Tax,
		&order.Total,
		&order.Status,
		&paidAt,
		&txnID,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}

	if paidAt.Valid {
		value := paidAt.Time
		order.PaidAt = &value
	}
	if txnID.Valid {
		value := txnID.String
		order.PaymentTransactionID = &value
	}

	return order, nil
}
