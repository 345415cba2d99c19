package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/logger"
)

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice domain.Invoice) (domain.Invoice, error) {
	logger.Info("invoice repository create", logger.Fields{
		"invoiceId": invoice.ID,
		"companyId": invoice.CompanyID,
		"total":     invoice.Total.String(),
	})

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		const query = `
INSERT INTO invoices (
	id, company_id, client_email, subtotal, tax, total, status, due_date
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at`

		if err := tx.QueryRowContext(
			ctx,
			query,
			invoice.ID,
			invoice.CompanyID,
			invoice.ClientEmail,
			invoice.Subtotal,
			invoice.Tax,
			invoice.Total,
			invoice.Status,
			invoice.DueDate,
		).Scan(&invoice.CreatedAt, &invoice.UpdatedAt); err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		const itemQuery = `
INSERT INTO invoice_items (invoice_id, product_id, name, quantity, rate, total)
VALUES ($1, $2, $3, $4, $5, $6)`

		for _, item := range invoice.Items {
			productID := sql.NullString{String: item.ProductID, Valid: item.ProductID != ""}
			if _, err := tx.ExecContext(ctx, itemQuery, invoice.ID, productID, item.Name, item.Quantity, item.Rate, item.Total); err != nil {
				return fmt.Errorf("insert invoice item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("invoice repository create failed", err, logger.Fields{
			"invoiceId": invoice.ID,
		})
		return domain.Invoice{}, err
	}

	return invoice, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	const query = `
SELECT id, company_id, client_email, subtotal, tax, total, status, due_date, paid_at, payment_transaction_id, created_at, updated_at
FROM invoices
WHERE id = $1`

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Invoice{}, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.Items = items

	return invoice, nil
}

// Settle is the whole settlement as one transaction: the invoice row is
// locked, its status and due date re-checked, the ledger posting applied
// and the paid patch written before anything commits.
func (r *InvoiceRepository) Settle(ctx context.Context, settlement domain.InvoiceSettlement) (domain.Transaction, error) {
	logger.Info("invoice repository settle", logger.Fields{
		"invoiceId": settlement.InvoiceID,
		"payerId":   settlement.Posting.PayerID,
	})

	var txn domain.Transaction
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		const query = `
SELECT id, company_id, client_email, subtotal, tax, total, status, due_date, paid_at, payment_transaction_id, created_at, updated_at
FROM invoices
WHERE id = $1
FOR UPDATE`

		invoice, err := scanInvoice(tx.QueryRowContext(ctx, query, settlement.InvoiceID))
		if err != nil {
			return err
		}
		if err := invoice.Payable(settlement.Now); err != nil {
			return err
		}

		// The locked row's total is authoritative.
		posting := settlement.Posting
		posting.Amount = invoice.Total

		txn, err = applyPosting(ctx, tx, posting, settlement.Now)
		if err != nil {
			return err
		}

		const patch = `
UPDATE invoices
SET status = 'paid',
    paid_at = $2,
    payment_transaction_id = $3,
    updated_at = NOW()
WHERE id = $1`
		if _, err := tx.ExecContext(ctx, patch, settlement.InvoiceID, settlement.Now, txn.ID); err != nil {
			return fmt.Errorf("mark invoice paid: %w", err)
		}

		return nil
	})
	if err != nil {
		logger.Error("invoice repository settle failed", err, logger.Fields{
			"invoiceId": settlement.InvoiceID,
		})
		return domain.Transaction{}, err
	}

	logger.Info("invoice repository settle success", logger.Fields{
		"invoiceId":     settlement.InvoiceID,
		"transactionId": txn.ID,
	})
	return txn, nil
}

func (r *InvoiceRepository) MarkPaid(ctx context.Context, invoiceID, transactionID string, paidAt time.Time) (bool, error) {
	const query = `
UPDATE invoices
SET status = 'paid',
    paid_at = $3,
    payment_transaction_id = $2,
    updated_at = NOW()
WHERE id = $1
  AND status <> 'paid'`

	result, err := r.db.ExecContext(ctx, query, invoiceID, transactionID, paidAt)
	if err != nil {
		return false, fmt.Errorf("mark invoice paid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark invoice paid rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return true, nil
	}

	// No-op either because the invoice is already paid or missing.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, invoiceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check invoice exists: %w", err)
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

func (r *InvoiceRepository) loadItems(ctx context.Context, invoiceID string) ([]domain.LineItem, error) {
	const query = `
SELECT id, COALESCE(product_id, ''), name, quantity, rate, total
FROM invoice_items
WHERE invoice_id = $1
ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("load invoice items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Quantity, &item.Rate, &item.Total); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items: %w", err)
	}

	return items, nil
}

func scanInvoice(scanner interface{ Scan(dest ...any) error }) (domain.Invoice, error) {
	var (
		invoice domain.Invoice
		paidAt  sql.NullTime
		txnID   sql.NullString
	)

	if err := scanner.Scan(
		&invoice.ID,
		&invoice.CompanyID,
		&invoice.ClientEmail,
		&invoice.Subtotal,
		&invoice.Tax,
		&invoice.Total,
		&invoice.Status,
		&invoice.DueDate,
		&paidAt,
		&txnID,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invoice{}, domain.ErrNotFound
		}
		return domain.Invoice{}, fmt.Errorf("scan invoice: %w", err)
	}

	if paidAt.Valid {
		value := paidAt.Time
		invoice.PaidAt = &value
	}
	if txnID.Valid {
		value := txnID.String
		invoice.PaymentTransactionID = &value
	}

	return invoice, nil
}
