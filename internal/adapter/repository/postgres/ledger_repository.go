package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/logger"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Post(ctx context.Context, posting domain.Posting) (domain.Transaction, error) {
	logger.Info("ledger repository post", logger.Fields{
		"transactionId": posting.TransactionID,
		"payerId":       posting.PayerID,
		"receiverId":    posting.ReceiverID,
		"amount":        posting.Amount.String(),
		"type":          posting.Type,
	})

	var txn domain.Transaction
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		txn, err = applyPosting(ctx, tx, posting, time.Now().UTC())
		return err
	})
	if err != nil {
		logger.Error("ledger repository post failed", err, logger.Fields{
			"transactionId": posting.TransactionID,
		})
		return domain.Transaction{}, err
	}

	logger.Info("ledger repository post success", logger.Fields{
		"transactionId": txn.ID,
		"status":        txn.Status,
	})
	return txn, nil
}

func (r *LedgerRepository) PostPending(ctx context.Context, posting domain.Posting) (domain.Transaction, error) {
	logger.Info("ledger repository post pending", logger.Fields{
		"transactionId": posting.TransactionID,
		"payerId":       posting.PayerID,
		"amount":        posting.Amount.String(),
	})

	var txn domain.Transaction
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		// Existence and activity are still verified under lock even
		// though no balance moves yet.
		accounts, err := lockAccounts(ctx, tx, posting.PayerID, posting.ReceiverID)
		if err != nil {
			return err
		}
		for _, account := range accounts {
			if !account.IsActive {
				return domain.ErrAccountInactive
			}
		}

		txn, err = insertTransaction(ctx, tx, posting, domain.TransactionStatusPending, time.Now().UTC())
		return err
	})
	if err != nil {
		// A duplicate provider reference means this top-up was already
		// initiated; the caller must not create a second pending record.
		if isUniqueViolation(err) {
			return domain.Transaction{}, domain.ErrAlreadyProcessed
		}
		logger.Error("ledger repository post pending failed", err, logger.Fields{
			"transactionId": posting.TransactionID,
		})
		return domain.Transaction{}, err
	}

	return txn, nil
}

func (r *LedgerRepository) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, transactionColumns)
	return scanTransaction(r.db.QueryRowContext(ctx, query, id))
}

func (r *LedgerRepository) GetByProviderReference(ctx context.Context, reference string) (domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE provider_reference = $1`, transactionColumns)
	return scanTransaction(r.db.QueryRowContext(ctx, query, reference))
}

func (r *LedgerRepository) CompleteByReference(ctx context.Context, reference string, events []domain.OutboxEvent) (domain.Transaction, error) {
	return r.resolveByReference(ctx, reference, domain.TransactionStatusCompleted, events)
}

func (r *LedgerRepository) FailByReference(ctx context.Context, reference string, events []domain.OutboxEvent) (domain.Transaction, error) {
	return r.resolveByReference(ctx, reference, domain.TransactionStatusFailed, events)
}

func (r *LedgerRepository) resolveByReference(ctx context.Context, reference string, status domain.TransactionStatus, events []domain.OutboxEvent) (domain.Transaction, error) {
	logger.Info("ledger repository resolve by reference", logger.Fields{
		"reference": reference,
		"status":    status,
	})

	var txn domain.Transaction
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM transactions WHERE provider_reference = $1 FOR UPDATE`, transactionColumns)
		var err error
		txn, err = scanTransaction(tx.QueryRowContext(ctx, query, reference))
		if err != nil {
			return err
		}
		if txn.Status != domain.TransactionStatusPending {
			return domain.ErrAlreadyProcessed
		}

		if status == domain.TransactionStatusCompleted {
			accounts, err := lockAccounts(ctx, tx, txn.ReceiverID)
			if err != nil {
				return err
			}
			if !accounts[txn.ReceiverID].IsActive {
				return domain.ErrAccountInactive
			}
			if err := adjustBalance(ctx, tx, txn.ReceiverID, txn.Amount); err != nil {
				return err
			}
		}

		const update = `
UPDATE transactions
SET status = $2,
    processed_at = NOW()
WHERE id = $1`
		if _, err := tx.ExecContext(ctx, update, txn.ID, status); err != nil {
			return fmt.Errorf("update transaction status: %w", err)
		}

		return insertEvents(ctx, tx, events)
	})
	if err != nil {
		logger.Error("ledger repository resolve by reference failed", err, logger.Fields{
			"reference": reference,
		})
		return domain.Transaction{}, err
	}

	now := time.Now().UTC()
	txn.Status = status
	txn.ProcessedAt = &now

	logger.Info("ledger repository resolve by reference success", logger.Fields{
		"transactionId": txn.ID,
		"status":        status,
	})
	return txn, nil
}

func (r *LedgerRepository) ListUnreconciled(ctx context.Context) ([]domain.Transaction, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM transactions t
LEFT JOIN invoices i ON i.id = t.invoice_id
LEFT JOIN orders o ON o.id = t.order_id
WHERE t.status = 'completed'
  AND (
	(t.invoice_id IS NOT NULL AND i.status <> 'paid')
	OR (t.order_id IS NOT NULL AND o.status <> 'paid')
  )
ORDER BY t.created_at`, prefixedTransactionColumns("t"))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unreconciled transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unreconciled transactions: %w", err)
	}

	return out, nil
}

func prefixedTransactionColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.payer_id, %[1]s.receiver_id, %[1]s.company_id, %[1]s.amount, %[1]s.type, %[1]s.status, %[1]s.source_app, %[1]s.description, %[1]s.metadata, %[1]s.created_at, %[1]s.processed_at`, alias)
}
