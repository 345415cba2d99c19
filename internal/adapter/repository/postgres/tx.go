package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/domain"
)

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return translateErr(err)
	}

	if err := tx.Commit(); err != nil {
		return translateErr(fmt.Errorf("commit tx: %w", err))
	}

	return nil
}

type lockedAccount struct {
	ID            string
	WalletBalance decimal.Decimal
	IsActive      bool
}

// lockAccounts takes row locks on the given accounts in lexicographic id
// order so concurrent postings over overlapping accounts cannot deadlock.
func lockAccounts(ctx context.Context, tx *sql.Tx, ids ...string) (map[string]lockedAccount, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	const query = `
SELECT id, wallet_balance, is_active
FROM accounts
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE`

	rows, err := tx.QueryContext(ctx, query, pq.Array(unique))
	if err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	defer rows.Close()

	locked := make(map[string]lockedAccount, len(unique))
	for rows.Next() {
		var account lockedAccount
		if err := rows.Scan(&account.ID, &account.WalletBalance, &account.IsActive); err != nil {
			return nil, fmt.Errorf("scan locked account: %w", err)
		}
		locked[account.ID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locked accounts: %w", err)
	}

	for _, id := range unique {
		if _, ok := locked[id]; !ok {
			return nil, domain.ErrAccountNotFound
		}
	}

	return locked, nil
}

// applyPosting executes the indivisible unit of a completed posting
// inside the caller's transaction: precondition checks under the row
// locks, balance updates, transaction insert, outbox appends.
func applyPosting(ctx context.Context, tx *sql.Tx, posting domain.Posting, now time.Time) (domain.Transaction, error) {
	accounts, err := lockAccounts(ctx, tx, posting.PayerID, posting.ReceiverID)
	if err != nil {
		return domain.Transaction{}, err
	}

	payer := accounts[posting.PayerID]
	receiver := accounts[posting.ReceiverID]
	if !payer.IsActive || !receiver.IsActive {
		return domain.Transaction{}, domain.ErrAccountInactive
	}
	if !posting.SkipDebit && payer.WalletBalance.LessThan(posting.Amount) {
		return domain.Transaction{}, domain.ErrInsufficientFunds
	}

	if !posting.SkipDebit {
		if err := adjustBalance(ctx, tx, posting.PayerID, posting.Amount.Neg()); err != nil {
			return domain.Transaction{}, err
		}
	}
	if err := adjustBalance(ctx, tx, posting.ReceiverID, posting.Amount); err != nil {
		return domain.Transaction{}, err
	}

	txn, err := insertTransaction(ctx, tx, posting, domain.TransactionStatusCompleted, now)
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := insertEvents(ctx, tx, posting.Events); err != nil {
		return domain.Transaction{}, err
	}

	return txn, nil
}

func adjustBalance(ctx context.Context, tx *sql.Tx, accountID string, delta decimal.Decimal) error {
	const query = `
UPDATE accounts
SET wallet_balance = wallet_balance + $2::numeric,
    updated_at = NOW()
WHERE id = $1`

	if _, err := tx.ExecContext(ctx, query, accountID, delta); err != nil {
		return fmt.Errorf("adjust balance for account %s: %w", accountID, err)
	}
	return nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, posting domain.Posting, status domain.TransactionStatus, now time.Time) (domain.Transaction, error) {
	metadataRaw, err := domain.EncodeMetadata(posting.Metadata)
	if err != nil {
		return domain.Transaction{}, err
	}
	invoiceID, orderID, providerRef := correlationColumns(posting.Metadata)

	var processedAt *time.Time
	if status == domain.TransactionStatusCompleted {
		processedAt = &now
	}

	const query = `
INSERT INTO transactions (
	id,
	payer_id,
	receiver_id,
	company_id,
	amount,
	type,
	status,
	source_app,
	description,
	metadata,
	invoice_id,
	order_id,
	provider_reference,
	processed_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
)
RETURNING created_at`

	var createdAt time.Time
	if err := tx.QueryRowContext(
		ctx,
		query,
		posting.TransactionID,
		posting.PayerID,
		posting.ReceiverID,
		posting.CompanyID,
		posting.Amount,
		posting.Type,
		status,
		posting.SourceApp,
		posting.Description,
		metadataRaw,
		invoiceID,
		orderID,
		providerRef,
		processedAt,
	).Scan(&createdAt); err != nil {
		return domain.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return domain.Transaction{
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
		CreatedAt:   createdAt,
		ProcessedAt: processedAt,
	}, nil
}

func insertEvents(ctx context.Context, tx *sql.Tx, events []domain.OutboxEvent) error {
	const query = `
INSERT INTO outbox_events (kind, payload) VALUES ($1, $2)`

	for _, event := range events {
		if _, err := tx.ExecContext(ctx, query, event.Kind, []byte(event.Payload)); err != nil {
			return fmt.Errorf("insert outbox event %s: %w", event.Kind, err)
		}
	}
	return nil
}

// correlationColumns extracts the indexable correlation keys from the
// typed metadata so reconciliation and webhook lookups stay plain SQL.
func correlationColumns(metadata domain.Metadata) (invoiceID, orderID, providerRef sql.NullString) {
	switch m := metadata.(type) {
	case domain.InvoiceMetadata:
		invoiceID = sql.NullString{String: m.InvoiceID, Valid: m.InvoiceID != ""}
	case domain.OrderMetadata:
		orderID = sql.NullString{String: m.OrderID, Valid: m.OrderID != ""}
	case domain.TopUpMetadata:
		providerRef = sql.NullString{String: m.ProviderReference, Valid: m.ProviderReference != ""}
	}
	return invoiceID, orderID, providerRef
}

func scanTransaction(scanner interface {
	Scan(dest ...any) error
}) (domain.Transaction, error) {
	var (
		txn         domain.Transaction
		companyID   sql.NullString
		metadataRaw []byte
		processedAt sql.NullTime
	)

	if err := scanner.Scan(
		&txn.ID,
		&txn.PayerID,
		&txn.ReceiverID,
		&companyID,
		&txn.Amount,
		&txn.Type,
		&txn.Status,
		&txn.SourceApp,
		&txn.Description,
		&metadataRaw,
		&txn.CreatedAt,
		&processedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrNotFound
		}
		return domain.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if companyID.Valid {
		value := companyID.String
		txn.CompanyID = &value
	}
	if processedAt.Valid {
		value := processedAt.Time
		txn.ProcessedAt = &value
	}

	metadata, err := domain.DecodeMetadata(txn.Type, metadataRaw)
	if err != nil {
		return domain.Transaction{}, err
	}
	txn.Metadata = metadata

	return txn, nil
}

const transactionColumns = `id, payer_id, receiver_id, company_id, amount, type, status, source_app, description, metadata, created_at, processed_at`
