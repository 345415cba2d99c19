package services

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/commons"
	"github.com/api-sage/settlement-core/internal/domain"
)

const (
	sourceAppWallet    = "wallet"
	sourceAppInvoicing = "invoicing"
	sourceAppInventory = "inventory"
)

// maxPostingAttempts bounds the in-process retry on store write
// conflicts before the failure is surfaced as retryable to the caller.
const maxPostingAttempts = 3

func failure[T any](message string, err error) (commons.Response[T], error) {
	if domain.IsRetryable(err) {
		return commons.RetryableErrorResponse[T](message, err.Error()), err
	}
	return commons.ErrorResponse[T](message, err.Error()), err
}

// withConflictRetry re-runs an atomic posting when the store reports a
// serialization conflict. Every attempt re-reads state inside the store,
// so replaying the whole closure is safe.
func withConflictRetry(ctx context.Context, fn func() (domain.Transaction, error)) (domain.Transaction, error) {
	var (
		txn domain.Transaction
		err error
	)
	for attempt := 1; attempt <= maxPostingAttempts; attempt++ {
		txn, err = fn()
		if err == nil || !domain.IsRetryable(err) {
			return txn, err
		}
		select {
		case <-ctx.Done():
			return domain.Transaction{}, ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return txn, err
}

func toTransactionResponse(txn domain.Transaction) models.TransactionResponse {
	amount := txn.Amount
	return models.TransactionResponse{
		TransactionID: txn.ID,
		PayerID:       txn.PayerID,
		ReceiverID:    txn.ReceiverID,
		Amount:        &amount,
		Type:          string(txn.Type),
		Status:        string(txn.Status),
		SourceApp:     txn.SourceApp,
		Description:   txn.Description,
	}
}
