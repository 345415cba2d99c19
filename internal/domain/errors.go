package domain

import "errors"

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero and within the transaction ceiling")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account is not active")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrNotFound          = errors.New("record not found")
	ErrAlreadySettled    = errors.New("document is already settled")
	ErrCancelled         = errors.New("document is cancelled")
	ErrExpired           = errors.New("invoice is past its due date")
	ErrInsufficientStock = errors.New("insufficient product stock")
	ErrOwnershipMismatch = errors.New("payer does not own this order")
	ErrReceiverNotFound  = errors.New("receiver not found")
	ErrAlreadyProcessed  = errors.New("transaction already processed")
	ErrConflict          = errors.New("conflicting concurrent write")
)

// IsRetryable reports whether the caller should retry the whole operation.
// Only store-level write conflicts qualify; every other failure is terminal
// until the input or the underlying state changes.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
