package repo_interfaces

import (
	"context"

	"github.com/api-sage/settlement-core/internal/domain"
)

// LedgerRepository owns the indivisible posting unit: balance reads and
// writes, the transaction insert and the outbox appends commit together
// or not at all. Implementations surface conflicting concurrent writes
// as domain.ErrConflict so callers can retry the whole posting.
type LedgerRepository interface {
	// Post applies a completed posting: debit (unless skipped), credit,
	// transaction record, outbox events.
	Post(ctx context.Context, posting domain.Posting) (domain.Transaction, error)

	// PostPending records a transaction awaiting a provider callback.
	// No balance moves until the callback completes it.
	PostPending(ctx context.Context, posting domain.Posting) (domain.Transaction, error)

	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
	GetByProviderReference(ctx context.Context, reference string) (domain.Transaction, error)

	// CompleteByReference atomically flips a pending transaction to
	// completed and applies its credit exactly once; a replayed callback
	// gets domain.ErrAlreadyProcessed.
	CompleteByReference(ctx context.Context, reference string, events []domain.OutboxEvent) (domain.Transaction, error)
	FailByReference(ctx context.Context, reference string, events []domain.OutboxEvent) (domain.Transaction, error)

	// ListUnreconciled returns completed transactions whose referenced
	// invoice or order has not flipped to paid.
	ListUnreconciled(ctx context.Context) ([]domain.Transaction, error)
}
