package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type PaymentLinkRepository struct {
	db *sql.DB
}

func NewPaymentLinkRepository(db *sql.DB) *PaymentLinkRepository {
	return &PaymentLinkRepository{db: db}
}

func (r *PaymentLinkRepository) Create(ctx context.Context, link domain.PaymentLink) (domain.PaymentLink, error) {
	const query = `
INSERT INTO payment_links (token, domain_id, domain_type)
VALUES ($1, $2, $3)
RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, link.Token, link.DomainID, link.DomainType).Scan(&link.CreatedAt); err != nil {
		return domain.PaymentLink{}, fmt.Errorf("create payment link: %w", err)
	}

	return link, nil
}

func (r *PaymentLinkRepository) GetByToken(ctx context.Context, token string) (domain.PaymentLink, error) {
	const query = `
SELECT token, domain_id, domain_type, created_at, settled_at
FROM payment_links
WHERE token = $1`

	var link domain.PaymentLink
	var settledAt sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, token).Scan(
		&link.Token,
		&link.DomainID,
		&link.DomainType,
		&link.CreatedAt,
		&settledAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PaymentLink{}, domain.ErrNotFound
		}
		return domain.PaymentLink{}, fmt.Errorf("get payment link: %w", err)
	}

	if settledAt.Valid {
		value := settledAt.Time
		link.SettledAt = &value
	}

	return link, nil
}

func (r *PaymentLinkRepository) MarkSettled(ctx context.Context, token string, settledAt time.Time) error {
	const query = `
UPDATE payment_links
SET settled_at = $2
WHERE token = $1
  AND settled_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, token, settledAt); err != nil {
		return fmt.Errorf("mark payment link settled: %w", err)
	}

	return nil
}
