package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type PaymentLinkRepository interface {
	Create(ctx context.Context, link domain.PaymentLink) (domain.PaymentLink, error)
	GetByToken(ctx context.Context, token string) (domain.PaymentLink, error)
	MarkSettled(ctx context.Context, token string, settledAt time.Time) error
}
