package services

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/settlement-core/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/logger"
)

// ReconciliationService repairs the rare gap where a settlement
// transaction committed but the document patch was lost. MarkPaid is
// idempotent, so re-running a repair is always safe.
type ReconciliationService struct {
	ledger   repo_interfaces.LedgerRepository
	invoices repo_interfaces.InvoiceRepository
	orders   repo_interfaces.OrderRepository
	interval time.Duration
	now      func() time.Time
}

func NewReconciliationService(
	ledger repo_interfaces.LedgerRepository,
	invoices repo_interfaces.InvoiceRepository,
	orders repo_interfaces.OrderRepository,
	interval time.Duration,
) *ReconciliationService {
	return &ReconciliationService{
		ledger:   ledger,
		invoices: invoices,
		orders:   orders,
		interval: interval,
		now:      time.Now,
	}
}

// Run reconciles on a fixed interval until the context is cancelled.
func (s *ReconciliationService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.ReconcileOnce(ctx); err != nil {
				logger.Error("reconciliation pass failed", err, nil)
			}
		}
	}
}

// ReconcileOnce flips every document referenced by a completed settlement
// transaction that is still unpaid, and reports how many were repaired.
func (s *ReconciliationService) ReconcileOnce(ctx context.Context) (int, error) {
	transactions, err := s.ledger.ListUnreconciled(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unreconciled transactions: %w", err)
	}

	repaired := 0
	for _, txn := range transactions {
		flipped, err := s.repair(ctx, txn)
		if err != nil {
			logger.Error("reconciliation repair failed", err, logger.Fields{
				"transactionId": txn.ID,
			})
			continue
		}
		if flipped {
			repaired++
			logger.Info("document reconciled", logger.Fields{
				"transactionId": txn.ID,
				"type":          string(txn.Type),
			})
		}
	}
	return repaired, nil
}

func (s *ReconciliationService) repair(ctx context.Context, txn domain.Transaction) (bool, error) {
	switch meta := txn.Metadata.(type) {
	case domain.InvoiceMetadata:
		return s.invoices.MarkPaid(ctx, meta.InvoiceID, txn.ID, s.now())
	case domain.OrderMetadata:
		return s.orders.MarkPaid(ctx, meta.OrderID, txn.ID, s.now())
	default:
		return false, nil
	}
}
