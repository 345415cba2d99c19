package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/api-sage/settlement-core/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/logger"
)

const outboxBatchSize = 64

// OutboxDispatcher drains pending outbox events into user notifications.
// An event is marked dispatched only after its notification is written,
// so a crash between the two re-delivers on the next tick. Delivery is
// at-least-once; duplicate notifications are acceptable.
type OutboxDispatcher struct {
	outbox        repo_interfaces.OutboxRepository
	notifications repo_interfaces.NotificationRepository
	interval      time.Duration
	workers       int
}

func NewOutboxDispatcher(
	outbox repo_interfaces.OutboxRepository,
	notifications repo_interfaces.NotificationRepository,
	interval time.Duration,
	workers int,
) *OutboxDispatcher {
	if workers < 1 {
		workers = 1
	}
	return &OutboxDispatcher{
		outbox:        outbox,
		notifications: notifications,
		interval:      interval,
		workers:       workers,
	}
}

// Run drains on a fixed interval until the context is cancelled.
func (d *OutboxDispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.DrainOnce(ctx); err != nil {
				logger.Error("outbox drain failed", err, nil)
			}
		}
	}
}

// DrainOnce dispatches one batch of pending events and reports how many
// were delivered. Per-event failures are logged and left pending for the
// next tick; they never abort the batch.
func (d *OutboxDispatcher) DrainOnce(ctx context.Context) (int, error) {
	events, err := d.outbox.ListPending(ctx, outboxBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	var dispatched atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.workers)

	for _, event := range events {
		event := event
		group.Go(func() error {
			if err := d.dispatch(groupCtx, event); err != nil {
				logger.Error("outbox event dispatch failed", err, logger.Fields{
					"eventId": event.ID,
					"kind":    string(event.Kind),
				})
				return nil
			}
			dispatched.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return int(dispatched.Load()), err
	}
	return int(dispatched.Load()), nil
}

func (d *OutboxDispatcher) dispatch(ctx context.Context, event domain.OutboxEvent) error {
	notification, err := notificationFromEvent(event)
	if err != nil {
		return err
	}
	if _, err := d.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if err := d.outbox.MarkDispatched(ctx, event.ID); err != nil {
		return fmt.Errorf("mark event dispatched: %w", err)
	}
	return nil
}

func notificationFromEvent(event domain.OutboxEvent) (domain.Notification, error) {
	payload, err := domain.DecodeEventPayload(event.Payload)
	if err != nil {
		return domain.Notification{}, err
	}

	switch event.Kind {
	case domain.EventKindTransactionCreated:
		return domain.Notification{
			UserID:    payload.NotifyUserID,
			Kind:      domain.NotificationKindPaymentReceived,
			Title:     "Payment received",
			Message:   fmt.Sprintf("You received %s from account %s.", payload.Amount, payload.PayerID),
			SourceApp: payload.SourceApp,
		}, nil
	case domain.EventKindInvoicePaid:
		return domain.Notification{
			UserID:    payload.NotifyUserID,
			Kind:      domain.NotificationKindInvoicePaid,
			Title:     "Invoice paid",
			Message:   fmt.Sprintf("Invoice %s was settled for %s.", payload.InvoiceID, payload.Amount),
			SourceApp: sourceAppInvoicing,
		}, nil
	case domain.EventKindOrderPaid:
		return domain.Notification{
			UserID:    payload.NotifyUserID,
			Kind:      domain.NotificationKindOrderPaid,
			Title:     "Order paid",
			Message:   fmt.Sprintf("Order %s was settled for %s.", payload.OrderID, payload.Amount),
			SourceApp: sourceAppInventory,
		}, nil
	case domain.EventKindTopUpCompleted:
		return domain.Notification{
			UserID:    payload.NotifyUserID,
			Kind:      domain.NotificationKindTopUpCompleted,
			Title:     "Wallet top-up completed",
			Message:   fmt.Sprintf("Your wallet was credited with %s.", payload.Amount),
			SourceApp: sourceAppWallet,
		}, nil
	case domain.EventKindTopUpFailed:
		return domain.Notification{
			UserID:    payload.NotifyUserID,
			Kind:      domain.NotificationKindTopUpFailed,
			Title:     "Wallet top-up failed",
			Message:   fmt.Sprintf("Your wallet top-up of %s could not be completed.", payload.Amount),
			SourceApp: sourceAppWallet,
		}, nil
	default:
		return domain.Notification{}, fmt.Errorf("unknown outbox event kind %q", event.Kind)
	}
}
