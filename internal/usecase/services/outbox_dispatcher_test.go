package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/domain"
)

func TestOutboxDrainCreatesNotificationsAndMarksEvents(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "1000")
	f.seedAccount("owner-1", "owner@test.dev", "0")
	f.seedCompany("co-1", "owner-1")
	f.seedInvoice("inv-1", "co-1", "115")

	if _, err := f.settlements.SettleInvoice(context.Background(), models.SettleInvoiceRequest{
		InvoiceID: "inv-1",
		PayerID:   "payer-1",
	}); err != nil {
		t.Fatalf("settle invoice: %v", err)
	}

	// An invoice settlement writes two events: the incoming payment and
	// the invoice-paid notice, both for the company owner.
	dispatched, err := f.dispatcher.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if dispatched != 2 {
		t.Fatalf("dispatched = %d, want 2", dispatched)
	}

	notifications := f.store.Notifications()
	if len(notifications) != 2 {
		t.Fatalf("notification count = %d, want 2", len(notifications))
	}
	for _, n := range notifications {
		if n.UserID != "owner-1" {
			t.Fatalf("notification addressed to %s, want owner-1", n.UserID)
		}
	}

	kinds := map[domain.NotificationKind]bool{}
	for _, n := range notifications {
		kinds[n.Kind] = true
	}
	if !kinds[domain.NotificationKindPaymentReceived] || !kinds[domain.NotificationKindInvoicePaid] {
		t.Fatalf("unexpected notification kinds: %v", kinds)
	}

	// A second drain must be a no-op.
	dispatched, err = f.dispatcher.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("second drain: %v", err)
	}
	if dispatched != 0 {
		t.Fatalf("second drain dispatched = %d, want 0", dispatched)
	}
	if len(f.store.Notifications()) != 2 {
		t.Fatal("second drain duplicated notifications")
	}
}

func TestOutboxDrainTopUpNotification(t *testing.T) {
	f := newFixture()
	f.seedAccount("user-1", "user@test.dev", "0")

	if _, err := f.ledger.TopUpWallet(context.Background(), models.TopUpRequest{
		UserID: "user-1",
		Amount: decimal.RequireFromString("50"),
		Method: "card",
	}); err != nil {
		t.Fatalf("top up: %v", err)
	}

	if _, err := f.dispatcher.DrainOnce(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	notifications := f.store.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("notification count = %d, want 1", len(notifications))
	}
	if notifications[0].Kind != domain.NotificationKindTopUpCompleted {
		t.Fatalf("kind = %s, want topup_completed", notifications[0].Kind)
	}
	if notifications[0].UserID != "user-1" {
		t.Fatalf("addressed to %s, want user-1", notifications[0].UserID)
	}
}
