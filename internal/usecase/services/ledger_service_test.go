package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/domain"
)

func TestTransferFundsMovesBalance(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "100")
	f.seedAccount("receiver-1", "receiver@test.dev", "0")

	response, err := f.ledger.TransferFunds(context.Background(), models.TransferRequest{
		PayerID:    "payer-1",
		ReceiverID: "receiver-1",
		Amount:     decimal.RequireFromString("40"),
		SourceApp:  "wallet",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if response.Data.Status != string(domain.TransactionStatusCompleted) {
		t.Fatalf("status = %s, want completed", response.Data.Status)
	}
	if got := f.balance("payer-1"); !got.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("payer balance = %s, want 60", got)
	}
	if got := f.balance("receiver-1"); !got.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("receiver balance = %s, want 40", got)
	}
	if len(f.store.Events()) != 1 {
		t.Fatalf("event count = %d, want 1", len(f.store.Events()))
	}
}

func TestTransferFundsRejectsCeilingBreach(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "1000000")
	f.seedAccount("receiver-1", "receiver@test.dev", "0")

	_, err := f.ledger.TransferFunds(context.Background(), models.TransferRequest{
		PayerID:    "payer-1",
		ReceiverID: "receiver-1",
		Amount:     decimal.RequireFromString("100001"),
		SourceApp:  "wallet",
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestTransferFundsValidationError(t *testing.T) {
	f := newFixture()

	_, err := f.ledger.TransferFunds(context.Background(), models.TransferRequest{})
	if err == nil {
		t.Fatal("expected validation error for empty transfer request")
	}
}

func TestTransferFundsInactiveReceiver(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "100")
	f.store.SeedAccount(domain.Account{
		ID:            "receiver-1",
		Email:         "receiver@test.dev",
		WalletBalance: decimal.Zero,
		IsActive:      false,
	})

	_, err := f.ledger.TransferFunds(context.Background(), models.TransferRequest{
		PayerID:    "payer-1",
		ReceiverID: "receiver-1",
		Amount:     decimal.RequireFromString("10"),
		SourceApp:  "wallet",
	})
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("err = %v, want ErrAccountInactive", err)
	}
}

func TestTopUpWalletImmediateCredit(t *testing.T) {
	f := newFixture()
	f.seedAccount("user-1", "user@test.dev", "10")

	response, err := f.ledger.TopUpWallet(context.Background(), models.TopUpRequest{
		UserID: "user-1",
		Amount: decimal.RequireFromString("90"),
		Method: "card",
	})
	if err != nil {
		t.Fatalf("top up: %v", err)
	}
	if response.Data.Status != string(domain.TransactionStatusCompleted) {
		t.Fatalf("status = %s, want completed", response.Data.Status)
	}
	if got := f.balance("user-1"); !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("balance = %s, want 100", got)
	}
}

func TestTopUpWalletPendingHoldsCreditUntilWebhook(t *testing.T) {
	f := newFixture()
	f.seedAccount("user-1", "user@test.dev", "10")

	pending, err := f.ledger.TopUpWallet(context.Background(), models.TopUpRequest{
		UserID:            "user-1",
		Amount:            decimal.RequireFromString("90"),
		Method:            "bank_transfer",
		ProviderReference: "prov-ref-1",
	})
	if err != nil {
		t.Fatalf("pending top up: %v", err)
	}
	if pending.Data.Status != string(domain.TransactionStatusPending) {
		t.Fatalf("status = %s, want pending", pending.Data.Status)
	}
	if got := f.balance("user-1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("balance moved before confirmation: %s", got)
	}

	completed, err := f.ledger.HandleProviderWebhook(context.Background(), models.ProviderWebhookRequest{
		Reference: "prov-ref-1",
		Status:    models.WebhookStatusSuccessful,
		Amount:    decimal.RequireFromString("90"),
	})
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if completed.Data.Status != string(domain.TransactionStatusCompleted) {
		t.Fatalf("status = %s, want completed", completed.Data.Status)
	}
	if got := f.balance("user-1"); !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("balance = %s, want 100", got)
	}

	// Replay must not credit twice.
	_, err = f.ledger.HandleProviderWebhook(context.Background(), models.ProviderWebhookRequest{
		Reference: "prov-ref-1",
		Status:    models.WebhookStatusSuccessful,
		Amount:    decimal.RequireFromString("90"),
	})
	if !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("err = %v, want ErrAlreadyProcessed", err)
	}
	if got := f.balance("user-1"); !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("replay credited again: %s", got)
	}
}

func TestTopUpWalletDuplicateProviderReference(t *testing.T) {
	f := newFixture()
	f.seedAccount("user-1", "user@test.dev", "0")

	request := models.TopUpRequest{
		UserID:            "user-1",
		Amount:            decimal.RequireFromString("50"),
		Method:            "card",
		ProviderReference: "prov-ref-dup",
	}
	if _, err := f.ledger.TopUpWallet(context.Background(), request); err != nil {
		t.Fatalf("first top up: %v", err)
	}
	_, err := f.ledger.TopUpWallet(context.Background(), request)
	if !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("err = %v, want ErrAlreadyProcessed", err)
	}
}

func TestHandleProviderWebhookFailureDoesNotCredit(t *testing.T) {
	f := newFixture()
	f.seedAccount("user-1", "user@test.dev", "10")

	if _, err := f.ledger.TopUpWallet(context.Background(), models.TopUpRequest{
		UserID:            "user-1",
		Amount:            decimal.RequireFromString("90"),
		Method:            "mobile_money",
		ProviderReference: "prov-ref-2",
	}); err != nil {
		t.Fatalf("pending top up: %v", err)
	}

	response, err := f.ledger.HandleProviderWebhook(context.Background(), models.ProviderWebhookRequest{
		Reference: "prov-ref-2",
		Status:    models.WebhookStatusFailed,
		Amount:    decimal.RequireFromString("90"),
	})
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if response.Data.Status != string(domain.TransactionStatusFailed) {
		t.Fatalf("status = %s, want failed", response.Data.Status)
	}
	if got := f.balance("user-1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("failed top-up credited the wallet: %s", got)
	}
}

func TestHandleProviderWebhookAmountMismatchFailsTopUp(t *testing.T) {
	f := newFixture()
	f.seedAccount("user-1", "user@test.dev", "10")

	if _, err := f.ledger.TopUpWallet(context.Background(), models.TopUpRequest{
		UserID:            "user-1",
		Amount:            decimal.RequireFromString("90"),
		Method:            "card",
		ProviderReference: "prov-ref-3",
	}); err != nil {
		t.Fatalf("pending top up: %v", err)
	}

	response, err := f.ledger.HandleProviderWebhook(context.Background(), models.ProviderWebhookRequest{
		Reference: "prov-ref-3",
		Status:    models.WebhookStatusSuccessful,
		Amount:    decimal.RequireFromString("9000"),
	})
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if response.Data.Status != string(domain.TransactionStatusFailed) {
		t.Fatalf("status = %s, want failed on amount mismatch", response.Data.Status)
	}
	if got := f.balance("user-1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("mismatched webhook credited the wallet: %s", got)
	}
}

func TestHandleProviderWebhookUnknownReference(t *testing.T) {
	f := newFixture()

	_, err := f.ledger.HandleProviderWebhook(context.Background(), models.ProviderWebhookRequest{
		Reference: "no-such-ref",
		Status:    models.WebhookStatusSuccessful,
		Amount:    decimal.RequireFromString("10"),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
