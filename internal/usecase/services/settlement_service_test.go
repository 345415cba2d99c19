package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/domain"
)

func TestSettleInvoiceMovesExactlyTheTotal(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "1000")
	f.seedAccount("owner-1", "owner@test.dev", "500")
	f.seedCompany("co-1", "owner-1")
	f.seedInvoice("inv-1", "co-1", "115")

	before := f.store.TotalBalance()

	response, err := f.settlements.SettleInvoice(context.Background(), models.SettleInvoiceRequest{
		InvoiceID: "inv-1",
		PayerID:   "payer-1",
	})
	if err != nil {
		t.Fatalf("settle invoice: %v", err)
	}
	if !response.Success {
		t.Fatalf("expected success, got %q", response.Message)
	}

	if got := f.balance("payer-1"); !got.Equal(decimal.RequireFromString("885")) {
		t.Fatalf("payer balance = %s, want 885", got)
	}
	if got := f.balance("owner-1"); !got.Equal(decimal.RequireFromString("615")) {
		t.Fatalf("owner balance = %s, want 615", got)
	}
	if got := f.store.TotalBalance(); !got.Equal(before) {
		t.Fatalf("total balance changed: %s -> %s", before, got)
	}

	invoice, _ := f.store.Invoice("inv-1")
	if invoice.Status != domain.InvoiceStatusPaid {
		t.Fatalf("invoice status = %s, want paid", invoice.Status)
	}
	if invoice.PaymentTransactionID == nil || *invoice.PaymentTransactionID != response.Data.TransactionID {
		t.Fatal("invoice does not reference the settlement transaction")
	}

	transactions := f.store.Transactions()
	if len(transactions) != 1 {
		t.Fatalf("transaction count = %d, want 1", len(transactions))
	}
	txn := transactions[0]
	if txn.Type != domain.TransactionTypeInvoicePayment || txn.Status != domain.TransactionStatusCompleted {
		t.Fatalf("unexpected transaction %s/%s", txn.Type, txn.Status)
	}
}

func TestSettleInvoiceInsufficientFundsLeavesEverythingUnchanged(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "50")
	f.seedAccount("owner-1", "owner@test.dev", "0")
	f.seedCompany("co-1", "owner-1")
	f.seedInvoice("inv-1", "co-1", "57.50")

	_, err := f.settlements.SettleInvoice(context.Background(), models.SettleInvoiceRequest{
		InvoiceID: "inv-1",
		PayerID:   "payer-1",
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	if got := f.balance("payer-1"); !got.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("payer balance = %s, want 50", got)
	}
	invoice, _ := f.store.Invoice("inv-1")
	if invoice.Status != domain.InvoiceStatusSent {
		t.Fatalf("invoice status = %s, want sent", invoice.Status)
	}
	if len(f.store.Transactions()) != 0 {
		t.Fatal("no transaction should be recorded")
	}
	if len(f.store.Events()) != 0 {
		t.Fatal("no outbox events should be recorded")
	}
}

func TestSettleInvoiceConcurrentlyYieldsOneSuccess(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "10000")
	f.seedAccount("owner-1", "owner@test.dev", "0")
	f.seedCompany("co-1", "owner-1")
	f.seedInvoice("inv-1", "co-1", "115")

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.settlements.SettleInvoice(context.Background(), models.SettleInvoiceRequest{
				InvoiceID: "inv-1",
				PayerID:   "payer-1",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, alreadySettled := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrAlreadySettled):
			alreadySettled++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || alreadySettled != workers-1 {
		t.Fatalf("successes = %d, alreadySettled = %d", successes, alreadySettled)
	}
	if got := f.balance("payer-1"); !got.Equal(decimal.RequireFromString("9885")) {
		t.Fatalf("payer charged more than once: balance = %s", got)
	}
}

func TestSettleOrderDecrementsStock(t *testing.T) {
	f := newFixture()
	f.seedAccount("customer-1", "c@test.dev", "300")
	f.seedAccount("owner-1", "o@test.dev", "0")
	f.seedCompany("co-1", "owner-1")
	f.seedProduct("prod-1", "co-1", 10)
	f.seedOrder("ord-1", "co-1", "customer-1", "200", []domain.LineItem{
		{ProductID: "prod-1", Quantity: 3, Rate: decimal.RequireFromString("66.67")},
	})

	response, err := f.settlements.SettleOrder(context.Background(), models.SettleOrderRequest{
		OrderID: "ord-1",
		PayerID: "customer-1",
	})
	if err != nil {
		t.Fatalf("settle order: %v", err)
	}
	if !response.Success {
		t.Fatalf("expected success, got %q", response.Message)
	}

	product, _ := f.store.Product("prod-1")
	if product.Quantity != 7 {
		t.Fatalf("product quantity = %d, want 7", product.Quantity)
	}
	order, _ := f.store.Order("ord-1")
	if order.Status != domain.OrderStatusPaid {
		t.Fatalf("order status = %s, want paid", order.Status)
	}
	if got := f.balance("customer-1"); !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("customer balance = %s, want 100", got)
	}
}

func TestSettleOrderRejectsForeignCustomer(t *testing.T) {
	f := newFixture()
	f.seedAccount("customer-1", "c@test.dev", "300")
	f.seedAccount("intruder-1", "i@test.dev", "300")
	f.seedAccount("owner-1", "o@test.dev", "0")
	f.seedCompany("co-1", "owner-1")
	f.seedOrder("ord-1", "co-1", "customer-1", "200", nil)

	_, err := f.settlements.SettleOrder(context.Background(), models.SettleOrderRequest{
		OrderID: "ord-1",
		PayerID: "intruder-1",
	})
	if err == nil {
		t.Fatal("expected an authorization failure")
	}
	order, _ := f.store.Order("ord-1")
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("order status = %s, want pending", order.Status)
	}
}

func TestSettleOrderMultiItemStockIsAllOrNothing(t *testing.T) {
	f := newFixture()
	f.seedAccount("customer-1", "c@test.dev", "1000")
	f.seedAccount("owner-1", "o@test.dev", "0")
	f.seedCompany("co-1", "owner-1")
	f.seedProduct("prod-a", "co-1", 10)
	f.seedProduct("prod-b", "co-1", 1)
	f.seedOrder("ord-1", "co-1", "customer-1", "500", []domain.LineItem{
		{ProductID: "prod-a", Quantity: 2},
		{ProductID: "prod-b", Quantity: 5},
	})

	_, err := f.settlements.SettleOrder(context.Background(), models.SettleOrderRequest{
		OrderID: "ord-1",
		PayerID: "customer-1",
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	productA, _ := f.store.Product("prod-a")
	if productA.Quantity != 10 {
		t.Fatalf("prod-a quantity = %d, want 10 (no partial decrement)", productA.Quantity)
	}
	if got := f.balance("customer-1"); !got.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("customer balance = %s, want 1000", got)
	}
	if len(f.store.Transactions()) != 0 {
		t.Fatal("no transaction should be recorded")
	}
}

func TestSettleOrderConcurrentRaceOnLastUnit(t *testing.T) {
	f := newFixture()
	f.seedAccount("customer-1", "c1@test.dev", "100")
	f.seedAccount("customer-2", "c2@test.dev", "100")
	f.seedAccount("owner-1", "o@test.dev", "0")
	f.seedCompany("co-1", "owner-1")
	f.seedProduct("prod-1", "co-1", 1)
	item := []domain.LineItem{{ProductID: "prod-1", Quantity: 1}}
	f.seedOrder("ord-1", "co-1", "customer-1", "40", item)
	f.seedOrder("ord-2", "co-1", "customer-2", "40", item)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	settle := func(orderID, payerID string) {
		defer wg.Done()
		_, err := f.settlements.SettleOrder(context.Background(), models.SettleOrderRequest{
			OrderID: orderID,
			PayerID: payerID,
		})
		results <- err
	}
	wg.Add(2)
	go settle("ord-1", "customer-1")
	go settle("ord-2", "customer-2")
	wg.Wait()
	close(results)

	successes, outOfStock := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrInsufficientStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || outOfStock != 1 {
		t.Fatalf("successes = %d, outOfStock = %d, want 1/1", successes, outOfStock)
	}
	product, _ := f.store.Product("prod-1")
	if product.Quantity != 0 {
		t.Fatalf("product quantity = %d, want 0", product.Quantity)
	}
}

func TestPeerTransferResolvesReceiverByEmail(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "100")
	f.seedAccount("friend-1", "friend@test.dev", "10")

	response, err := f.settlements.PeerTransfer(context.Background(), models.PeerTransferRequest{
		PayerID:       "payer-1",
		ReceiverEmail: "friend@test.dev",
		Amount:        decimal.RequireFromString("25"),
	})
	if err != nil {
		t.Fatalf("peer transfer: %v", err)
	}
	if response.Data.ReceiverID != "friend-1" {
		t.Fatalf("receiver = %s, want friend-1", response.Data.ReceiverID)
	}
	if got := f.balance("friend-1"); !got.Equal(decimal.RequireFromString("35")) {
		t.Fatalf("friend balance = %s, want 35", got)
	}
}

func TestPeerTransferUnknownEmail(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "100")

	_, err := f.settlements.PeerTransfer(context.Background(), models.PeerTransferRequest{
		PayerID:       "payer-1",
		ReceiverEmail: "nobody@test.dev",
		Amount:        decimal.RequireFromString("25"),
	})
	if !errors.Is(err, domain.ErrReceiverNotFound) {
		t.Fatalf("err = %v, want ErrReceiverNotFound", err)
	}
	if got := f.balance("payer-1"); !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("payer balance = %s, want 100", got)
	}
}

func TestPaymentLinkSettlesExactlyOnce(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "1000")
	f.seedAccount("owner-1", "owner@test.dev", "0")
	f.seedCompany("co-1", "owner-1")
	f.seedInvoice("inv-1", "co-1", "115")

	created, err := f.settlements.CreatePaymentLink(context.Background(), models.CreatePaymentLinkRequest{
		DomainID:   "inv-1",
		DomainType: "invoice",
	})
	if err != nil {
		t.Fatalf("create payment link: %v", err)
	}
	if created.Data.URL != testLinkBase+"/"+created.Data.Token {
		t.Fatalf("unexpected link url %q", created.Data.URL)
	}

	first, err := f.settlements.SettlePaymentLink(context.Background(), models.SettlePaymentLinkRequest{
		Token:   created.Data.Token,
		PayerID: "payer-1",
	})
	if err != nil {
		t.Fatalf("settle payment link: %v", err)
	}
	if !first.Success {
		t.Fatalf("expected success, got %q", first.Message)
	}

	_, err = f.settlements.SettlePaymentLink(context.Background(), models.SettlePaymentLinkRequest{
		Token:   created.Data.Token,
		PayerID: "payer-1",
	})
	if !errors.Is(err, domain.ErrAlreadySettled) {
		t.Fatalf("err = %v, want ErrAlreadySettled", err)
	}
	if got := f.balance("payer-1"); !got.Equal(decimal.RequireFromString("885")) {
		t.Fatalf("payer balance = %s, want 885", got)
	}
}

func TestSettleInvoiceRejectsAmountOverCeiling(t *testing.T) {
	f := newFixture()
	f.seedAccount("payer-1", "payer@test.dev", "10000000")
	f.seedAccount("owner-1", "owner@test.dev", "0")
	f.seedCompany("co-1", "owner-1")
	f.seedInvoice("inv-1", "co-1", "100001")

	_, err := f.settlements.SettleInvoice(context.Background(), models.SettleInvoiceRequest{
		InvoiceID: "inv-1",
		PayerID:   "payer-1",
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}
