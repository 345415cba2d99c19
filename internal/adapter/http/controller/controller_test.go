package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/adapter/http/controller"
	"github.com/api-sage/settlement-core/internal/adapter/http/middleware"
	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/adapter/http/router"
	"github.com/api-sage/settlement-core/internal/adapter/repository/memory"
	"github.com/api-sage/settlement-core/internal/commons"
	"github.com/api-sage/settlement-core/internal/gate"
	"github.com/api-sage/settlement-core/internal/usecase/services"
)

const (
	testChannelID  = "FlowApps"
	testChannelKey = "ChannelKey001"
)

func newTestServer(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	companies := memory.NewCompanyRepository(store)
	invoices := memory.NewInvoiceRepository(store)
	orders := memory.NewOrderRepository(store)
	products := memory.NewProductRepository(store)
	links := memory.NewPaymentLinkRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	notifications := memory.NewNotificationRepository(store)

	g := gate.Default()
	ceiling := decimal.RequireFromString("100000")

	ledgerService := services.NewLedgerService(accounts, ledgerRepo, g, ceiling)
	settlementService := services.NewSettlementService(
		accounts, companies, invoices, orders, products, links, ledgerRepo,
		g, ceiling, "https://pay.test/l",
	)
	notificationService := services.NewNotificationService(notifications)

	channelAuth, err := middleware.NewChannelAuth(testChannelID, testChannelKey)
	if err != nil {
		t.Fatalf("channel auth: %v", err)
	}

	handler := router.New(
		controller.NewWalletController(ledgerService),
		controller.NewSettlementController(settlementService),
		controller.NewNotificationController(notificationService),
		controller.NewWebhookController(ledgerService),
		channelAuth,
	)
	return handler, store
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestSettleInvoiceEndpoint(t *testing.T) {
	handler, store := newTestServer(t)
	seedInvoiceScenario(store)

	rr := postJSON(t, handler, "/api/v1/settlements/invoice", models.SettleInvoiceRequest{
		InvoiceID: "inv-1",
		PayerID:   "payer-1",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var response commons.Response[models.TransactionResponse]
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.Success || response.Data == nil {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Data.Type != "invoice_payment" {
		t.Fatalf("type = %s, want invoice_payment", response.Data.Type)
	}

	// Settling again is a conflict, not a second charge.
	rr = postJSON(t, handler, "/api/v1/settlements/invoice", models.SettleInvoiceRequest{
		InvoiceID: "inv-1",
		PayerID:   "payer-1",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("second settle status = %d, want 409", rr.Code)
	}
}

func TestSettleInvoiceEndpointValidation(t *testing.T) {
	handler, _ := newTestServer(t)

	rr := postJSON(t, handler, "/api/v1/settlements/invoice", models.SettleInvoiceRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestWebhookEndpointRequiresChannelCredentials(t *testing.T) {
	handler, _ := newTestServer(t)

	body, _ := json.Marshal(models.ProviderWebhookRequest{
		Reference: "ref-1",
		Status:    models.WebhookStatusSuccessful,
		Amount:    decimal.RequireFromString("10"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/provider", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/provider", bytes.NewReader(body))
	req.SetBasicAuth(testChannelID, testChannelKey)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	// Authenticated but the reference is unknown.
	if rr.Code != http.StatusNotFound {
		t.Fatalf("authenticated status = %d, want 404", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func seedInvoiceScenario(store *memory.Store) {
	store.SeedAccount(accountFixture("payer-1", "payer@test.dev", "1000"))
	store.SeedAccount(accountFixture("owner-1", "owner@test.dev", "0"))
	store.SeedCompany(companyFixture("co-1", "owner-1"))
	store.SeedInvoice(invoiceFixture("inv-1", "co-1", "115"))
}
