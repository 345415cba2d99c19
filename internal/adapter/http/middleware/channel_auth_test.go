package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChannelAuthAllowsValidCredentials(t *testing.T) {
	auth, err := NewChannelAuth("FlowApps", "ChannelKey001")
	if err != nil {
		t.Fatalf("new channel auth: %v", err)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/provider", nil)
	req.SetBasicAuth("FlowApps", "ChannelKey001")

	rr := httptest.NewRecorder()
	auth.Wrap(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestChannelAuthRejectsInvalidKey(t *testing.T) {
	auth, err := NewChannelAuth("FlowApps", "ChannelKey001")
	if err != nil {
		t.Fatalf("new channel auth: %v", err)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/provider", nil)
	req.SetBasicAuth("FlowApps", "WrongKey")

	rr := httptest.NewRecorder()
	auth.Wrap(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestChannelAuthRejectsMissingHeader(t *testing.T) {
	auth, err := NewChannelAuth("FlowApps", "ChannelKey001")
	if err != nil {
		t.Fatalf("new channel auth: %v", err)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/provider", nil)

	rr := httptest.NewRecorder()
	auth.Wrap(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestChannelAuthRequiresConfiguredKey(t *testing.T) {
	if _, err := NewChannelAuth("FlowApps", ""); err == nil {
		t.Fatal("expected error for empty channel key")
	}
}
