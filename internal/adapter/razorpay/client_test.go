package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", "k", "s", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", "k", "s", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCreateOrderSendsBasicAuthAndPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_key" || pass != "rzp_secret" {
			t.Errorf("unexpected basic auth %q/%q", user, pass)
		}
		var req OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount != 2000000 || req.Currency != "INR" || req.Receipt != "rcpt_1" {
			t.Errorf("unexpected order request %+v", req)
		}
		if req.Notes["packageSlug"] != "goa" {
			t.Errorf("expected notes to be forwarded, got %v", req.Notes)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_1","amount":2000000,"currency":"INR","receipt":"rcpt_1","status":"created"}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "rzp_key", "rzp_secret", time.Second, testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.KeyID() != "rzp_key" {
		t.Fatalf("unexpected key id %q", client.KeyID())
	}

	order, err := client.CreateOrder(context.Background(), OrderRequest{
		Amount:   2000000,
		Currency: "INR",
		Receipt:  "rcpt_1",
		Notes:    map[string]string{"packageSlug": "goa"},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_1" || order.Amount != 2000000 || order.Status != "created" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestCreateOrderPassesThroughGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount exceeds maximum"}}`))
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL, "k", "s", time.Second, testLogger())
	_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "BAD_REQUEST_ERROR" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if apiErr.Description != "amount exceeds maximum" {
		t.Fatalf("unexpected description %q", apiErr.Description)
	}
}

func TestCallsWithoutCredentialsNeverReachNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL, "key-only", "", time.Second, testLogger())
	if client.Configured() {
		t.Fatal("expected client without secret to be unconfigured")
	}
	if _, err := client.CreateOrder(context.Background(), OrderRequest{}); !errors.Is(err, domainErrors.ErrGatewayNotConfigured) {
		t.Fatalf("expected ErrGatewayNotConfigured, got %v", err)
	}
	if _, err := client.Refund(context.Background(), "pay_1", RefundRequest{}); !errors.Is(err, domainErrors.ErrGatewayNotConfigured) {
		t.Fatalf("expected ErrGatewayNotConfigured, got %v", err)
	}
	if called {
		t.Fatal("gateway must not be called without credentials")
	}
}

func TestRefund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/pay_1/refund" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["amount"] != float64(50000) || body["speed"] != "optimum" {
			t.Errorf("unexpected refund body %v", body)
		}
		_, _ = w.Write([]byte(`{"id":"rfnd_1","amount":50000,"payment_id":"pay_1","status":"processed","speed_processed":"instant"}`))
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL, "k", "s", time.Second, testLogger())
	refund, err := client.Refund(context.Background(), "pay_1", RefundRequest{Amount: 50000, Speed: "optimum"})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refund.ID != "rfnd_1" || refund.Amount != 50000 || refund.PaymentID != "pay_1" {
		t.Fatalf("unexpected refund %+v", refund)
	}

	if _, err := client.Refund(context.Background(), "", RefundRequest{}); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for empty payment id, got %v", err)
	}
}

func TestFullRefundOmitsAmount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["amount"]; ok {
			t.Errorf("expected amount to be omitted for full refund, got %v", body)
		}
		_, _ = w.Write([]byte(`{"id":"rfnd_2","amount":100,"payment_id":"pay_2","status":"processed"}`))
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL, "k", "s", time.Second, testLogger())
	if _, err := client.Refund(context.Background(), "pay_2", RefundRequest{}); err != nil {
		t.Fatalf("refund: %v", err)
	}
}

func TestRequestHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, _ := NewHTTPClient(srv.URL, "k", "s", 5*time.Second, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.CreateOrder(ctx, OrderRequest{Amount: 1}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
