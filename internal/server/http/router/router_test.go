package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/travelpay/internal/config"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/pkg/audit"
	"github.com/polkiloo/travelpay/internal/server/http/handlers"
	testhelpers "github.com/polkiloo/travelpay/internal/test"
	"github.com/polkiloo/travelpay/internal/usecase"
)

func newEngine(t *testing.T, facade testhelpers.PaymentFacadeStub, refunds bool) (*gin.Engine, *testhelpers.RecorderStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	recorder := &testhelpers.RecorderStub{}
	cfg := &config.Config{RequestTimeout: time.Second, RefundsEnabled: refunds}
	return Setup(facade, recorder, cfg, logger), recorder
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestSetupRoutes(t *testing.T) {
	engine, _ := newEngine(t, testhelpers.PaymentFacadeStub{}, false)

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodPost, "/api/payments/create-order", `{"packageSlug":"goa"}`, http.StatusOK},
		{http.MethodPost, "/api/payments/verify", `{"razorpay_order_id":"order_1"}`, http.StatusOK},
		{http.MethodPost, "/api/payments/mark-failed", `{"purchaseId":"purchase-1"}`, http.StatusOK},
		{http.MethodGet, "/api/payments/status?orderId=order_1", "", http.StatusOK},
		{http.MethodPost, "/api/payments/webhook", `{"event":"payment.captured"}`, http.StatusOK},
		{http.MethodPost, "/api/payments/unknown", `{}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = bytes.NewBufferString(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			req.Header.Set("Content-Type", "application/json")
			resp := serve(engine, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
			if tc.want == http.StatusOK && resp.Header().Get("X-Request-ID") == "" {
				t.Fatal("expected request id header")
			}
		})
	}
}

func TestRefundRouteGating(t *testing.T) {
	csrf := testhelpers.RandomToken(16, 32)
	admin := &model.Profile{ID: "1", Email: "ops@example.com", Role: model.RoleAdmin}
	editor := &model.Profile{ID: "2", Email: "ed@example.com", Role: "editor"}

	cases := []struct {
		name    string
		enabled bool
		bearer  string
		header  string
		cookie  string
		want    int
		reason  string
	}{
		{"disabled", false, "admin-token", csrf, csrf, http.StatusForbidden, "feature_disabled"},
		{"missing bearer", true, "", csrf, csrf, http.StatusUnauthorized, "missing_bearer"},
		{"missing csrf", true, "admin-token", "", "", http.StatusForbidden, "csrf_missing"},
		{"csrf mismatch", true, "admin-token", csrf, csrf + "x", http.StatusForbidden, "csrf_mismatch"},
		{"unknown bearer", true, "nobody", csrf, csrf, http.StatusUnauthorized, "invalid_bearer"},
		{"not admin", true, "editor-token", csrf, csrf, http.StatusForbidden, "not_admin"},
		{"admin", true, "admin-token", csrf, csrf, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var called bool
			facade := testhelpers.PaymentFacadeStub{
				RefundFn: func(_ context.Context, in usecase.RefundInput) (*usecase.RefundResult, error) {
					called = true
					if in.Actor.ID != admin.ID || in.Actor.Token != "admin-token" {
						t.Errorf("unexpected actor %+v", in.Actor)
					}
					return &usecase.RefundResult{Success: true, Status: model.PurchaseStatusRefunded, RefundID: "rfnd_1", PurchaseID: in.PurchaseID}, nil
				},
				ProfileResolverStub: testhelpers.ProfileResolverStub{Profiles: map[string]*model.Profile{
					"admin-token":  admin,
					"editor-token": editor,
				}},
			}
			engine, recorder := newEngine(t, facade, tc.enabled)

			req := httptest.NewRequest(http.MethodPost, "/api/payments/refund", bytes.NewBufferString(`{"purchaseId":"purchase-1","razorpayPaymentId":"pay_1"}`))
			req.Header.Set("Content-Type", "application/json")
			if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			if tc.header != "" {
				req.Header.Set("x-csrf-token", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "csrf_token", Value: tc.cookie})
			}
			resp := serve(engine, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}

			if tc.want == http.StatusOK {
				if !called {
					t.Fatal("expected refund to run")
				}
				return
			}
			if called {
				t.Fatal("refund must not run for a denied request")
			}
			var body map[string]any
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["success"] != false {
				t.Fatalf("unexpected body %v", body)
			}
			last, ok := recorder.Last()
			if !ok || last.Outcome != audit.OutcomeDenied || last.Reason != tc.reason || last.Action != audit.ActionRefund {
				t.Fatalf("unexpected audit event %+v", last)
			}
			if last.PaymentID != "pay_1" || last.PurchaseID != "purchase-1" {
				t.Fatalf("denial must name the targeted payment, got %+v", last)
			}
		})
	}
}

var _ handlers.PaymentFacade = testhelpers.PaymentFacadeStub{}
