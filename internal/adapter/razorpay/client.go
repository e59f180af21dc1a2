package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
)

// APIError carries a non-2xx gateway response.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("razorpay error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("razorpay error: status %d: %s", e.StatusCode, e.Description)
}

// OrderRequest describes a gateway order. Amount is in minor currency units.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's view of a created order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// RefundRequest describes a refund. A zero Amount refunds the full payment.
type RefundRequest struct {
	Amount int64             `json:"amount,omitempty"`
	Speed  string            `json:"speed,omitempty"`
	Notes  map[string]string `json:"notes,omitempty"`
}

// Refund is the gateway's view of an issued refund.
type Refund struct {
	ID             string `json:"id"`
	Amount         int64  `json:"amount"`
	PaymentID      string `json:"payment_id"`
	Status         string `json:"status"`
	SpeedProcessed string `json:"speed_processed"`
}

// Gateway exposes the order and refund operations of the payment gateway.
type Gateway interface {
	KeyID() string
	Configured() bool
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	Refund(ctx context.Context, paymentID string, req RefundRequest) (*Refund, error)
}

// HTTPClient implements Gateway via the REST API with basic auth.
type HTTPClient struct {
	baseURL    *url.URL
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     *slog.Logger
}

type errorEnvelope struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// NewHTTPClient creates a gateway client. Empty credentials are accepted; every call
// then fails with ErrGatewayNotConfigured before reaching the network.
func NewHTTPClient(baseURL, keyID, keySecret string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse razorpay url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("razorpay url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:   parsed,
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// KeyID returns the public key handed to checkout clients.
func (c *HTTPClient) KeyID() string {
	return c.keyID
}

// Configured reports whether both API credentials are present.
func (c *HTTPClient) Configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

// CreateOrder registers a new order at the gateway.
func (c *HTTPClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var order Order
	if err := c.post(ctx, "/v1/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Refund refunds a captured payment fully or partially.
func (c *HTTPClient) Refund(ctx context.Context, paymentID string, req RefundRequest) (*Refund, error) {
	if paymentID == "" {
		return nil, domainErrors.Invalid("razorpayPaymentId", "is required")
	}
	var refund Refund
	if err := c.post(ctx, path.Join("/v1/payments", url.PathEscape(paymentID), "refund"), req, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *HTTPClient) post(ctx context.Context, p string, payload, dst any) error {
	if !c.Configured() {
		return domainErrors.ErrGatewayNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal razorpay request: %w", err)
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, p)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("razorpay request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorEnvelope
		_ = json.Unmarshal(raw, &envelope)
		c.logger.Error("razorpay request failed",
			slog.String("path", p),
			slog.Int("status", resp.StatusCode),
			slog.String("code", envelope.Error.Code),
		)
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        envelope.Error.Code,
			Description: envelope.Error.Description,
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode razorpay response: %w", err)
	}
	return nil
}
