package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCount reports a count that is not a whole number.
var ErrInvalidCount = errors.New("count must be a whole number")

// Count accepts a JSON number or a numeric string holding a whole number. Empty and
// null decode to zero.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	if raw == "" || raw == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCount, raw)
	}
	*c = Count(n)
	return nil
}

// DisplayCount is a lenient Count for receipt display data. Anything unparsable
// decodes to zero.
type DisplayCount int

func (c *DisplayCount) UnmarshalJSON(data []byte) error {
	var n Count
	if err := n.UnmarshalJSON(data); err != nil {
		*c = 0
		return nil
	}
	*c = DisplayCount(n)
	return nil
}

// CreateOrderRequest describes a checkout. Prices sent by the client are ignored.
type CreateOrderRequest struct {
	FullName              string `json:"fullName"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	PackageSlug           string `json:"packageSlug"`
	CheckoutType          string `json:"checkoutType"`
	SelectedDepartureDate string `json:"selectedDepartureDate"`
	Travellers            Count  `json:"travellers"`
	CustomerNote          string `json:"customerNote"`
}

// CreateOrderResponse is returned to open the gateway checkout.
type CreateOrderResponse struct {
	OrderID         string `json:"orderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Key             string `json:"key"`
	PurchaseID      string `json:"purchaseId,omitempty"`
	InternalOrderID string `json:"internalOrderId,omitempty"`
	ReceiptNumber   string `json:"receiptNumber,omitempty"`
}

// CustomerInfo is optional receipt display data.
type CustomerInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// PackageInfo is optional receipt display data.
type PackageInfo struct {
	Title       string          `json:"title"`
	Destination string          `json:"destination"`
	TravelDate  string          `json:"travelDate"`
	Travellers  DisplayCount    `json:"travellers"`
	Amount      json.RawMessage `json:"amount"`
}

// VerifyRequest is the gateway checkout callback forwarded by the browser.
type VerifyRequest struct {
	OrderID       string        `json:"razorpay_order_id"`
	PaymentID     string        `json:"razorpay_payment_id"`
	Signature     string        `json:"razorpay_signature"`
	PurchaseID    string        `json:"purchaseId"`
	PaymentMethod string        `json:"paymentMethod"`
	Customer      *CustomerInfo `json:"customer"`
	PackageInfo   *PackageInfo  `json:"packageInfo"`
}

// VerifyResponse reports the verification outcome.
type VerifyResponse struct {
	Verified                   bool   `json:"verified"`
	Recorded                   bool   `json:"recorded"`
	OrderID                    string `json:"orderId,omitempty"`
	PaymentID                  string `json:"paymentId,omitempty"`
	PurchaseID                 string `json:"purchaseId,omitempty"`
	InternalOrderID            string `json:"internalOrderId,omitempty"`
	ReceiptNumber              string `json:"receiptNumber,omitempty"`
	Status                     string `json:"status,omitempty"`
	ReceiptEmailSentToCustomer bool   `json:"receiptEmailSentToCustomer"`
	ReceiptEmailSentToAdmin    bool   `json:"receiptEmailSentToAdmin"`
	Error                      string `json:"error,omitempty"`
}

// MarkFailedRequest is a client reported payment failure.
type MarkFailedRequest struct {
	PurchaseID    string `json:"purchaseId"`
	OrderID       string `json:"razorpayOrderId"`
	PaymentID     string `json:"razorpayPaymentId"`
	FailureReason string `json:"failureReason"`
	FailureCode   string `json:"failureCode"`
	FailureSource string `json:"failureSource"`
	FailureStep   string `json:"failureStep"`
	PaymentMethod string `json:"paymentMethod"`
}

// MarkFailedResponse reports the resulting purchase state.
type MarkFailedResponse struct {
	OK         bool   `json:"ok"`
	Conflict   bool   `json:"conflict,omitempty"`
	PurchaseID string `json:"purchaseId,omitempty"`
	Status     string `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
}

// WebhookResponse acknowledges a gateway event.
type WebhookResponse struct {
	OK        bool   `json:"ok"`
	Handled   bool   `json:"handled"`
	Event     string `json:"event,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Conflict  bool   `json:"conflict,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StatusResponse is the public view of a purchase.
type StatusResponse struct {
	PurchaseID      string `json:"purchaseId"`
	InternalOrderID string `json:"internalOrderId"`
	ReceiptNumber   string `json:"receiptNumber,omitempty"`
	OrderID         string `json:"orderId"`
	Status          string `json:"status"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	PaidAt          string `json:"paidAt,omitempty"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status string `json:"status"`
}
