package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrInvalidSignature is returned when a claimed signature does not match.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("signing secret is not configured")
)

// Verifier authenticates gateway callbacks using HMAC-SHA256 hex signatures.
type Verifier struct {
	keySecret     []byte
	webhookSecret []byte
}

// NewVerifier builds a Verifier for the checkout key secret and the webhook secret.
func NewVerifier(keySecret, webhookSecret string) *Verifier {
	return &Verifier{keySecret: []byte(keySecret), webhookSecret: []byte(webhookSecret)}
}

// PaymentSignature computes the signature the gateway issues for orderID|paymentID.
func PaymentSignature(secret, orderID, paymentID string) string {
	return sign([]byte(secret), []byte(orderID+"|"+paymentID))
}

// VerifyPayment checks a client-reported checkout completion.
func (v *Verifier) VerifyPayment(orderID, paymentID, claimed string) error {
	if len(v.keySecret) == 0 {
		return ErrMissingSecret
	}
	expected := sign(v.keySecret, []byte(orderID+"|"+paymentID))
	return compare(expected, claimed)
}

// VerifyWebhook checks the signature header of a raw webhook body.
func (v *Verifier) VerifyWebhook(body []byte, claimed string) error {
	if len(v.webhookSecret) == 0 {
		return ErrMissingSecret
	}
	return compare(sign(v.webhookSecret, body), claimed)
}

func compare(expected, claimed string) error {
	claimed = strings.ToLower(strings.TrimSpace(claimed))
	if claimed == "" {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(expected), []byte(claimed)) {
		return ErrInvalidSignature
	}
	return nil
}

func sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
