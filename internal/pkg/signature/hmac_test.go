package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestPaymentSignatureMatchesHMACHex(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("order_1|pay_1"))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := PaymentSignature("secret", "order_1", "pay_1"); got != want {
		t.Fatalf("unexpected signature: got %s want %s", got, want)
	}
}

func TestVerifyPayment(t *testing.T) {
	v := NewVerifier("secret", "hook")
	valid := PaymentSignature("secret", "order_1", "pay_1")

	if err := v.VerifyPayment("order_1", "pay_1", valid); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
	if err := v.VerifyPayment("order_1", "pay_1", strings.ToUpper(valid)); err != nil {
		t.Fatalf("expected case-insensitive hex match, got %v", err)
	}

	cases := map[string]string{
		"wrong secret": PaymentSignature("other", "order_1", "pay_1"),
		"swapped pair": PaymentSignature("secret", "pay_1", "order_1"),
		"other order":  PaymentSignature("secret", "order_2", "pay_1"),
		"empty":        "",
		"garbage":      "not-hex",
	}
	for name, claimed := range cases {
		if err := v.VerifyPayment("order_1", "pay_1", claimed); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("%s: expected ErrInvalidSignature, got %v", name, err)
		}
	}
}

func TestVerifyPaymentWithoutSecret(t *testing.T) {
	v := NewVerifier("", "hook")
	if err := v.VerifyPayment("order_1", "pay_1", "abc"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestVerifyWebhookDetectsTampering(t *testing.T) {
	v := NewVerifier("secret", "hook")
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	sig := sign([]byte("hook"), body)

	if err := v.VerifyWebhook(body, sig); err != nil {
		t.Fatalf("expected valid webhook signature, got %v", err)
	}

	tampered := append([]byte(nil), body...)
	tampered[3] ^= 0x01
	if err := v.VerifyWebhook(tampered, sig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for tampered body, got %v", err)
	}

	if err := NewVerifier("secret", "").VerifyWebhook(body, sig); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}
