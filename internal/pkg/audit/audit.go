package audit

import (
	"context"
	"encoding/hex"
	"log/slog"

	"golang.org/x/crypto/blake2b"
)

// ActionRefund names refund authorization and execution events.
const ActionRefund = "payment.refund"

// Outcome classifies an audited action.
type Outcome string

const (
	OutcomeDenied    Outcome = "denied"
	OutcomeAttempted Outcome = "attempted"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Event describes one audited action. Secrets never belong here; bearer tokens are
// recorded through TokenFingerprint only.
type Event struct {
	Action     string
	Outcome    Outcome
	Reason     string
	ActorID    string
	ActorEmail string
	ActorRole  string
	PaymentID  string
	PurchaseID string
	RefundID   string
	RemoteIP   string
	Token      string
}

// Recorder writes audit events.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// Logger writes audit events as structured slog records.
type Logger struct {
	logger *slog.Logger
}

// NewLogger builds an audit Logger on top of the application logger.
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Record emits the event. Denied and failed outcomes are logged at warn and error.
func (l *Logger) Record(ctx context.Context, e Event) {
	attrs := []slog.Attr{
		slog.Bool("audit", true),
		slog.String("action", e.Action),
		slog.String("outcome", string(e.Outcome)),
	}
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, slog.String(key, value))
		}
	}
	add("reason", e.Reason)
	add("actor_id", e.ActorID)
	add("actor_email", e.ActorEmail)
	add("actor_role", e.ActorRole)
	add("payment_id", e.PaymentID)
	add("purchase_id", e.PurchaseID)
	add("refund_id", e.RefundID)
	add("remote_ip", e.RemoteIP)
	add("token_fingerprint", TokenFingerprint(e.Token))

	level := slog.LevelInfo
	switch e.Outcome {
	case OutcomeDenied:
		level = slog.LevelWarn
	case OutcomeFailed:
		level = slog.LevelError
	}
	l.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// TokenFingerprint returns a short BLAKE2b-256 prefix of token, or "" for no token.
func TokenFingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
