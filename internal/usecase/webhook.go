package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/polkiloo/travelpay/internal/adapter/replay"
	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/pkg/signature"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// WebhookDelivery is one gateway callback exactly as received.
type WebhookDelivery struct {
	Body      []byte
	Signature string
	EventID   string
}

// WebhookResult reports what the receiver did with a delivery.
type WebhookResult struct {
	Event      string
	Handled    bool
	Duplicate  bool
	Conflict   bool
	PurchaseID string
	Status     model.PurchaseStatus
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	Method           string          `json:"method"`
	Notes            json.RawMessage `json:"notes"`
	ErrorCode        string          `json:"error_code"`
	ErrorDescription string          `json:"error_description"`
	ErrorSource      string          `json:"error_source"`
	ErrorStep        string          `json:"error_step"`
	ErrorReason      string          `json:"error_reason"`
}

// notes decodes the entity notes. The gateway sends an empty array when there are none.
func (e paymentEntity) notes() map[string]string {
	out := map[string]string{}
	raw := bytes.TrimSpace(e.Notes)
	if len(raw) == 0 || raw[0] != '{' {
		return out
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return out
	}
	for k, v := range values {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

// WebhookUseCase processes signed gateway events.
type WebhookUseCase struct {
	verifier  *signature.Verifier
	purchases *PurchaseUseCase
	guard     replay.Guard
	logger    *slog.Logger
}

// NewWebhookUseCase constructs the receiver.
func NewWebhookUseCase(verifier *signature.Verifier, purchases *PurchaseUseCase, guard replay.Guard, logger *slog.Logger) *WebhookUseCase {
	return &WebhookUseCase{verifier: verifier, purchases: purchases, guard: guard, logger: logger}
}

// Handle authenticates the raw body and drives the purchase status machine.
// Deliveries are remembered by the replay guard only after they were processed.
func (u *WebhookUseCase) Handle(ctx context.Context, d WebhookDelivery) (*WebhookResult, error) {
	if err := u.verifier.VerifyWebhook(d.Body, d.Signature); err != nil {
		if errors.Is(err, signature.ErrInvalidSignature) {
			u.logger.Warn("webhook signature rejected", slog.String("eventId", d.EventID))
		}
		return nil, err
	}

	var env webhookEnvelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		return nil, domainErrors.Invalid("body", "malformed event")
	}
	result := &WebhookResult{Event: env.Event}

	key := replay.Key(d.EventID, d.Body)
	seen, err := u.guard.Seen(ctx, key)
	if err != nil {
		u.logger.Warn("replay guard lookup failed", slog.String("error", err.Error()))
	}
	if seen {
		result.Handled = true
		result.Duplicate = true
		return result, nil
	}

	if env.Event != EventPaymentCaptured && env.Event != EventPaymentFailed {
		return result, nil
	}

	entity := env.Payload.Payment.Entity
	notes := entity.notes()
	purchaseKey := model.PurchaseKey{
		OrderID:    entity.OrderID,
		PurchaseID: firstNonEmpty(notes["purchaseId"], notes["purchase_id"]),
	}
	if purchaseKey.Empty() {
		u.logger.Info("webhook without correlation id", slog.String("event", env.Event), slog.String("paymentId", entity.ID))
		return result, nil
	}

	var transition *TransitionResult
	if env.Event == EventPaymentCaptured {
		transition, err = u.purchases.MarkPaid(ctx, purchaseKey, model.TransitionPatch{
			PaymentID:     entity.ID,
			PaymentMethod: entity.Method,
		})
	} else {
		transition, err = u.purchases.MarkFailed(ctx, purchaseKey, model.TransitionPatch{
			PaymentID:     entity.ID,
			PaymentMethod: entity.Method,
			FailureCode:   entity.ErrorCode,
			FailureReason: firstNonEmpty(entity.ErrorDescription, entity.ErrorReason),
			FailureSource: entity.ErrorSource,
			FailureStep:   entity.ErrorStep,
		})
	}

	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		u.logger.Info("webhook for unknown purchase",
			slog.String("event", env.Event),
			slog.String("orderId", purchaseKey.OrderID),
			slog.String("purchaseId", purchaseKey.PurchaseID),
		)
		return result, nil
	case errors.Is(err, domainErrors.ErrStateConflict), errors.Is(err, domainErrors.ErrInvalidTransition):
		u.logger.Warn("webhook conflicts with purchase state", slog.String("event", env.Event), slog.String("error", err.Error()))
		result.Handled = true
		result.Conflict = true
	case err != nil:
		return nil, err
	default:
		result.Handled = true
	}

	if transition != nil && transition.Purchase != nil {
		result.PurchaseID = transition.Purchase.ID
		result.Status = transition.Purchase.Status
	}
	if err := u.guard.Remember(ctx, key); err != nil {
		u.logger.Warn("replay guard store failed", slog.String("error", err.Error()))
	}
	return result, nil
}
