package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/pkg/signature"
	"github.com/polkiloo/travelpay/internal/server/http/dto"
	"github.com/polkiloo/travelpay/internal/usecase"
)

const (
	webhookSignatureHeader = "x-razorpay-signature"
	webhookEventIDHeader   = "x-razorpay-event-id"
)

// WebhookHandler receives gateway events.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Handle handles POST /api/payments/webhook. The body is verified exactly as received.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "unreadable body"})
		return
	}

	res, err := h.facade.HandleWebhook(c.Request.Context(), usecase.WebhookDelivery{
		Body:      body,
		Signature: c.GetHeader(webhookSignatureHeader),
		EventID:   c.GetHeader(webhookEventIDHeader),
	})
	if err != nil {
		switch {
		case errors.Is(err, signature.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "invalid signature"})
		case errors.Is(err, signature.ErrMissingSecret):
			c.JSON(http.StatusInternalServerError, dto.WebhookResponse{Error: "webhook verification is not configured"})
		case errors.Is(err, domainErrors.ErrValidation):
			c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "malformed event"})
		default:
			c.JSON(http.StatusInternalServerError, dto.WebhookResponse{Error: "event processing failed"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{
		OK:        true,
		Handled:   res.Handled,
		Event:     res.Event,
		Duplicate: res.Duplicate,
		Conflict:  res.Conflict,
	})
}
