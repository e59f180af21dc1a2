package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/server/http/dto"
	"github.com/polkiloo/travelpay/internal/usecase"
)

// RefundHandler issues admin refunds. Authorization runs in middleware.
type RefundHandler struct {
	facade RefundFacade
}

// NewRefundHandler constructs RefundHandler.
func NewRefundHandler(facade RefundFacade) *RefundHandler {
	return &RefundHandler{facade: facade}
}

// Refund handles POST /api/payments/refund.
func (h *RefundHandler) Refund(c *gin.Context) {
	var req dto.RefundRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, dto.RefundResponse{Error: "invalid request body"})
		return
	}

	res, err := h.facade.Refund(c.Request.Context(), usecase.RefundInput{
		PurchaseID: req.PurchaseID,
		OrderID:    req.OrderID,
		PaymentID:  req.PaymentID,
		Amount:     req.Amount,
		Speed:      req.Speed,
		Notes:      req.Notes,
		Actor:      CurrentActor(c),
	})
	if err != nil {
		var stale *usecase.RefundStateStaleError
		if errors.As(err, &stale) {
			resp := dto.RefundResponse{RefundID: stale.RefundID, Error: "refund issued but local state is stale"}
			if res != nil {
				resp.PurchaseID = res.PurchaseID
				resp.Status = string(res.Status)
				resp.RefundedAmount = &res.RefundedAmount
			}
			c.JSON(http.StatusBadGateway, resp)
			return
		}
		if status, msg, ok := gatewayStatus(err); ok {
			c.JSON(status, dto.RefundResponse{Error: msg})
			return
		}
		switch {
		case errors.Is(err, domainErrors.ErrValidation):
			c.JSON(http.StatusBadRequest, dto.RefundResponse{Error: err.Error()})
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.RefundResponse{Error: "purchase not found"})
		case errors.Is(err, domainErrors.ErrStateConflict), errors.Is(err, domainErrors.ErrInvalidTransition):
			c.JSON(http.StatusConflict, dto.RefundResponse{Error: "purchase is not refundable"})
		case errors.Is(err, domainErrors.ErrGatewayNotConfigured):
			c.JSON(http.StatusInternalServerError, dto.RefundResponse{Error: "payment gateway is not configured"})
		case isTimeout(err):
			c.JSON(http.StatusGatewayTimeout, dto.RefundResponse{Error: "upstream timeout"})
		default:
			c.JSON(http.StatusBadGateway, dto.RefundResponse{Error: "refund failed"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.RefundResponse{
		Success:        res.Success,
		Status:         string(res.Status),
		RefundID:       res.RefundID,
		RefundedAmount: &res.RefundedAmount,
		PurchaseID:     res.PurchaseID,
	})
}
