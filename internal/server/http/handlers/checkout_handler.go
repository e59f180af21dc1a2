package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/pkg/signature"
	"github.com/polkiloo/travelpay/internal/server/http/dto"
	"github.com/polkiloo/travelpay/internal/usecase"
)

// CheckoutHandler serves order creation, verification and status endpoints.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// CreateOrder handles POST /api/payments/create-order.
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.facade.CreateOrder(c.Request.Context(), usecase.CreateOrderInput{
		FullName:              req.FullName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		PackageSlug:           req.PackageSlug,
		CheckoutType:          model.ParseCheckoutType(req.CheckoutType),
		SelectedDepartureDate: req.SelectedDepartureDate,
		Travellers:            int(req.Travellers),
		CustomerNote:          req.CustomerNote,
	})
	if err != nil {
		if status, msg, ok := gatewayStatus(err); ok {
			c.JSON(status, dto.ErrorResponse{Error: msg})
			return
		}
		switch {
		case errors.Is(err, domainErrors.ErrGatewayNotConfigured):
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "payment gateway is not configured"})
		case errors.Is(err, domainErrors.ErrValidation):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, domainErrors.ErrPricingNotFound):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unable to resolve price for this package"})
		case errors.Is(err, domainErrors.ErrUpstream):
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "pricing service unavailable"})
		case isTimeout(err):
			c.JSON(http.StatusGatewayTimeout, dto.ErrorResponse{Error: "upstream timeout"})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "could not create order"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.CreateOrderResponse{
		OrderID:         res.OrderID,
		Amount:          res.Amount,
		Currency:        res.Currency,
		Key:             res.Key,
		PurchaseID:      res.PurchaseID,
		InternalOrderID: res.InternalOrderID,
		ReceiptNumber:   res.ReceiptNumber,
	})
}

// Verify handles POST /api/payments/verify.
func (h *CheckoutHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.VerifyResponse{Error: "invalid request body"})
		return
	}

	res, err := h.facade.VerifyPayment(c.Request.Context(), usecase.VerifyInput{
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		Signature:     req.Signature,
		PurchaseID:    req.PurchaseID,
		PaymentMethod: req.PaymentMethod,
		Display:       toReceiptDisplay(req),
	})
	resp := toVerifyResponse(res)
	if err != nil {
		switch {
		case errors.Is(err, signature.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, dto.VerifyResponse{Error: "invalid signature"})
		case errors.Is(err, domainErrors.ErrValidation):
			c.JSON(http.StatusBadRequest, dto.VerifyResponse{Error: err.Error()})
		case errors.Is(err, signature.ErrMissingSecret):
			c.JSON(http.StatusInternalServerError, dto.VerifyResponse{Error: "payment verification is not configured"})
		case errors.Is(err, domainErrors.ErrStateConflict), errors.Is(err, domainErrors.ErrInvalidTransition):
			resp.Error = "purchase state conflict"
			c.JSON(http.StatusConflict, resp)
		default:
			resp.Error = "could not record payment"
			c.JSON(http.StatusInternalServerError, resp)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MarkFailed handles POST /api/payments/mark-failed.
func (h *CheckoutHandler) MarkFailed(c *gin.Context) {
	var req dto.MarkFailedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MarkFailedResponse{Error: "invalid request body"})
		return
	}
	key := model.PurchaseKey{OrderID: strings.TrimSpace(req.OrderID), PurchaseID: strings.TrimSpace(req.PurchaseID)}
	if key.Empty() {
		c.JSON(http.StatusBadRequest, dto.MarkFailedResponse{Error: "purchaseId or razorpayOrderId is required"})
		return
	}

	res, err := h.facade.MarkFailed(c.Request.Context(), key, model.TransitionPatch{
		PaymentID:     req.PaymentID,
		PaymentMethod: req.PaymentMethod,
		FailureCode:   req.FailureCode,
		FailureReason: req.FailureReason,
		FailureSource: req.FailureSource,
		FailureStep:   req.FailureStep,
	})
	resp := dto.MarkFailedResponse{OK: err == nil}
	if res != nil && res.Purchase != nil {
		resp.PurchaseID = res.Purchase.ID
		resp.Status = string(res.Purchase.Status)
	}
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrStateConflict), errors.Is(err, domainErrors.ErrInvalidTransition):
			resp.Conflict = true
			resp.Error = "purchase state conflict"
			c.JSON(http.StatusConflict, resp)
		case errors.Is(err, domainErrors.ErrNotFound):
			resp.Error = "purchase not found"
			c.JSON(http.StatusNotFound, resp)
		default:
			resp.Error = "could not record failure"
			c.JSON(http.StatusInternalServerError, resp)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Status handles GET /api/payments/status.
func (h *CheckoutHandler) Status(c *gin.Context) {
	key := model.PurchaseKey{OrderID: strings.TrimSpace(c.Query("orderId")), PurchaseID: strings.TrimSpace(c.Query("purchaseId"))}
	if key.Empty() {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "orderId or purchaseId is required"})
		return
	}

	p, err := h.facade.PurchaseStatus(c.Request.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "purchase not found"})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "could not load purchase"})
		}
		return
	}

	resp := dto.StatusResponse{
		PurchaseID:      p.ID,
		InternalOrderID: p.InternalOrderID,
		ReceiptNumber:   p.ReceiptNumber,
		OrderID:         p.RazorpayOrderID,
		Status:          string(p.Status),
		Amount:          p.Amount.StringFixed(2),
		Currency:        p.Currency,
	}
	if p.PaidAt != nil {
		resp.PaidAt = p.PaidAt.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

func toReceiptDisplay(req dto.VerifyRequest) usecase.ReceiptDisplay {
	var d usecase.ReceiptDisplay
	if req.Customer != nil {
		d.FullName = req.Customer.FullName
		d.Email = req.Customer.Email
		d.Phone = req.Customer.Phone
	}
	if req.PackageInfo != nil {
		d.PackageTitle = req.PackageInfo.Title
		d.Destination = req.PackageInfo.Destination
		d.TravelDate = req.PackageInfo.TravelDate
		d.Travellers = int(req.PackageInfo.Travellers)
		if amount := bytes.Trim(req.PackageInfo.Amount, `"`); string(amount) != "null" {
			d.Amount = string(amount)
		}
	}
	return d
}

func toVerifyResponse(res *usecase.VerifyResult) dto.VerifyResponse {
	if res == nil {
		return dto.VerifyResponse{}
	}
	return dto.VerifyResponse{
		Verified:                   res.Verified,
		Recorded:                   res.Recorded,
		OrderID:                    res.OrderID,
		PaymentID:                  res.PaymentID,
		PurchaseID:                 res.PurchaseID,
		InternalOrderID:            res.InternalOrderID,
		ReceiptNumber:              res.ReceiptNumber,
		Status:                     string(res.Status),
		ReceiptEmailSentToCustomer: res.ReceiptEmailSentToCustomer,
		ReceiptEmailSentToAdmin:    res.ReceiptEmailSentToAdmin,
	}
}
