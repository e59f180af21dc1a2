package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	// PaymentIDContextKey is a gin context key for the gateway payment id a refund targets.
	PaymentIDContextKey = "refundPaymentId"
	// PurchaseIDContextKey is a gin context key for the purchase id a refund targets.
	PurchaseIDContextKey = "refundPurchaseId"
)

type refundSubject struct {
	PurchaseID string `json:"purchaseId"`
	PaymentID  string `json:"razorpayPaymentId"`
}

// RefundSubject records the payment and purchase a refund request targets so denials
// can be audited against them. The body is cached for handlers binding with
// ShouldBindBodyWith and its size is bounded by DecompressRequest.
func RefundSubject() gin.HandlerFunc {
	return func(c *gin.Context) {
		var subject refundSubject
		if err := c.ShouldBindBodyWith(&subject, binding.JSON); err == nil {
			c.Set(PaymentIDContextKey, strings.TrimSpace(subject.PaymentID))
			c.Set(PurchaseIDContextKey, strings.TrimSpace(subject.PurchaseID))
		}
		c.Next()
	}
}
