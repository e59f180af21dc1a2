package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/travelpay/internal/adapter/razorpay"
	"github.com/polkiloo/travelpay/internal/server/http/middleware"
	"github.com/polkiloo/travelpay/internal/usecase"
)

// CurrentActor builds the audit actor of the request from the resolved profile.
func CurrentActor(c *gin.Context) usecase.Actor {
	actor := usecase.Actor{
		RemoteIP: c.ClientIP(),
		Token:    c.GetString(middleware.BearerContextKey),
	}
	if p := middleware.CurrentProfile(c); p != nil {
		actor.ID = p.ID
		actor.Email = p.Email
		actor.Role = p.Role
	}
	return actor
}

// gatewayStatus returns the status and message to surface for a gateway error.
func gatewayStatus(err error) (int, string, bool) {
	var apiErr *razorpay.APIError
	if !errors.As(err, &apiErr) {
		return 0, "", false
	}
	status := apiErr.StatusCode
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	msg := apiErr.Description
	if msg == "" {
		msg = "payment gateway rejected the request"
	}
	return status, msg, true
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
