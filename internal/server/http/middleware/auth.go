package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/travelpay/internal/adapter/content"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/pkg/audit"
)

const (
	// BearerContextKey is a gin context key for the caller's bearer token.
	BearerContextKey = "bearerToken"
	// ProfileContextKey is a gin context key for the resolved *model.Profile.
	ProfileContextKey = "profile"
)

// ProfileResolver resolves a bearer token through the auth backend.
type ProfileResolver interface {
	Profile(ctx context.Context, bearer string) (*model.Profile, error)
}

// BearerRequired rejects requests without an Authorization bearer token.
func BearerRequired(recorder audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			deny(c, recorder, http.StatusUnauthorized, "missing_bearer", "authorization required")
			return
		}
		c.Set(BearerContextKey, token)
		c.Next()
	}
}

// AdminRequired resolves the bearer token and allows only admin profiles.
func AdminRequired(resolver ProfileResolver, recorder audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString(BearerContextKey)
		if token == "" {
			token = extractToken(c)
		}
		if token == "" {
			deny(c, recorder, http.StatusUnauthorized, "missing_bearer", "authorization required")
			return
		}

		profile, err := resolver.Profile(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, content.ErrUnauthorized):
				deny(c, recorder, http.StatusUnauthorized, "invalid_bearer", "authorization required")
			default:
				deny(c, recorder, http.StatusBadGateway, "profile_lookup_failed", "could not verify authorization")
			}
			return
		}
		if !profile.IsAdmin() {
			c.Set(ProfileContextKey, profile)
			deny(c, recorder, http.StatusForbidden, "not_admin", "admin role required")
			return
		}

		c.Set(ProfileContextKey, profile)
		c.Next()
	}
}

// CurrentProfile returns the profile resolved by AdminRequired.
func CurrentProfile(c *gin.Context) *model.Profile {
	val, ok := c.Get(ProfileContextKey)
	if !ok {
		return nil
	}
	profile, _ := val.(*model.Profile)
	return profile
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// deny audits an authorization failure and aborts with a JSON error.
func deny(c *gin.Context, recorder audit.Recorder, status int, reason, message string) {
	e := audit.Event{
		Action:     audit.ActionRefund,
		Outcome:    audit.OutcomeDenied,
		Reason:     reason,
		RemoteIP:   c.ClientIP(),
		Token:      c.GetString(BearerContextKey),
		PaymentID:  c.GetString(PaymentIDContextKey),
		PurchaseID: c.GetString(PurchaseIDContextKey),
	}
	if p := CurrentProfile(c); p != nil {
		e.ActorID = p.ID
		e.ActorEmail = p.Email
		e.ActorRole = p.Role
	}
	recorder.Record(c.Request.Context(), e)
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
