package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/travelpay/internal/config"
	"github.com/polkiloo/travelpay/internal/pkg/audit"
	"github.com/polkiloo/travelpay/internal/server/http/handlers"
	"github.com/polkiloo/travelpay/internal/server/http/middleware"
)

// maxBodyBytes caps decoded request bodies.
const maxBodyBytes = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.PaymentFacade, recorder audit.Recorder, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Timeout(cfg.RequestTimeout))
	engine.Use(middleware.DecompressRequest(maxBodyBytes))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	checkoutHandler := handlers.NewCheckoutHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade)
	refundHandler := handlers.NewRefundHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)

	payments := api.Group("/payments")
	payments.POST("/create-order", checkoutHandler.CreateOrder)
	payments.POST("/verify", checkoutHandler.Verify)
	payments.POST("/mark-failed", checkoutHandler.MarkFailed)
	payments.GET("/status", checkoutHandler.Status)
	payments.POST("/webhook", webhookHandler.Handle)

	refunds := payments.Group("")
	refunds.Use(
		middleware.RefundSubject(),
		middleware.FeatureEnabled(cfg.RefundsEnabled, recorder),
		middleware.BearerRequired(recorder),
		middleware.CSRFDoubleSubmit(recorder),
		middleware.AdminRequired(facade, recorder),
	)
	refunds.POST("/refund", refundHandler.Refund)

	return engine
}
