package signature

import (
	"go.uber.org/fx"

	"github.com/polkiloo/travelpay/internal/config"
)

// Module exposes the gateway signature verifier.
var Module = fx.Provide(newVerifier)

func newVerifier(cfg *config.Config) *Verifier {
	return NewVerifier(cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret)
}
