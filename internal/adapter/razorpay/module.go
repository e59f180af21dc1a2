package razorpay

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/travelpay/internal/config"
)

// Module exposes the gateway client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Gateway, error) {
	rp := p.Config.Razorpay
	return NewHTTPClient(rp.BaseURL, rp.KeyID, rp.KeySecret, p.Config.UpstreamTimeout, p.Logger)
}
