package content

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/travelpay/internal/config"
)

// Module exposes the content backend client.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*Client, error) {
	return NewClient(p.Config.ContentBackendURL, p.Config.InternalToken, p.Config.UpstreamTimeout, p.Logger)
}
