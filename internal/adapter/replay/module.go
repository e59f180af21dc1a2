package replay

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/travelpay/internal/config"
)

// Module provides the webhook replay guard. Without REDIS_URL a NopGuard is used.
var Module = fx.Provide(newGuard)

type guardParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newGuard(p guardParams) (Guard, error) {
	if p.Config.RedisURL == "" {
		p.Logger.Info("redis not configured, webhook replay guard disabled")
		return NopGuard{}, nil
	}

	client, err := newClient(p.Config.RedisURL)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				p.Logger.Warn("redis ping failed, replay guard will fail open", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return NewRedisGuard(client, p.Config.WebhookReplayTTL), nil
}
