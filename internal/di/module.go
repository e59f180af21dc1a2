package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/travelpay/internal/adapter/content"
	"github.com/polkiloo/travelpay/internal/adapter/mail"
	"github.com/polkiloo/travelpay/internal/adapter/razorpay"
	"github.com/polkiloo/travelpay/internal/adapter/replay"
	"github.com/polkiloo/travelpay/internal/app"
	"github.com/polkiloo/travelpay/internal/config"
	"github.com/polkiloo/travelpay/internal/logger"
	"github.com/polkiloo/travelpay/internal/pkg/audit"
	"github.com/polkiloo/travelpay/internal/pkg/signature"
	"github.com/polkiloo/travelpay/internal/server/http/handlers"
	"github.com/polkiloo/travelpay/internal/server/http/router"
	"github.com/polkiloo/travelpay/internal/storage/postgres"
	"github.com/polkiloo/travelpay/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		signature.Module,
		audit.Module,
		postgres.Module,
		razorpay.Module,
		content.Module,
		mail.Module,
		replay.Module,
		usecase.Module,
		fx.Provide(func(f *app.PaymentFacade) handlers.PaymentFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
