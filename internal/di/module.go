package di

import (
	"go.uber.org/fx"

	"github.com/vfaivre/thumbdesk/internal/adapter/paypal"
	"github.com/vfaivre/thumbdesk/internal/app"
	"github.com/vfaivre/thumbdesk/internal/config"
	"github.com/vfaivre/thumbdesk/internal/logger"
	"github.com/vfaivre/thumbdesk/internal/pkg/auth"
	"github.com/vfaivre/thumbdesk/internal/server/http/handlers"
	"github.com/vfaivre/thumbdesk/internal/server/http/router"
	"github.com/vfaivre/thumbdesk/internal/storage/postgres"
	"github.com/vfaivre/thumbdesk/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		paypal.Module,
		usecase.Module,
		fx.Provide(func(client paypal.Client) app.PaymentProvider { return client }),
		fx.Provide(func(facade *app.StudioFacade) handlers.StudioFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
