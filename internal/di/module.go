package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/notify"
	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/gateway"
	"github.com/polkiloo/storefront/internal/idempotency"
	"github.com/polkiloo/storefront/internal/logger"
	"github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/router"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/telemetry"
	"github.com/polkiloo/storefront/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		telemetry.Module,
		auth.Module,
		postgres.Module,
		gateway.Module,
		notify.Module,
		idempotency.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
