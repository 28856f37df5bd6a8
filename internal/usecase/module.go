package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/notify"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/gateway"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/telemetry"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(newOrderUseCase)

type orderParams struct {
	fx.In

	Transactor repository.Transactor
	Gateway    gateway.Gateway
	Notifier   notify.Notifier
	Guests     pkgAuth.GuestTokens
	Settings   model.Settings
	Metrics    *telemetry.CheckoutMetrics `optional:"true"`
	Logger     *slog.Logger
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Transactor, p.Gateway, p.Notifier, p.Guests, p.Settings, p.Metrics, p.Logger)
}
