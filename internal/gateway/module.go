package gateway

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module binds the configured provider variant to Gateway.
var Module = fx.Provide(New)

type params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// New selects the gateway variant named by configuration.
func New(p params) (Gateway, error) {
	switch p.Config.PaymentGateway {
	case "", ProviderBogus:
		p.Logger.Info("payment gateway configured", slog.String("provider", ProviderBogus))
		return NewBogus(), nil
	case ProviderMercadoPago:
		gw, err := NewMercadoPago(p.Config.MercadoPagoAccessToken)
		if err != nil {
			return nil, err
		}
		p.Logger.Info("payment gateway configured", slog.String("provider", ProviderMercadoPago))
		return gw, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, p.Config.PaymentGateway)
	}
}
