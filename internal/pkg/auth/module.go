package auth

import (
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides identity and guest token primitives via fx.
var Module = fx.Options(
	fx.Provide(newGuestTokens),
	fx.Provide(newTokenStrategy),
)

func newGuestTokens() GuestTokens {
	return NewBcryptGuestTokens(0)
}

const tokenLeeway = 30 * time.Second

type strategyParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger `optional:"true"`
}

func newTokenStrategy(p strategyParams) Strategy {
	strategy := NewJWTVerifier(p.Config.AuthSecret, Options{Issuer: p.Config.AuthIssuer, Leeway: tokenLeeway})
	if p.Logger != nil && p.Config.AuthSecret == config.DefaultAuthSecret {
		p.Logger.Warn("identity tokens signed with the default secret",
			slog.String("strategy", strategy.Name()))
	}
	return strategy
}
