package idempotency

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides the response store: redis when configured, memory otherwise.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newStore(p storeParams) Store {
	if p.Config.RedisAddress == "" {
		p.Logger.Info("idempotency store in memory")
		return NewMemoryStore(p.Config.IdempotencyTTL)
	}
	client := redis.NewClient(&redis.Options{Addr: p.Config.RedisAddress})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				p.Logger.Warn("redis unavailable", slog.String("address", p.Config.RedisAddress), slog.Any("error", err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisStore(client, p.Config.ServiceName, p.Config.IdempotencyTTL)
}
