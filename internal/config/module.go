package config

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Module exposes the configuration loader and the checkout settings derived from it.
var Module = fx.Provide(
	Load,
	func(c *Config) model.Settings { return c.Settings() },
)
