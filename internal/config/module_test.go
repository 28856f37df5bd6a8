package config

import (
	"context"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestModuleDerivesSettings(t *testing.T) {
	cfg := &Config{
		DatabaseURI:                 "postgres://stub",
		AllowCheckoutOnGatewayError: true,
		TrackInventoryLevels:        true,
		DefaultCountryID:            214,
		GatewayTimeout:              3 * time.Second,
	}
	var settings model.Settings
	app := fx.New(
		fx.NopLogger,
		Module,
		fx.Replace(cfg),
		fx.Populate(&settings),
	)
	t.Cleanup(func() { _ = app.Stop(context.Background()) })
	if err := app.Err(); err != nil {
		t.Fatalf("fx app failed: %v", err)
	}
	if !settings.AllowCheckoutOnGatewayError || !settings.TrackInventoryLevels {
		t.Fatalf("flags not carried into settings: %+v", settings)
	}
	if settings.DefaultCountryID != 214 || settings.GatewayTimeout != 3*time.Second {
		t.Fatalf("unexpected settings %+v", settings)
	}
}
