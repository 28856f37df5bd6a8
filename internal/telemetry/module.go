package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides telemetry providers and checkout metrics.
var Module = fx.Options(
	fx.Provide(New),
	fx.Provide(NewMetricsFromGlobal),
)

// New initializes telemetry from configuration and flushes it on stop.
func New(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*Telemetry, error) {
	tel, err := Initialize(context.Background(), Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
		SampleRate:     cfg.OTELSampleRate,
	})
	if err != nil {
		return nil, err
	}
	if !tel.Active() {
		logger.Info("telemetry disabled, no collector endpoint configured")
	}
	lc.Append(fx.Hook{OnStop: tel.Shutdown})
	return tel, nil
}

// NewMetricsFromGlobal builds checkout metrics once providers are installed.
func NewMetricsFromGlobal(_ *Telemetry) (*CheckoutMetrics, error) {
	return NewCheckoutMetrics(otel.Meter(instrumentationName))
}
