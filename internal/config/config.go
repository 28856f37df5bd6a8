package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	AuthSecret      string
	AuthIssuer      string
	ShutdownTimeout time.Duration
	AutoMigrate     bool
	LogLevel        string

	AllowCheckoutOnGatewayError bool
	TrackInventoryLevels        bool
	ShowPriceIncVAT             bool
	DefaultCountryID            int64
	TaxUsingShipAddress         bool

	PaymentGateway         string
	MercadoPagoAccessToken string
	GatewayTimeout         time.Duration

	NotifyWebhookURL string
	RedisAddress     string
	IdempotencyTTL   time.Duration

	BackorderPollInterval time.Duration
	WorkerPoolSize        int
	MaxOrdersBatch        int

	OTLPEndpoint   string
	OTELSampleRate float64
	ServiceName    string
	ServiceVersion string
	Environment    string
}

const (
	defaultRunAddress            = ":8080"
	// DefaultAuthSecret is the placeholder used when no secret is configured.
	DefaultAuthSecret            = "change-me-in-production"
	defaultShutdownTimeout       = 10 * time.Second
	defaultLogLevel              = "info"
	defaultPaymentGateway        = "bogus"
	defaultGatewayTimeout        = 15 * time.Second
	defaultIdempotencyTTL        = 24 * time.Hour
	defaultBackorderPollInterval = 30 * time.Second
	defaultWorkerPoolSize        = 4
	defaultMaxOrdersBatch        = 32
	defaultSampleRate            = 1.0
	defaultServiceName           = "storefront"
	defaultServiceVersion        = "dev"
	defaultEnvironment           = "development"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		AuthSecret:      getString(lookup, "AUTH_SECRET", DefaultAuthSecret),
		AuthIssuer:      getString(lookup, "AUTH_TOKEN_ISSUER", ""),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		AutoMigrate:     getBool(lookup, "AUTO_MIGRATE", true),
		LogLevel:        getString(lookup, "LOG_LEVEL", defaultLogLevel),

		AllowCheckoutOnGatewayError: getBool(lookup, "ALLOW_CHECKOUT_ON_GATEWAY_ERROR", false),
		TrackInventoryLevels:        getBool(lookup, "TRACK_INVENTORY_LEVELS", true),
		ShowPriceIncVAT:             getBool(lookup, "SHOW_PRICE_INC_VAT", false),
		DefaultCountryID:            int64(getInt(lookup, "DEFAULT_COUNTRY_ID", 0)),
		TaxUsingShipAddress:         getBool(lookup, "TAX_USING_SHIP_ADDRESS", false),

		PaymentGateway:         getString(lookup, "PAYMENT_GATEWAY", defaultPaymentGateway),
		MercadoPagoAccessToken: getString(lookup, "MERCADOPAGO_ACCESS_TOKEN", ""),
		GatewayTimeout:         getDuration(lookup, "GATEWAY_TIMEOUT", defaultGatewayTimeout),

		NotifyWebhookURL: getString(lookup, "NOTIFY_WEBHOOK_URL", ""),
		RedisAddress:     getString(lookup, "REDIS_ADDRESS", ""),
		IdempotencyTTL:   getDuration(lookup, "IDEMPOTENCY_TTL", defaultIdempotencyTTL),

		BackorderPollInterval: getDuration(lookup, "BACKORDER_POLL_INTERVAL", defaultBackorderPollInterval),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		MaxOrdersBatch:        getInt(lookup, "POLL_BATCH_SIZE", defaultMaxOrdersBatch),

		OTLPEndpoint:   getString(lookup, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELSampleRate: getFloat(lookup, "OTEL_SAMPLE_RATE", defaultSampleRate),
		ServiceName:    getString(lookup, "SERVICE_NAME", defaultServiceName),
		ServiceVersion: getString(lookup, "SERVICE_VERSION", defaultServiceVersion),
		Environment:    getString(lookup, "ENVIRONMENT", defaultEnvironment),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.BackorderPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		gatewayTimeoutStr  = cfg.GatewayTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing identity tokens")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.AutoMigrate, "migrate", cfg.AutoMigrate, "Apply database migrations on startup")
	fs.StringVar(&cfg.PaymentGateway, "gateway", cfg.PaymentGateway, "Payment gateway provider: bogus, mercadopago")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Timeout for a single gateway call")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent backorder workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between backorder polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxOrdersBatch, "poll-batch", cfg.MaxOrdersBatch, "Maximum orders per polling batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.BackorderPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.GatewayTimeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxOrdersBatch <= 0 {
		cfg.MaxOrdersBatch = defaultMaxOrdersBatch
	}

	if cfg.BackorderPollInterval <= 0 {
		cfg.BackorderPollInterval = defaultBackorderPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = defaultGatewayTimeout
	}

	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}

	if cfg.OTELSampleRate < 0 || cfg.OTELSampleRate > 1 {
		cfg.OTELSampleRate = defaultSampleRate
	}

	cfg.PaymentGateway = strings.ToLower(strings.TrimSpace(cfg.PaymentGateway))

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

// Settings returns the immutable checkout policy derived from configuration.
func (c *Config) Settings() model.Settings {
	return model.Settings{
		AllowCheckoutOnGatewayError: c.AllowCheckoutOnGatewayError,
		TrackInventoryLevels:        c.TrackInventoryLevels,
		ShowPriceIncVAT:             c.ShowPriceIncVAT,
		DefaultCountryID:            c.DefaultCountryID,
		TaxUsingShipAddress:         c.TaxUsingShipAddress,
		GatewayTimeout:              c.GatewayTimeout,
	}
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
