package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewCheckoutFacade,
		func(f *CheckoutFacade) handlers.CheckoutFacade { return f },
		newHTTPServer,
		newBackorderProcessor,
	),
	fx.Invoke(registerLifecycle),
)

const readHeaderTimeout = 5 * time.Second

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
	Logger *slog.Logger `optional:"true"`
}

func newHTTPServer(p serverParams) *http.Server {
	srv := &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	if p.Logger != nil {
		srv.ErrorLog = slog.NewLogLogger(p.Logger.With(slog.String("component", "http")).Handler(), slog.LevelWarn)
	}
	return srv
}

type workerParams struct {
	fx.In

	Facade *CheckoutFacade
	Config *config.Config
	Logger *slog.Logger
}

func newBackorderProcessor(p workerParams) *worker.BackorderProcessor {
	return worker.NewBackorderProcessor(
		p.Facade,
		p.Config.BackorderPollInterval,
		p.Config.MaxOrdersBatch,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.BackorderProcessor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var lc net.ListenConfig
			ln, err := lc.Listen(ctx, "tcp", p.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", p.Server.Addr, err)
			}
			p.Logger.Info("starting storefront",
				slog.String("addr", ln.Addr().String()),
				slog.String("gateway", p.Config.PaymentGateway),
			)
			// The start context is canceled once startup finishes.
			p.Worker.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("storefront stopped")
			return nil
		},
	})
}
