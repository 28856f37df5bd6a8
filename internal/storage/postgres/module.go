package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Module wires PostgreSQL storage and the transactor built on it.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.Transactor { return s },
		func(s *Storage) repository.Factory { return s },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

var runMigrations = Migrate

func newStorage(p storageParams) (*Storage, error) {
	if p.Config.AutoMigrate {
		if err := runMigrations(p.Config.DatabaseURI); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		p.Logger.Info("database migrations applied")
	}
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
