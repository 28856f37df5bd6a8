package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/storefront/internal/domain/repository"
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// New connects to the database and verifies connectivity.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.HealthCheck(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories outside a transaction.
func (s *Storage) Users() repository.UserRepository { return &userRepository{q: s.pool} }

func (s *Storage) Orders() repository.OrderRepository { return &orderRepository{q: s.pool} }

func (s *Storage) Variants() repository.VariantRepository { return &variantRepository{q: s.pool} }

func (s *Storage) Stock() repository.StockRepository { return &stockRepository{q: s.pool} }

func (s *Storage) TaxRates() repository.TaxRateRepository { return &taxRateRepository{q: s.pool} }

func (s *Storage) ShippingMethods() repository.ShippingMethodRepository {
	return &shippingMethodRepository{q: s.pool}
}

func (s *Storage) PaymentMethods() repository.PaymentMethodRepository {
	return &paymentMethodRepository{q: s.pool}
}

// txFactory binds repositories to one transaction.
type txFactory struct {
	tx pgx.Tx
}

func (f txFactory) Users() repository.UserRepository       { return &userRepository{q: f.tx} }
func (f txFactory) Orders() repository.OrderRepository     { return &orderRepository{q: f.tx} }
func (f txFactory) Variants() repository.VariantRepository { return &variantRepository{q: f.tx} }
func (f txFactory) Stock() repository.StockRepository      { return &stockRepository{q: f.tx} }
func (f txFactory) TaxRates() repository.TaxRateRepository { return &taxRateRepository{q: f.tx} }
func (f txFactory) ShippingMethods() repository.ShippingMethodRepository {
	return &shippingMethodRepository{q: f.tx}
}
func (f txFactory) PaymentMethods() repository.PaymentMethodRepository {
	return &paymentMethodRepository{q: f.tx}
}

// WithinTransaction executes fn inside a transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Factory) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.WarnContext(ctx, "rollback failed", slog.String("error", rbErr.Error()))
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(ctx, txFactory{tx: tx})
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
