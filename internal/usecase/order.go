package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/polkiloo/storefront/internal/adapter/notify"
	"github.com/polkiloo/storefront/internal/checkout"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/gateway"
	"github.com/polkiloo/storefront/internal/inventory"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/telemetry"
)

// Actor is whoever calls an order operation: a registered user identified by
// an identity token, a guest holding the order token, or both.
type Actor struct {
	UserID     int64
	GuestToken string
}

// OrderUseCase runs checkout operations, each inside one transaction holding
// the order row lock.
type OrderUseCase struct {
	tx       repository.Transactor
	gateway  gateway.Gateway
	notifier notify.Notifier
	guests   pkgAuth.GuestTokens
	settings model.Settings
	metrics  *telemetry.CheckoutMetrics
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewOrderUseCase constructs OrderUseCase. metrics may be nil.
func NewOrderUseCase(
	tx repository.Transactor,
	gw gateway.Gateway,
	notifier notify.Notifier,
	guests pkgAuth.GuestTokens,
	settings model.Settings,
	metrics *telemetry.CheckoutMetrics,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		tx:       tx,
		gateway:  gw,
		notifier: notifier,
		guests:   guests,
		settings: settings,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (u *OrderUseCase) engine(tx repository.Factory) *checkout.Engine {
	return checkout.New(u.settings, checkout.Dependencies{
		TaxRates:        tx.TaxRates(),
		ShippingMethods: tx.ShippingMethods(),
		PaymentMethods:  tx.PaymentMethods(),
		Gateway:         u.gateway,
		Inventory:       inventory.New(tx.Stock(), u.logger),
		Now:             u.now,
		NewID:           u.newID,
	})
}

type mutation func(ctx context.Context, tx repository.Factory, eng *checkout.Engine, o *model.Order) error

// mutate locks the order, applies fn and saves the result. A nil actor is the
// system itself and skips the ownership check.
func (u *OrderUseCase) mutate(ctx context.Context, op string, actor *Actor, number string, fn mutation) (order *model.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderUseCase."+op, attribute.String("order.number", number))
	defer func() { telemetry.EndSpan(span, err) }()

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Factory) error {
		o, err := tx.Orders().GetForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if actor != nil {
			if err := u.authorize(o, *actor); err != nil {
				return err
			}
		}
		if err := fn(ctx, tx, u.engine(tx), o); err != nil {
			return err
		}
		o.UpdatedAt = u.now()
		if err := tx.Orders().Save(ctx, o); err != nil {
			return fmt.Errorf("save order %s: %w", number, err)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("order.state", string(order.State)))
	return order, nil
}

// read loads the order without locking it.
func (u *OrderUseCase) read(ctx context.Context, op string, actor Actor, number string, fn mutation) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderUseCase."+op, attribute.String("order.number", number))
	defer func() { telemetry.EndSpan(span, err) }()

	return u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Factory) error {
		o, err := tx.Orders().Get(ctx, number)
		if err != nil {
			return err
		}
		if err := u.authorize(o, actor); err != nil {
			return err
		}
		span.SetAttributes(attribute.String("order.state", string(o.State)))
		return fn(ctx, tx, u.engine(tx), o)
	})
}

func (u *OrderUseCase) authorize(o *model.Order, actor Actor) error {
	if actor.UserID != 0 && actor.UserID == o.UserID {
		return nil
	}
	if actor.GuestToken != "" && o.GuestTokenHash != "" {
		err := u.guests.Verify(o.GuestTokenHash, actor.GuestToken)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domainErrors.ErrInvalidGuestToken) {
			return err
		}
	}
	return domainErrors.ErrForbidden
}

// deliver hands notices to the notifier once the change is committed.
// Failures are logged; the order change stands.
func (u *OrderUseCase) deliver(ctx context.Context, notices []model.Notice) {
	for _, n := range notices {
		if err := u.notifier.Deliver(ctx, n); err != nil {
			u.logger.ErrorContext(ctx, "notice delivery failed",
				slog.String("order", n.OrderNumber),
				slog.String("kind", string(n.Kind)),
				slog.Any("error", err),
			)
		}
	}
}

func (u *OrderUseCase) recordGatewayFailure(ctx context.Context, err error) {
	var gwErr *domainErrors.GatewayError
	if !errors.As(err, &gwErr) {
		return
	}
	u.logger.WarnContext(ctx, "payment gateway failure",
		slog.String("payment", gwErr.PaymentID),
		slog.Bool("timeout", gwErr.Timeout),
		slog.Any("error", gwErr.Err),
	)
	if u.metrics != nil {
		u.metrics.RecordGatewayFailure(ctx, gwErr.Timeout)
	}
}

func editable(o *model.Order) error {
	if o.Completed() || o.State == model.OrderStateCanceled {
		return fmt.Errorf("order %s is %s: %w", o.Number, o.State, domainErrors.ErrInvalidTransition)
	}
	return nil
}
