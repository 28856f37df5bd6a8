// Package checkout holds the order lifecycle: reconciliation, tax, payments,
// shipments, the checkout state machine and finalization.
//
// An Engine is cheap to build and is expected to be constructed per
// transaction with repositories bound to that transaction.
package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/gateway"
)

// TaxRateSource resolves tax rates.
type TaxRateSource interface {
	Match(ctx context.Context, addr *model.Address) ([]model.TaxRate, error)
	All(ctx context.Context) ([]model.TaxRate, error)
	Get(ctx context.Context, id int64) (*model.TaxRate, error)
}

// ShippingMethodSource resolves shipping methods.
type ShippingMethodSource interface {
	All(ctx context.Context) ([]model.ShippingMethod, error)
	Get(ctx context.Context, id int64) (*model.ShippingMethod, error)
}

// PaymentMethodSource resolves payment methods.
type PaymentMethodSource interface {
	All(ctx context.Context) ([]model.PaymentMethod, error)
	Get(ctx context.Context, id int64) (*model.PaymentMethod, error)
}

// Inventory allocates and releases stock for an order.
type Inventory interface {
	OnHand(ctx context.Context, variantID int64) (int, error)
	// AssignOpeningInventory sells available units and backorders the rest.
	AssignOpeningInventory(ctx context.Context, order *model.Order) error
	Restock(ctx context.Context, order *model.Order) error
	// FillBackorders sells backordered units for which stock has arrived.
	FillBackorders(ctx context.Context, order *model.Order) (int, error)
}

// UpdateHook runs after every reconciliation, in registration order.
type UpdateHook func(ctx context.Context, order *model.Order) error

// Dependencies are the collaborators an Engine works with.
type Dependencies struct {
	TaxRates        TaxRateSource
	ShippingMethods ShippingMethodSource
	PaymentMethods  PaymentMethodSource
	Gateway         gateway.Gateway
	Inventory       Inventory
	Hooks           []UpdateHook
	Now             func() time.Time
	NewID           func() string
}

// Engine drives an order through checkout.
type Engine struct {
	settings  model.Settings
	taxRates  TaxRateSource
	shipping  ShippingMethodSource
	payments  PaymentMethodSource
	gateway   gateway.Gateway
	inventory Inventory
	hooks     []UpdateHook
	now       func() time.Time
	newID     func() string
}

// New builds an Engine bound to settings and deps.
func New(settings model.Settings, deps Dependencies) *Engine {
	e := &Engine{
		settings:  settings,
		taxRates:  deps.TaxRates,
		shipping:  deps.ShippingMethods,
		payments:  deps.PaymentMethods,
		gateway:   deps.Gateway,
		inventory: deps.Inventory,
		hooks:     append([]UpdateHook(nil), deps.Hooks...),
		now:       deps.Now,
		newID:     deps.NewID,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Settings returns the policy the engine was built with.
func (e *Engine) Settings() model.Settings {
	return e.settings
}
