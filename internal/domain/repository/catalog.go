package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// VariantRepository reads purchasable variants.
type VariantRepository interface {
	Get(ctx context.Context, id int64) (*model.Variant, error)
}

// StockRepository tracks count on hand per variant.
type StockRepository interface {
	OnHand(ctx context.Context, variantID int64) (int, error)
	// Adjust adds delta to count on hand and returns the new level.
	Adjust(ctx context.Context, variantID int64, delta int) (int, error)
}

// TaxRateRepository reads configured tax rates.
type TaxRateRepository interface {
	// Match returns rates whose zone includes addr.
	Match(ctx context.Context, addr *model.Address) ([]model.TaxRate, error)
	All(ctx context.Context) ([]model.TaxRate, error)
	Get(ctx context.Context, id int64) (*model.TaxRate, error)
}

// ShippingMethodRepository reads configured shipping methods.
type ShippingMethodRepository interface {
	All(ctx context.Context) ([]model.ShippingMethod, error)
	Get(ctx context.Context, id int64) (*model.ShippingMethod, error)
}

// PaymentMethodRepository reads configured payment methods.
type PaymentMethodRepository interface {
	All(ctx context.Context) ([]model.PaymentMethod, error)
	Get(ctx context.Context, id int64) (*model.PaymentMethod, error)
}
