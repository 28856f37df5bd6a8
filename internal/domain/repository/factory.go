package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Variants() VariantRepository
	Stock() StockRepository
	TaxRates() TaxRateRepository
	ShippingMethods() ShippingMethodRepository
	PaymentMethods() PaymentMethodRepository
}

// Transactor runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Factory) error) error
}
