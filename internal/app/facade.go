package app

import (
	"context"

	"github.com/polkiloo/storefront/internal/checkout"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CheckoutFacade is the single entry point the HTTP layer and the backorder
// worker use to reach the order use cases.
type CheckoutFacade struct {
	orders *usecase.OrderUseCase
	tokens pkgAuth.Strategy
}

func NewCheckoutFacade(orders *usecase.OrderUseCase, tokens pkgAuth.Strategy) *CheckoutFacade {
	return &CheckoutFacade{orders: orders, tokens: tokens}
}

func (f *CheckoutFacade) ParseToken(token string) (int64, error) {
	return f.tokens.ParseToken(token)
}

func (f *CheckoutFacade) CreateOrder(ctx context.Context, actor usecase.Actor) (*usecase.CreatedOrder, error) {
	return f.orders.Create(ctx, actor)
}

func (f *CheckoutFacade) Order(ctx context.Context, actor usecase.Actor, number string) (*model.Order, error) {
	return f.orders.Get(ctx, actor, number)
}

func (f *CheckoutFacade) AddLineItem(ctx context.Context, actor usecase.Actor, number string, variantID int64, quantity int) (*model.Order, error) {
	return f.orders.AddLineItem(ctx, actor, number, variantID, quantity)
}

func (f *CheckoutFacade) SetQuantity(ctx context.Context, actor usecase.Actor, number, lineItemID string, quantity int) (*model.Order, error) {
	return f.orders.SetQuantity(ctx, actor, number, lineItemID, quantity)
}

func (f *CheckoutFacade) SetAddress(ctx context.Context, actor usecase.Actor, number string, in usecase.AddressInput) (*model.Order, error) {
	return f.orders.SetAddress(ctx, actor, number, in)
}

func (f *CheckoutFacade) SelectShippingMethod(ctx context.Context, actor usecase.Actor, number string, methodID int64) (*model.Order, error) {
	return f.orders.SelectShippingMethod(ctx, actor, number, methodID)
}

func (f *CheckoutFacade) AddPayment(ctx context.Context, actor usecase.Actor, number string, in usecase.PaymentInput) (*model.Order, error) {
	return f.orders.AddPayment(ctx, actor, number, in)
}

func (f *CheckoutFacade) Advance(ctx context.Context, actor usecase.Actor, number string) (*usecase.AdvanceResult, error) {
	return f.orders.Advance(ctx, actor, number)
}

func (f *CheckoutFacade) CheckoutAllowed(ctx context.Context, actor usecase.Actor, number string) (bool, error) {
	return f.orders.CheckoutAllowed(ctx, actor, number)
}

func (f *CheckoutFacade) RateHash(ctx context.Context, actor usecase.Actor, number string) ([]checkout.RateOption, error) {
	return f.orders.RateHash(ctx, actor, number)
}

func (f *CheckoutFacade) Cancel(ctx context.Context, actor usecase.Actor, number string) (*model.Order, error) {
	return f.orders.Cancel(ctx, actor, number)
}

func (f *CheckoutFacade) Claim(ctx context.Context, userID int64, number, guestToken string) (*model.Order, error) {
	return f.orders.Claim(ctx, userID, number, guestToken)
}

func (f *CheckoutFacade) BackorderedOrders(ctx context.Context, limit int) ([]string, error) {
	return f.orders.BackorderedOrders(ctx, limit)
}

func (f *CheckoutFacade) FulfillBackorders(ctx context.Context, number string) (int, error) {
	return f.orders.FulfillBackorders(ctx, number)
}
