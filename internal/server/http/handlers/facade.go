package handlers

import (
	"context"

	"github.com/polkiloo/storefront/internal/checkout"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CartFacade covers order creation and cart editing.
type CartFacade interface {
	CreateOrder(ctx context.Context, actor usecase.Actor) (*usecase.CreatedOrder, error)
	Order(ctx context.Context, actor usecase.Actor, number string) (*model.Order, error)
	AddLineItem(ctx context.Context, actor usecase.Actor, number string, variantID int64, quantity int) (*model.Order, error)
	SetQuantity(ctx context.Context, actor usecase.Actor, number, lineItemID string, quantity int) (*model.Order, error)
	Claim(ctx context.Context, userID int64, number, guestToken string) (*model.Order, error)
}

// StepFacade covers the checkout steps and the state machine.
type StepFacade interface {
	SetAddress(ctx context.Context, actor usecase.Actor, number string, in usecase.AddressInput) (*model.Order, error)
	SelectShippingMethod(ctx context.Context, actor usecase.Actor, number string, methodID int64) (*model.Order, error)
	AddPayment(ctx context.Context, actor usecase.Actor, number string, in usecase.PaymentInput) (*model.Order, error)
	Advance(ctx context.Context, actor usecase.Actor, number string) (*usecase.AdvanceResult, error)
	CheckoutAllowed(ctx context.Context, actor usecase.Actor, number string) (bool, error)
	RateHash(ctx context.Context, actor usecase.Actor, number string) ([]checkout.RateOption, error)
	Cancel(ctx context.Context, actor usecase.Actor, number string) (*model.Order, error)
}

// CheckoutFacade aggregates the full set of operations used across handlers.
type CheckoutFacade interface {
	ParseToken(token string) (int64, error)
	CartFacade
	StepFacade
}
