package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/storefront/internal/checkout"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CheckoutFacadeStub provides controllable behaviour for the order endpoints.
// Unset hooks fall back to a cart order carrying the requested number.
type CheckoutFacadeStub struct {
	TokenParserStub

	CreateFn         func(context.Context, usecase.Actor) (*usecase.CreatedOrder, error)
	GetFn            func(context.Context, usecase.Actor, string) (*model.Order, error)
	AddLineItemFn    func(context.Context, usecase.Actor, string, int64, int) (*model.Order, error)
	SetQuantityFn    func(context.Context, usecase.Actor, string, string, int) (*model.Order, error)
	SetAddressFn     func(context.Context, usecase.Actor, string, usecase.AddressInput) (*model.Order, error)
	SelectShippingFn func(context.Context, usecase.Actor, string, int64) (*model.Order, error)
	AddPaymentFn     func(context.Context, usecase.Actor, string, usecase.PaymentInput) (*model.Order, error)
	AdvanceFn        func(context.Context, usecase.Actor, string) (*usecase.AdvanceResult, error)
	CheckoutFn       func(context.Context, usecase.Actor, string) (bool, error)
	RatesFn          func(context.Context, usecase.Actor, string) ([]checkout.RateOption, error)
	CancelFn         func(context.Context, usecase.Actor, string) (*model.Order, error)
	ClaimFn          func(context.Context, int64, string, string) (*model.Order, error)
}

func stubOrder(number string) *model.Order {
	return model.NewOrder(number, time.Unix(0, 0).UTC())
}

// CreateOrder returns a fresh guest cart unless overridden.
func (s CheckoutFacadeStub) CreateOrder(ctx context.Context, actor usecase.Actor) (*usecase.CreatedOrder, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, actor)
	}
	return &usecase.CreatedOrder{Order: stubOrder("R000000001"), GuestToken: "guest"}, nil
}

// Order returns the configured order.
func (s CheckoutFacadeStub) Order(ctx context.Context, actor usecase.Actor, number string) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, actor, number)
	}
	return stubOrder(number), nil
}

// AddLineItem delegates to the override.
func (s CheckoutFacadeStub) AddLineItem(ctx context.Context, actor usecase.Actor, number string, variantID int64, quantity int) (*model.Order, error) {
	if s.AddLineItemFn != nil {
		return s.AddLineItemFn(ctx, actor, number, variantID, quantity)
	}
	return stubOrder(number), nil
}

// SetQuantity delegates to the override.
func (s CheckoutFacadeStub) SetQuantity(ctx context.Context, actor usecase.Actor, number, lineItemID string, quantity int) (*model.Order, error) {
	if s.SetQuantityFn != nil {
		return s.SetQuantityFn(ctx, actor, number, lineItemID, quantity)
	}
	return stubOrder(number), nil
}

// SetAddress delegates to the override.
func (s CheckoutFacadeStub) SetAddress(ctx context.Context, actor usecase.Actor, number string, in usecase.AddressInput) (*model.Order, error) {
	if s.SetAddressFn != nil {
		return s.SetAddressFn(ctx, actor, number, in)
	}
	return stubOrder(number), nil
}

// SelectShippingMethod delegates to the override.
func (s CheckoutFacadeStub) SelectShippingMethod(ctx context.Context, actor usecase.Actor, number string, methodID int64) (*model.Order, error) {
	if s.SelectShippingFn != nil {
		return s.SelectShippingFn(ctx, actor, number, methodID)
	}
	return stubOrder(number), nil
}

// AddPayment delegates to the override.
func (s CheckoutFacadeStub) AddPayment(ctx context.Context, actor usecase.Actor, number string, in usecase.PaymentInput) (*model.Order, error) {
	if s.AddPaymentFn != nil {
		return s.AddPaymentFn(ctx, actor, number, in)
	}
	return stubOrder(number), nil
}

// Advance delegates to the override.
func (s CheckoutFacadeStub) Advance(ctx context.Context, actor usecase.Actor, number string) (*usecase.AdvanceResult, error) {
	if s.AdvanceFn != nil {
		return s.AdvanceFn(ctx, actor, number)
	}
	o := stubOrder(number)
	o.State = model.OrderStateAddress
	return &usecase.AdvanceResult{Order: o, Transition: &checkout.Transition{From: model.OrderStateCart, To: model.OrderStateAddress}}, nil
}

// CheckoutAllowed delegates to the override.
func (s CheckoutFacadeStub) CheckoutAllowed(ctx context.Context, actor usecase.Actor, number string) (bool, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, actor, number)
	}
	return true, nil
}

// RateHash delegates to the override.
func (s CheckoutFacadeStub) RateHash(ctx context.Context, actor usecase.Actor, number string) ([]checkout.RateOption, error) {
	if s.RatesFn != nil {
		return s.RatesFn(ctx, actor, number)
	}
	return nil, nil
}

// Cancel delegates to the override.
func (s CheckoutFacadeStub) Cancel(ctx context.Context, actor usecase.Actor, number string) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, actor, number)
	}
	o := stubOrder(number)
	o.State = model.OrderStateCanceled
	return o, nil
}

// Claim delegates to the override.
func (s CheckoutFacadeStub) Claim(ctx context.Context, userID int64, number, guestToken string) (*model.Order, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, userID, number, guestToken)
	}
	o := stubOrder(number)
	o.UserID = userID
	return o, nil
}

// BackorderFacadeStub mimics the worker's view of the application.
type BackorderFacadeStub struct {
	Batches   [][]string
	ListFn    func(context.Context, int) ([]string, error)
	FulfillFn func(context.Context, string) (int, error)
	Fulfilled []string

	mu        sync.Mutex
	listCalls int32
}

// Lock exposes internal mutex for external synchronization.
func (s *BackorderFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *BackorderFacadeStub) Unlock() { s.mu.Unlock() }

// BackorderedOrders returns batches from the configured queue.
func (s *BackorderFacadeStub) BackorderedOrders(ctx context.Context, limit int) ([]string, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.listCalls, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// FulfillBackorders records the order and returns the configured fill count.
func (s *BackorderFacadeStub) FulfillBackorders(ctx context.Context, number string) (int, error) {
	s.mu.Lock()
	s.Fulfilled = append(s.Fulfilled, number)
	s.mu.Unlock()
	if s.FulfillFn != nil {
		return s.FulfillFn(ctx, number)
	}
	return 1, nil
}
