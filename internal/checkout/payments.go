package checkout

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/gateway"
)

// ProcessPayments captures the current payment. A failure marks the payment
// failed and is returned as *errors.GatewayError.
func (e *Engine) ProcessPayments(ctx context.Context, o *model.Order) error {
	p := o.CurrentPayment()
	if p == nil {
		return nil
	}

	method, err := e.payments.Get(ctx, p.PaymentMethodID)
	if err != nil {
		return fmt.Errorf("load payment method %d: %w", p.PaymentMethodID, err)
	}

	p.State = model.PaymentProcessing
	callCtx := ctx
	if e.settings.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.settings.GatewayTimeout)
		defer cancel()
	}

	receipt, err := e.gateway.Process(callCtx, gateway.Charge{
		PaymentID:   p.ID,
		OrderNumber: o.Number,
		Email:       o.Email,
		Amount:      p.Amount,
		Method:      *method,
		Source:      p.Source,
	})
	p.ResponseCode = receipt.ResponseCode
	if err != nil {
		p.State = model.PaymentFailed
		return &domainErrors.GatewayError{
			PaymentID: p.ID,
			Reference: receipt.Reference,
			Timeout:   errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded),
			Err:       err,
		}
	}

	p.State = model.PaymentCompleted
	o.PaymentTotal = PaymentTotal(o.Payments)
	return nil
}

// PaymentMethodFor returns the method of the first completed payment, else the
// first active method available for the bill address. Nil when none applies.
func (e *Engine) PaymentMethodFor(ctx context.Context, o *model.Order) (*model.PaymentMethod, error) {
	for _, p := range o.Payments {
		if p.State == model.PaymentCompleted {
			return e.payments.Get(ctx, p.PaymentMethodID)
		}
	}
	methods, err := e.payments.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payment methods: %w", err)
	}
	for _, m := range methods {
		if m.AvailableFor(o.BillAddress) {
			method := m
			return &method, nil
		}
	}
	return nil, nil
}
