package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/polkiloo/storefront/internal/checkout"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// AddressInput is the address step form. UseBilling copies the bill address
// to the ship address.
type AddressInput struct {
	Email      string
	Bill       *model.Address
	Ship       *model.Address
	UseBilling bool
}

// PaymentInput is the payment step form.
type PaymentInput struct {
	MethodID int64
	Source   model.PaymentSource
}

// SetAddress records email and addresses. Tax is recomputed when the order is
// already past the cart.
func (u *OrderUseCase) SetAddress(ctx context.Context, actor Actor, number string, in AddressInput) (*model.Order, error) {
	if err := validateAddressInput(in); err != nil {
		return nil, err
	}
	return u.mutate(ctx, "SetAddress", &actor, number, func(ctx context.Context, _ repository.Factory, eng *checkout.Engine, o *model.Order) error {
		if err := editable(o); err != nil {
			return err
		}
		if email := strings.TrimSpace(in.Email); email != "" {
			o.Email = email
		}
		if in.Bill != nil {
			o.BillAddress = in.Bill.Clone()
		}
		switch {
		case in.UseBilling:
			if o.BillAddress == nil {
				return domainErrors.NewValidationError("bill_address", "is required when use_billing is set")
			}
			o.ShipAddress = o.BillAddress.Clone()
		case in.Ship != nil:
			o.ShipAddress = in.Ship.Clone()
		}
		if o.State != model.OrderStateCart {
			if err := eng.RecomputeTax(ctx, o); err != nil {
				return err
			}
		}
		return eng.Update(ctx, o)
	})
}

func validateAddressInput(in AddressInput) error {
	if email := strings.TrimSpace(in.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return &domainErrors.ValidationError{Field: "email", Message: "is invalid", Err: err}
		}
	}
	if in.Bill != nil {
		if missing := in.Bill.MissingFields(); len(missing) > 0 {
			return domainErrors.NewValidationError("bill_address", "missing "+strings.Join(missing, ", "))
		}
	}
	if in.Ship != nil && !in.UseBilling {
		if missing := in.Ship.MissingFields(); len(missing) > 0 {
			return domainErrors.NewValidationError("ship_address", "missing "+strings.Join(missing, ", "))
		}
	}
	return nil
}

// SelectShippingMethod chooses one of the rates offered for the ship address.
func (u *OrderUseCase) SelectShippingMethod(ctx context.Context, actor Actor, number string, methodID int64) (*model.Order, error) {
	return u.mutate(ctx, "SelectShippingMethod", &actor, number, func(ctx context.Context, _ repository.Factory, eng *checkout.Engine, o *model.Order) error {
		if err := editable(o); err != nil {
			return err
		}
		rates, err := eng.RateHash(ctx, o)
		if err != nil {
			return err
		}
		if len(rates) == 0 {
			return domainErrors.ErrNoShippingMethods
		}
		for _, r := range rates {
			if r.ID == methodID {
				o.ShippingMethodID = methodID
				return eng.Update(ctx, o)
			}
		}
		return domainErrors.NewValidationError("shipping_method", "is not available for this address")
	})
}

// AddPayment enters a payment for the order total. A payment still in
// checkout is voided first so at most one remains.
func (u *OrderUseCase) AddPayment(ctx context.Context, actor Actor, number string, in PaymentInput) (*model.Order, error) {
	src, err := normalizeSource(in.Source)
	if err != nil {
		return nil, err
	}
	return u.mutate(ctx, "AddPayment", &actor, number, func(ctx context.Context, tx repository.Factory, eng *checkout.Engine, o *model.Order) error {
		if o.State != model.OrderStatePayment && o.State != model.OrderStateConfirm {
			return fmt.Errorf("add payment in %s: %w", o.State, domainErrors.ErrInvalidTransition)
		}
		method, err := tx.PaymentMethods().Get(ctx, in.MethodID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return &domainErrors.ValidationError{Field: "payment_method_id", Message: "does not exist", Err: err}
			}
			return err
		}
		if !method.AvailableFor(o.BillAddress) {
			return domainErrors.NewValidationError("payment_method_id", "is not available for this order")
		}
		if src.Kind == model.SourceProfile && !method.SupportsProfiles {
			return domainErrors.NewValidationError("source", "payment profiles are not supported by this method")
		}

		if existing := o.CheckoutPayment(); existing != nil {
			existing.State = model.PaymentVoid
		}
		o.Payments = append(o.Payments, model.Payment{
			ID:              u.newID(),
			Amount:          o.Total,
			State:           model.PaymentCheckout,
			PaymentMethodID: method.ID,
			Source:          src,
			CreatedAt:       u.now(),
		})
		return eng.Update(ctx, o)
	})
}

func normalizeSource(src model.PaymentSource) (model.PaymentSource, error) {
	src.Token = strings.TrimSpace(src.Token)
	if src.Token == "" {
		return src, domainErrors.NewValidationError("source", "token is required")
	}
	switch src.Kind {
	case "":
		src.Kind = model.SourceCard
	case model.SourceCard, model.SourceProfile:
	default:
		return src, domainErrors.NewValidationError("source", "unknown kind "+string(src.Kind))
	}
	if src.Kind == model.SourceCard && src.LastDigits == "" {
		digits := src.Token
		if len(digits) > 4 {
			digits = digits[len(digits)-4:]
		}
		src.LastDigits = digits
	}
	return src, nil
}

// AdvanceResult is the outcome of one checkout step.
type AdvanceResult struct {
	Order      *model.Order
	Transition *checkout.Transition
}

// Advance moves the order one checkout step forward. When payment capture
// fails and checkout does not tolerate it, the failed payment is persisted
// and the gateway error is returned along with the order.
func (u *OrderUseCase) Advance(ctx context.Context, actor Actor, number string) (*AdvanceResult, error) {
	started := time.Now()
	var (
		tr      *checkout.Transition
		from    model.OrderState
		payErr  error
		notices []model.Notice
	)
	o, err := u.mutate(ctx, "Advance", &actor, number, func(ctx context.Context, _ repository.Factory, eng *checkout.Engine, o *model.Order) error {
		from = o.State
		var err error
		tr, err = eng.Advance(ctx, o)
		if err != nil {
			if domainErrors.IsGateway(err) {
				payErr = err
				return nil
			}
			return err
		}
		notices = tr.Notices
		return nil
	})

	if u.metrics != nil {
		to := from
		if tr != nil {
			to = tr.To
		}
		result := err
		if result == nil {
			result = payErr
		}
		u.metrics.RecordTransition(ctx, string(from), string(to), result)
		u.metrics.RecordAdvanceDuration(ctx, time.Since(started))
	}
	if err != nil {
		return nil, err
	}
	if payErr != nil {
		u.recordGatewayFailure(ctx, payErr)
		return &AdvanceResult{Order: o}, payErr
	}
	if tr.PaymentError != nil {
		u.recordGatewayFailure(ctx, tr.PaymentError)
	}

	u.logger.InfoContext(ctx, "order advanced",
		slog.String("order", o.Number),
		slog.String("from", string(tr.From)),
		slog.String("to", string(tr.To)),
	)
	u.deliver(ctx, notices)
	return &AdvanceResult{Order: o, Transition: tr}, nil
}

// CheckoutAllowed reports whether the order may enter checkout.
func (u *OrderUseCase) CheckoutAllowed(ctx context.Context, actor Actor, number string) (bool, error) {
	var allowed bool
	err := u.read(ctx, "CheckoutAllowed", actor, number, func(_ context.Context, _ repository.Factory, _ *checkout.Engine, o *model.Order) error {
		allowed = o.CheckoutAllowed()
		return nil
	})
	return allowed, err
}

// RateHash prices the shipping methods available for the order, cheapest first.
func (u *OrderUseCase) RateHash(ctx context.Context, actor Actor, number string) ([]checkout.RateOption, error) {
	var rates []checkout.RateOption
	err := u.read(ctx, "RateHash", actor, number, func(ctx context.Context, _ repository.Factory, eng *checkout.Engine, o *model.Order) error {
		var err error
		rates, err = eng.RateHash(ctx, o)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// Cancel cancels a completed, unshipped order.
func (u *OrderUseCase) Cancel(ctx context.Context, actor Actor, number string) (*model.Order, error) {
	var notices []model.Notice
	o, err := u.mutate(ctx, "Cancel", &actor, number, func(ctx context.Context, _ repository.Factory, eng *checkout.Engine, o *model.Order) error {
		tr, err := eng.Cancel(ctx, o)
		if err != nil {
			return err
		}
		notices = tr.Notices
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.logger.InfoContext(ctx, "order canceled", slog.String("order", o.Number))
	u.deliver(ctx, notices)
	return o, nil
}
