package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// Transition describes the outcome of a successful state change.
type Transition struct {
	From                   model.OrderState
	To                     model.OrderState
	PaymentProfilesEnabled bool
	Notices                []model.Notice
	// PaymentError is set when checkout completed despite a gateway failure.
	PaymentError error
}

// Advance moves the order to its next checkout state.
//
// On failure the order is unchanged, with one exception: when payment capture
// fails and the policy does not tolerate it, the order keeps its failed payment
// and stays in confirm so the attempt can be persisted.
func (e *Engine) Advance(ctx context.Context, o *model.Order) (*Transition, error) {
	work := o.Clone()
	tr := &Transition{From: o.State}

	var err error
	switch o.State {
	case model.OrderStateCart:
		err = e.fromCart(work)
	case model.OrderStateAddress:
		err = e.fromAddress(ctx, work)
	case model.OrderStateDelivery:
		err = e.fromDelivery(ctx, work, tr)
	case model.OrderStatePayment:
		err = e.fromPayment(work)
	case model.OrderStateConfirm:
		var abort bool
		abort, err = e.fromConfirm(ctx, work, tr)
		if abort {
			*o = *work
			return nil, err
		}
	default:
		err = fmt.Errorf("advance from %s: %w", o.State, domainErrors.ErrInvalidTransition)
	}
	if err != nil {
		return nil, err
	}

	if err := e.update(ctx, work); err != nil {
		return nil, err
	}
	tr.To = work.State
	*o = *work
	return tr, nil
}

func (e *Engine) fromCart(o *model.Order) error {
	if !o.CheckoutAllowed() {
		return &domainErrors.ValidationError{Field: "line_items", Message: "cart is empty", Err: domainErrors.ErrCheckoutNotAllowed}
	}
	e.transition(o, model.OrderStateAddress)
	return nil
}

func (e *Engine) fromAddress(ctx context.Context, o *model.Order) error {
	if err := validateAddressStep(o); err != nil {
		return err
	}
	if err := e.RecomputeTax(ctx, o); err != nil {
		return err
	}
	rates, err := e.RateHash(ctx, o)
	if err != nil {
		return err
	}
	if len(rates) == 0 {
		return domainErrors.ErrNoShippingMethods
	}
	e.transition(o, model.OrderStateDelivery)
	return nil
}

func (e *Engine) fromDelivery(ctx context.Context, o *model.Order, tr *Transition) error {
	rates, err := e.RateHash(ctx, o)
	if err != nil {
		return err
	}
	if len(rates) == 0 {
		return domainErrors.ErrNoShippingMethods
	}
	if o.ShippingMethodID == 0 {
		return domainErrors.NewValidationError("shipping_method", "must be selected")
	}
	chosen, ok := findRate(rates, o.ShippingMethodID)
	if !ok {
		return domainErrors.NewValidationError("shipping_method", "is not available for this address")
	}

	if err := e.CreateShipment(ctx, o, chosen); err != nil {
		return err
	}
	if err := e.update(ctx, o); err != nil {
		return err
	}

	method, err := e.PaymentMethodFor(ctx, o)
	if err != nil {
		return err
	}
	tr.PaymentProfilesEnabled = method != nil && method.SupportsProfiles

	e.transition(o, model.OrderStatePayment)
	if o.Total.IsZero() {
		e.transition(o, model.OrderStateConfirm)
	}
	return nil
}

func (e *Engine) fromPayment(o *model.Order) error {
	if o.Total.IsPositive() && o.CurrentPayment() == nil {
		return domainErrors.NewValidationError("payment", "is required")
	}
	e.transition(o, model.OrderStateConfirm)
	return nil
}

// fromConfirm reports abort=true when a gateway failure must be persisted
// without completing the order.
func (e *Engine) fromConfirm(ctx context.Context, o *model.Order, tr *Transition) (bool, error) {
	if err := checkFinalizable(o); err != nil {
		return false, err
	}
	if err := e.ProcessPayments(ctx, o); err != nil {
		var gwErr *domainErrors.GatewayError
		if !errors.As(err, &gwErr) {
			return false, err
		}
		if !e.settings.AllowCheckoutOnGatewayError {
			if uerr := e.update(ctx, o); uerr != nil {
				return false, uerr
			}
			return true, err
		}
		tr.PaymentError = err
	}

	if err := e.update(ctx, o); err != nil {
		return false, err
	}
	notice, err := e.Finalize(ctx, o)
	if err != nil {
		return false, err
	}
	tr.Notices = append(tr.Notices, notice)
	e.transition(o, model.OrderStateComplete)
	return false, nil
}

// Cancel cancels a completed, unshipped order and restocks its units.
func (e *Engine) Cancel(ctx context.Context, o *model.Order) (*Transition, error) {
	if !o.CanCancel() {
		return nil, domainErrors.ErrCannotCancel
	}
	work := o.Clone()
	tr := &Transition{From: o.State}

	if e.settings.TrackInventoryLevels {
		if err := e.inventory.Restock(ctx, work); err != nil {
			return nil, fmt.Errorf("restock: %w", err)
		}
	}
	for i := range work.Payments {
		if work.Payments[i].Voidable() {
			work.Payments[i].State = model.PaymentVoid
		}
	}
	e.transition(work, model.OrderStateCanceled)

	if err := e.update(ctx, work); err != nil {
		return nil, err
	}
	notice, err := e.newNotice(work, model.NoticeCancellation)
	if err != nil {
		return nil, err
	}
	tr.To = work.State
	tr.Notices = append(tr.Notices, notice)
	*o = *work
	return tr, nil
}

// FillBackorders sells backordered units whose stock has arrived and reconciles.
func (e *Engine) FillBackorders(ctx context.Context, o *model.Order) (int, error) {
	if !e.Backordered(o) {
		return 0, nil
	}
	work := o.Clone()
	filled, err := e.inventory.FillBackorders(ctx, work)
	if err != nil {
		return 0, fmt.Errorf("fill backorders: %w", err)
	}
	if filled == 0 {
		return 0, nil
	}
	if err := e.update(ctx, work); err != nil {
		return 0, err
	}
	*o = *work
	return filled, nil
}

func (e *Engine) transition(o *model.Order, to model.OrderState) {
	o.StateEvents = append(o.StateEvents, model.StateEvent{
		ID:            e.newID(),
		Name:          model.StateEventOrder,
		PreviousState: string(o.State),
		NextState:     string(to),
		UserID:        o.UserID,
		CreatedAt:     e.now(),
	})
	o.State = to
}

func validateAddressStep(o *model.Order) error {
	if strings.TrimSpace(o.Email) == "" {
		return domainErrors.NewValidationError("email", "is required")
	}
	if missing := o.BillAddress.MissingFields(); len(missing) > 0 {
		return domainErrors.NewValidationError("bill_address", "missing "+strings.Join(missing, ", "))
	}
	if missing := o.ShipAddress.MissingFields(); len(missing) > 0 {
		return domainErrors.NewValidationError("ship_address", "missing "+strings.Join(missing, ", "))
	}
	return nil
}

func findRate(rates []RateOption, methodID int64) (RateOption, bool) {
	for _, r := range rates {
		if r.ID == methodID {
			return r, true
		}
	}
	return RateOption{}, false
}
