package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// Update recomputes totals and derived states. It is idempotent; on error the
// order is left exactly as it was.
func (e *Engine) Update(ctx context.Context, o *model.Order) error {
	work := o.Clone()
	if err := e.update(ctx, work); err != nil {
		return err
	}
	*o = *work
	return nil
}

func (e *Engine) update(ctx context.Context, o *model.Order) error {
	e.refresh(o)

	for _, hook := range e.hooks {
		if err := hook(ctx, o); err != nil {
			return fmt.Errorf("update hook: %w", err)
		}
	}

	for i := range o.Adjustments {
		if err := e.updateAdjustment(ctx, o, &o.Adjustments[i]); err != nil {
			return err
		}
	}
	// adjustments may have moved the total
	e.refresh(o)

	for i := range o.Shipments {
		e.updateShipment(o, &o.Shipments[i])
	}
	o.ShipmentState = e.deriveShipmentState(o)
	return nil
}

func (e *Engine) refresh(o *model.Order) {
	updateTotals(o)
	o.PaymentState = derivePaymentState(o)
	o.ShipmentState = e.deriveShipmentState(o)
	syncCheckoutPayment(o)
}

func derivePaymentState(o *model.Order) model.PaymentState {
	switch {
	case model.MoneyEqual(o.PaymentTotal, o.Total):
		return model.PaymentStatePaid
	case o.PaymentTotal.GreaterThan(o.Total):
		return model.PaymentStateCreditOwed
	default:
		if last := o.LastPayment(); last != nil && last.State == model.PaymentFailed {
			return model.PaymentStateFailed
		}
		return model.PaymentStateBalanceDue
	}
}

// deriveShipmentState applies the priority shipped, backorder, partial, ready, pending.
func (e *Engine) deriveShipmentState(o *model.Order) model.ShipmentState {
	if len(o.Shipments) == 0 {
		return model.ShipmentStateNone
	}
	shipped := 0
	ready := false
	for _, s := range o.Shipments {
		switch s.State {
		case model.ShipmentShipped:
			shipped++
		case model.ShipmentReady:
			ready = true
		}
	}
	switch {
	case shipped == len(o.Shipments):
		return model.ShipmentStateShipped
	case e.Backordered(o):
		return model.ShipmentStateBackorder
	case shipped > 0:
		return model.ShipmentStatePartial
	case ready:
		return model.ShipmentStateReady
	default:
		return model.ShipmentStatePending
	}
}

func syncCheckoutPayment(o *model.Order) {
	if p := o.CheckoutPayment(); p != nil {
		p.Amount = o.Total
	}
}

func (e *Engine) updateShipment(o *model.Order, s *model.Shipment) {
	if s.State == model.ShipmentShipped {
		return
	}
	// Backordered units hold the shipment back; the order level shipment_state
	// still reports backorder.
	if e.settings.TrackInventoryLevels {
		for _, u := range o.UnitsForShipment(s.ID) {
			if u.State == model.UnitBackordered {
				s.State = model.ShipmentPending
				return
			}
		}
	}
	switch o.PaymentState {
	case model.PaymentStatePaid, model.PaymentStateCreditOwed:
		s.State = model.ShipmentReady
	default:
		s.State = model.ShipmentPending
	}
}

func (e *Engine) updateAdjustment(ctx context.Context, o *model.Order, a *model.Adjustment) error {
	if a.Locked {
		return nil
	}
	switch a.OriginatorType {
	case model.OriginatorTaxRate:
		rate, err := e.taxRates.Get(ctx, a.OriginatorID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				break
			}
			return fmt.Errorf("load tax rate %d: %w", a.OriginatorID, err)
		}
		amount, ok := TaxAmount(*rate, o)
		if !ok {
			amount = decimal.Zero
		}
		a.Amount = amount
	case model.OriginatorShippingMethod:
		method, err := e.shipping.Get(ctx, a.OriginatorID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				break
			}
			return fmt.Errorf("load shipping method %d: %w", a.OriginatorID, err)
		}
		cost, ok := ShippingCost(method.Calculator, o)
		if !ok {
			cost = decimal.Zero
		}
		a.Amount = cost
	default:
		return nil
	}
	a.Eligible = a.Mandatory || !a.Amount.IsZero()
	return nil
}
