package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderState represents primary checkout state of an order.
type OrderState string

const (
	OrderStateCart     OrderState = "cart"
	OrderStateAddress  OrderState = "address"
	OrderStateDelivery OrderState = "delivery"
	OrderStatePayment  OrderState = "payment"
	OrderStateConfirm  OrderState = "confirm"
	OrderStateComplete OrderState = "complete"
	OrderStateCanceled OrderState = "canceled"
)

// PaymentState is derived from payment total against order total.
type PaymentState string

const (
	PaymentStateNone       PaymentState = ""
	PaymentStateBalanceDue PaymentState = "balance_due"
	PaymentStatePaid       PaymentState = "paid"
	PaymentStateCreditOwed PaymentState = "credit_owed"
	PaymentStateFailed     PaymentState = "failed"
)

// ShipmentState is derived from the states of the order shipments.
type ShipmentState string

const (
	ShipmentStateNone      ShipmentState = ""
	ShipmentStatePending   ShipmentState = "pending"
	ShipmentStateReady     ShipmentState = "ready"
	ShipmentStatePartial   ShipmentState = "partial"
	ShipmentStateBackorder ShipmentState = "backorder"
	ShipmentStateShipped   ShipmentState = "shipped"
)

// Order is the checkout aggregate root.
type Order struct {
	ID            int64
	Number        string
	State         OrderState
	PaymentState  PaymentState
	ShipmentState ShipmentState

	UserID int64
	User   *User
	Email  string

	ItemTotal       decimal.Decimal
	AdjustmentTotal decimal.Decimal
	PaymentTotal    decimal.Decimal
	Total           decimal.Decimal

	BillAddress      *Address
	ShipAddress      *Address
	ShippingMethodID int64
	GuestTokenHash   string

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	LineItems      []LineItem
	Payments       []Payment
	Shipments      []Shipment
	Adjustments    []Adjustment
	InventoryUnits []InventoryUnit
	StateEvents    []StateEvent
}

// NewOrder returns an empty order in cart state.
func NewOrder(number string, now time.Time) *Order {
	return &Order{
		Number:          number,
		State:           OrderStateCart,
		ItemTotal:       decimal.Zero,
		AdjustmentTotal: decimal.Zero,
		PaymentTotal:    decimal.Zero,
		Total:           decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Completed reports whether the order has been finalized.
func (o *Order) Completed() bool {
	return o.CompletedAt != nil
}

// OutstandingBalance is total minus payment total; negative when overpaid.
func (o *Order) OutstandingBalance() decimal.Decimal {
	return o.Total.Sub(o.PaymentTotal)
}

// HasOutstandingBalance reports whether outstanding balance is non-zero.
func (o *Order) HasOutstandingBalance() bool {
	return !o.OutstandingBalance().IsZero()
}

// CheckoutAllowed reports whether checkout may start.
func (o *Order) CheckoutAllowed() bool {
	return len(o.LineItems) > 0
}

// ItemCount sums quantities of all line items.
func (o *Order) ItemCount() int {
	var n int
	for _, li := range o.LineItems {
		n += li.Quantity
	}
	return n
}

// VariantIDs lists distinct variants in line item order.
func (o *Order) VariantIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.LineItems))
	ids := make([]int64, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		if _, ok := seen[li.VariantID]; ok {
			continue
		}
		seen[li.VariantID] = struct{}{}
		ids = append(ids, li.VariantID)
	}
	return ids
}

// LineItem returns line item by id.
func (o *Order) LineItem(id string) (*LineItem, bool) {
	for i := range o.LineItems {
		if o.LineItems[i].ID == id {
			return &o.LineItems[i], true
		}
	}
	return nil, false
}

// LineItemForVariant returns line item holding the variant.
func (o *Order) LineItemForVariant(variantID int64) (*LineItem, bool) {
	for i := range o.LineItems {
		if o.LineItems[i].VariantID == variantID {
			return &o.LineItems[i], true
		}
	}
	return nil, false
}

// RemoveLineItem drops line item by id.
func (o *Order) RemoveLineItem(id string) bool {
	for i := range o.LineItems {
		if o.LineItems[i].ID == id {
			o.LineItems = append(o.LineItems[:i], o.LineItems[i+1:]...)
			return true
		}
	}
	return false
}

// CheckoutPayment returns the payment in checkout state, if any.
func (o *Order) CheckoutPayment() *Payment {
	for i := range o.Payments {
		if o.Payments[i].State == PaymentCheckout {
			return &o.Payments[i]
		}
	}
	return nil
}

// LastPayment returns the most recently created payment.
func (o *Order) LastPayment() *Payment {
	if len(o.Payments) == 0 {
		return nil
	}
	return &o.Payments[len(o.Payments)-1]
}

// CurrentPayment returns the last payment still awaiting processing.
func (o *Order) CurrentPayment() *Payment {
	for i := len(o.Payments) - 1; i >= 0; i-- {
		switch o.Payments[i].State {
		case PaymentCheckout, PaymentPending:
			return &o.Payments[i]
		}
	}
	return nil
}

// Payment returns payment by id.
func (o *Order) Payment(id string) (*Payment, bool) {
	for i := range o.Payments {
		if o.Payments[i].ID == id {
			return &o.Payments[i], true
		}
	}
	return nil, false
}

// ShipTotal sums eligible shipping adjustments.
func (o *Order) ShipTotal() decimal.Decimal {
	return o.sumAdjustments(OriginatorShippingMethod)
}

// TaxTotal sums eligible tax adjustments.
func (o *Order) TaxTotal() decimal.Decimal {
	return o.sumAdjustments(OriginatorTaxRate)
}

func (o *Order) sumAdjustments(kind OriginatorType) decimal.Decimal {
	total := decimal.Zero
	for _, a := range o.Adjustments {
		if a.OriginatorType == kind && a.Eligible {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// CanCancel reports whether the order may be canceled.
func (o *Order) CanCancel() bool {
	if !o.Completed() || o.State == OrderStateCanceled {
		return false
	}
	switch o.ShipmentState {
	case ShipmentStatePending, ShipmentStateBackorder, ShipmentStateReady:
		return true
	default:
		return false
	}
}

// TaxAddress resolves the address used for tax zone matching.
func (o *Order) TaxAddress(useShipAddress bool) *Address {
	if useShipAddress {
		return o.ShipAddress
	}
	return o.BillAddress
}

// Clone returns a deep copy so that a failed operation leaves the original untouched.
func (o *Order) Clone() *Order {
	c := *o
	if o.User != nil {
		u := *o.User
		c.User = &u
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	c.BillAddress = o.BillAddress.Clone()
	c.ShipAddress = o.ShipAddress.Clone()
	c.LineItems = append([]LineItem(nil), o.LineItems...)
	c.Payments = make([]Payment, len(o.Payments))
	for i, p := range o.Payments {
		c.Payments[i] = p.Clone()
	}
	c.Shipments = make([]Shipment, len(o.Shipments))
	for i, s := range o.Shipments {
		c.Shipments[i] = s.Clone()
	}
	c.Adjustments = append([]Adjustment(nil), o.Adjustments...)
	c.InventoryUnits = append([]InventoryUnit(nil), o.InventoryUnits...)
	c.StateEvents = append([]StateEvent(nil), o.StateEvents...)
	return &c
}
