package dto

import (
	"github.com/polkiloo/storefront/internal/checkout"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// LineItemRequest adds quantity units of a variant to the cart.
type LineItemRequest struct {
	VariantID int64 `json:"variant_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// QuantityRequest sets the quantity of a line item; zero removes it.
type QuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// AddressRequest is the address step payload.
type AddressRequest struct {
	Email       string         `json:"email"`
	BillAddress *model.Address `json:"bill_address"`
	ShipAddress *model.Address `json:"ship_address"`
	UseBilling  bool           `json:"use_billing"`
}

// ShippingMethodRequest chooses one of the offered rates.
type ShippingMethodRequest struct {
	ShippingMethodID int64 `json:"shipping_method_id" binding:"required"`
}

// PaymentRequest enters a payment for the order total.
type PaymentRequest struct {
	PaymentMethodID int64               `json:"payment_method_id" binding:"required"`
	Source          model.PaymentSource `json:"source"`
}

// AdvanceResponse reports the state change produced by one advance call.
type AdvanceResponse struct {
	From                   string        `json:"from"`
	To                     string        `json:"to"`
	PaymentProfilesEnabled bool          `json:"payment_profiles_enabled,omitempty"`
	PaymentError           string        `json:"payment_error,omitempty"`
	Order                  OrderResponse `json:"order"`
}

// CheckoutAllowedResponse answers whether the order may enter checkout.
type CheckoutAllowedResponse struct {
	Allowed bool `json:"allowed"`
}

// RateResponse is one shipping option with its quoted cost.
type RateResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Cost string `json:"cost"`
}

// ErrorResponse is the body of every failed request. Order is present when
// the failed operation still changed the order, e.g. a declined payment.
type ErrorResponse struct {
	Error string         `json:"error"`
	Field string         `json:"field,omitempty"`
	Order *OrderResponse `json:"order,omitempty"`
}

// NewRateResponses converts rate options in the order they were quoted.
func NewRateResponses(options []checkout.RateOption) []RateResponse {
	resp := make([]RateResponse, 0, len(options))
	for _, opt := range options {
		resp = append(resp, RateResponse{ID: opt.ID, Name: opt.Name, Cost: money(opt.Cost)})
	}
	return resp
}
