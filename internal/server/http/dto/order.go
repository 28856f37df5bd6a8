package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderResponse is the customer facing view of an order.
type OrderResponse struct {
	Number             string               `json:"number"`
	State              string               `json:"state"`
	PaymentState       string               `json:"payment_state,omitempty"`
	ShipmentState      string               `json:"shipment_state,omitempty"`
	Email              string               `json:"email,omitempty"`
	ItemCount          int                  `json:"item_count"`
	ItemTotal          string               `json:"item_total"`
	AdjustmentTotal    string               `json:"adjustment_total"`
	ShipTotal          string               `json:"ship_total"`
	TaxTotal           string               `json:"tax_total"`
	PaymentTotal       string               `json:"payment_total"`
	Total              string               `json:"total"`
	OutstandingBalance string               `json:"outstanding_balance"`
	BillAddress        *model.Address       `json:"bill_address,omitempty"`
	ShipAddress        *model.Address       `json:"ship_address,omitempty"`
	ShippingMethodID   int64                `json:"shipping_method_id,omitempty"`
	LineItems          []LineItemResponse   `json:"line_items"`
	Adjustments        []AdjustmentResponse `json:"adjustments"`
	Payments           []PaymentResponse    `json:"payments"`
	Shipments          []ShipmentResponse   `json:"shipments"`
	CompletedAt        *time.Time           `json:"completed_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

// LineItemResponse is one cart line.
type LineItemResponse struct {
	ID        string `json:"id"`
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Amount    string `json:"amount"`
}

// AdjustmentResponse is a tax, shipping or promotion charge.
type AdjustmentResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Amount   string `json:"amount"`
	Source   string `json:"source,omitempty"`
	Eligible bool   `json:"eligible"`
}

// PaymentResponse hides the source token and exposes only the last digits.
type PaymentResponse struct {
	ID              string `json:"id"`
	PaymentMethodID int64  `json:"payment_method_id"`
	Amount          string `json:"amount"`
	State           string `json:"state"`
	SourceKind      string `json:"source_kind"`
	LastDigits      string `json:"last_digits,omitempty"`
}

// ShipmentResponse is one shipment of the order.
type ShipmentResponse struct {
	Number           string     `json:"number"`
	State            string     `json:"state"`
	ShippingMethodID int64      `json:"shipping_method_id"`
	Cost             string     `json:"cost"`
	ShippedAt        *time.Time `json:"shipped_at,omitempty"`
}

// CreateOrderResponse carries the guest token that must accompany later
// requests for a guest order. It is returned only once.
type CreateOrderResponse struct {
	Order      OrderResponse `json:"order"`
	GuestToken string        `json:"guest_token,omitempty"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NewOrderResponse converts the aggregate into its response shape.
func NewOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		Number:             o.Number,
		State:              string(o.State),
		PaymentState:       string(o.PaymentState),
		ShipmentState:      string(o.ShipmentState),
		Email:              o.Email,
		ItemCount:          o.ItemCount(),
		ItemTotal:          money(o.ItemTotal),
		AdjustmentTotal:    money(o.AdjustmentTotal),
		ShipTotal:          money(o.ShipTotal()),
		TaxTotal:           money(o.TaxTotal()),
		PaymentTotal:       money(o.PaymentTotal),
		Total:              money(o.Total),
		OutstandingBalance: money(o.OutstandingBalance()),
		BillAddress:        o.BillAddress,
		ShipAddress:        o.ShipAddress,
		ShippingMethodID:   o.ShippingMethodID,
		LineItems:          make([]LineItemResponse, 0, len(o.LineItems)),
		Adjustments:        make([]AdjustmentResponse, 0, len(o.Adjustments)),
		Payments:           make([]PaymentResponse, 0, len(o.Payments)),
		Shipments:          make([]ShipmentResponse, 0, len(o.Shipments)),
		CompletedAt:        o.CompletedAt,
		CreatedAt:          o.CreatedAt,
	}
	for _, li := range o.LineItems {
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			ID:        li.ID,
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			Price:     money(li.Price),
			Amount:    money(li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))),
		})
	}
	for _, a := range o.Adjustments {
		resp.Adjustments = append(resp.Adjustments, AdjustmentResponse{
			ID:       a.ID,
			Label:    a.Label,
			Amount:   money(a.Amount),
			Source:   string(a.OriginatorType),
			Eligible: a.Eligible,
		})
	}
	for _, p := range o.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:              p.ID,
			PaymentMethodID: p.PaymentMethodID,
			Amount:          money(p.Amount),
			State:           string(p.State),
			SourceKind:      string(p.Source.Kind),
			LastDigits:      p.Source.LastDigits,
		})
	}
	for _, s := range o.Shipments {
		resp.Shipments = append(resp.Shipments, ShipmentResponse{
			Number:           s.Number,
			State:            string(s.State),
			ShippingMethodID: s.ShippingMethodID,
			Cost:             money(s.Cost),
			ShippedAt:        s.ShippedAt,
		})
	}
	return resp
}
