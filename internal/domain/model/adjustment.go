package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OriginatorType identifies what produced an adjustment.
type OriginatorType string

const (
	OriginatorNone           OriginatorType = ""
	OriginatorTaxRate        OriginatorType = "tax_rate"
	OriginatorShippingMethod OriginatorType = "shipping_method"
	OriginatorPromotion      OriginatorType = "promotion"
)

// Adjustment is a signed charge or credit applied to the order total.
type Adjustment struct {
	ID             string
	Amount         decimal.Decimal
	Label          string
	OriginatorType OriginatorType
	OriginatorID   int64
	Eligible       bool
	Mandatory      bool
	Locked         bool
	CreatedAt      time.Time
}

// Optional reports whether the adjustment is not mandatory.
func (a Adjustment) Optional() bool {
	return !a.Mandatory
}

// HasOriginator reports whether the adjustment was produced by a source object.
func (a Adjustment) HasOriginator() bool {
	return a.OriginatorType != OriginatorNone && a.OriginatorID != 0
}
