package model

import "github.com/shopspring/decimal"

// LineItem is a quantity of a variant at a captured unit price.
type LineItem struct {
	ID            string
	VariantID     int64
	Quantity      int
	Price         decimal.Decimal
	TaxCategoryID int64
	StockLocation string
}

// Amount is quantity times unit price.
func (li LineItem) Amount() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
