package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Calculator types.
const (
	CalculatorSalesTax             = "sales_tax"
	CalculatorVAT                  = "vat"
	CalculatorFlatRate             = "flat_rate"
	CalculatorPerItem              = "per_item"
	CalculatorFlatPercentItemTotal = "flat_percent_item_total"
	CalculatorPriceSack            = "price_sack"
	CalculatorFreeShipping         = "free_shipping"
)

// Calculator preference keys.
const (
	PrefAmount         = "amount"
	PrefFlatPercent    = "flat_percent"
	PrefMinimalAmount  = "minimal_amount"
	PrefNormalAmount   = "normal_amount"
	PrefDiscountAmount = "discount_amount"
)

var hundred = decimal.NewFromInt(100)

// TaxAmount computes the adjustment amount a tax rate yields for the order.
// The second result is false when the calculator does not apply.
func TaxAmount(rate model.TaxRate, o *model.Order) (decimal.Decimal, bool) {
	taxable := decimal.Zero
	for _, li := range o.LineItems {
		if rate.TaxCategoryID == 0 || li.TaxCategoryID == rate.TaxCategoryID {
			taxable = taxable.Add(li.Amount())
		}
	}

	switch rate.Calculator.Type {
	case "", CalculatorSalesTax:
		return model.RoundMoney(taxable.Mul(rate.Amount)), true
	case CalculatorVAT:
		// prices already include VAT; extract the tax portion
		divisor := decimal.NewFromInt(1).Add(rate.Amount)
		if divisor.IsZero() {
			return decimal.Zero, false
		}
		return model.RoundMoney(taxable.Mul(rate.Amount).Div(divisor)), true
	default:
		return decimal.Zero, false
	}
}

// ShippingCost prices a shipping calculator for the order.
// The second result is false when the method cannot ship this order.
func ShippingCost(calc model.CalculatorSpec, o *model.Order) (decimal.Decimal, bool) {
	switch calc.Type {
	case CalculatorFlatRate:
		return model.RoundMoney(calc.Preference(PrefAmount)), true
	case CalculatorPerItem:
		count := o.ItemCount()
		if count == 0 {
			return decimal.Zero, false
		}
		return model.RoundMoney(calc.Preference(PrefAmount).Mul(decimal.NewFromInt(int64(count)))), true
	case CalculatorFlatPercentItemTotal:
		itemTotal := ItemTotal(o.LineItems)
		return model.RoundMoney(itemTotal.Mul(calc.Preference(PrefFlatPercent)).Div(hundred)), true
	case CalculatorPriceSack:
		if ItemTotal(o.LineItems).LessThan(calc.Preference(PrefMinimalAmount)) {
			return model.RoundMoney(calc.Preference(PrefNormalAmount)), true
		}
		return model.RoundMoney(calc.Preference(PrefDiscountAmount)), true
	case CalculatorFreeShipping:
		return decimal.Zero, true
	default:
		return decimal.Zero, false
	}
}
