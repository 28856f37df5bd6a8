package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestShippingCost(t *testing.T) {
	order := cartOrder() // 3 items, item total 100
	tests := []struct {
		name  string
		calc  model.CalculatorSpec
		want  string
		apply bool
	}{
		{name: "flat rate", calc: model.CalculatorSpec{Type: CalculatorFlatRate, Preferences: map[string]decimal.Decimal{PrefAmount: d("10")}}, want: "10", apply: true},
		{name: "per item", calc: model.CalculatorSpec{Type: CalculatorPerItem, Preferences: map[string]decimal.Decimal{PrefAmount: d("2.5")}}, want: "7.5", apply: true},
		{name: "flat percent", calc: model.CalculatorSpec{Type: CalculatorFlatPercentItemTotal, Preferences: map[string]decimal.Decimal{PrefFlatPercent: d("12.5")}}, want: "12.5", apply: true},
		{name: "price sack below minimum", calc: model.CalculatorSpec{Type: CalculatorPriceSack, Preferences: map[string]decimal.Decimal{
			PrefMinimalAmount: d("150"), PrefNormalAmount: d("10"), PrefDiscountAmount: d("1"),
		}}, want: "10", apply: true},
		{name: "price sack above minimum", calc: model.CalculatorSpec{Type: CalculatorPriceSack, Preferences: map[string]decimal.Decimal{
			PrefMinimalAmount: d("50"), PrefNormalAmount: d("10"), PrefDiscountAmount: d("1"),
		}}, want: "1", apply: true},
		{name: "free", calc: model.CalculatorSpec{Type: CalculatorFreeShipping}, want: "0", apply: true},
		{name: "unknown", calc: model.CalculatorSpec{Type: "teleport"}, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ShippingCost(tt.calc, order)
			assert.Equal(t, tt.apply, ok)
			assert.True(t, got.Equal(d(tt.want)), "cost %s", got)
		})
	}
}

func TestPerItemNotApplicableToEmptyOrder(t *testing.T) {
	_, ok := ShippingCost(model.CalculatorSpec{Type: CalculatorPerItem}, model.NewOrder("R1", fixedNow))
	assert.False(t, ok)
}

func TestTaxAmountRespectsCategory(t *testing.T) {
	o := cartOrder()
	o.LineItems[0].TaxCategoryID = 1 // 50 taxable
	o.LineItems[1].TaxCategoryID = 2

	got, ok := TaxAmount(model.TaxRate{Amount: d("0.1"), TaxCategoryID: 1}, o)
	assert.True(t, ok)
	assert.True(t, got.Equal(d("5")), "tax %s", got)

	got, _ = TaxAmount(model.TaxRate{Amount: d("0.0825")}, o)
	assert.True(t, got.Equal(d("8.25")), "tax %s", got)

	_, ok = TaxAmount(model.TaxRate{Amount: d("0.1"), Calculator: model.CalculatorSpec{Type: "unknown"}}, o)
	assert.False(t, ok)
}
