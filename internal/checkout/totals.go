package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ItemTotal sums line item amounts.
func ItemTotal(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Amount())
	}
	return total
}

// PaymentTotal sums completed payments.
func PaymentTotal(payments []model.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.State == model.PaymentCompleted {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// AdjustmentTotal sums eligible adjustments.
func AdjustmentTotal(adjustments []model.Adjustment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range adjustments {
		if a.Eligible {
			total = total.Add(a.Amount)
		}
	}
	return total
}

func updateTotals(o *model.Order) {
	o.ItemTotal = ItemTotal(o.LineItems)
	o.PaymentTotal = PaymentTotal(o.Payments)
	o.AdjustmentTotal = AdjustmentTotal(o.Adjustments)
	o.Total = o.ItemTotal.Add(o.AdjustmentTotal)
}
