package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestUpdateSumsOnlyEligibleAdjustments(t *testing.T) {
	e := newFixture().engine()
	o := model.NewOrder("R1", fixedNow)
	o.LineItems = []model.LineItem{{ID: "li", VariantID: 1, Quantity: 1, Price: d("100")}}
	o.Adjustments = []model.Adjustment{
		{ID: "a1", Amount: d("10"), Eligible: true},
		{ID: "a2", Amount: d("5"), Eligible: true},
		{ID: "a3", Amount: d("-2"), Eligible: false},
	}

	require.NoError(t, e.Update(context.Background(), o))

	assert.True(t, o.ItemTotal.Equal(d("100")), "item total %s", o.ItemTotal)
	assert.True(t, o.AdjustmentTotal.Equal(d("15")), "adjustment total %s", o.AdjustmentTotal)
	assert.True(t, o.Total.Equal(d("115")), "total %s", o.Total)
	assert.True(t, o.Total.Equal(o.ItemTotal.Add(o.AdjustmentTotal)))
}

func TestUpdatePaymentState(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		payments []model.Payment
		want     model.PaymentState
	}{
		{
			name:     "paid within currency precision",
			total:    "100.01",
			payments: []model.Payment{{ID: "p", Amount: d("100.012343"), State: model.PaymentCompleted}},
			want:     model.PaymentStatePaid,
		},
		{
			name:     "credit owed",
			total:    "100",
			payments: []model.Payment{{ID: "p", Amount: d("110"), State: model.PaymentCompleted}},
			want:     model.PaymentStateCreditOwed,
		},
		{
			name:     "failed when last payment failed",
			total:    "100",
			payments: []model.Payment{{ID: "p", Amount: d("100"), State: model.PaymentFailed}},
			want:     model.PaymentStateFailed,
		},
		{
			name:  "balance due after earlier failure",
			total: "100",
			payments: []model.Payment{
				{ID: "p1", Amount: d("100"), State: model.PaymentFailed},
				{ID: "p2", Amount: d("100"), State: model.PaymentCheckout},
			},
			want: model.PaymentStateBalanceDue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFixture().engine()
			o := model.NewOrder("R1", fixedNow)
			o.LineItems = []model.LineItem{{ID: "li", VariantID: 1, Quantity: 1, Price: d(tt.total)}}
			o.Payments = tt.payments

			require.NoError(t, e.Update(context.Background(), o))
			assert.Equal(t, tt.want, o.PaymentState)
		})
	}
}

func TestOutstandingBalanceNegativeWhenOverpaid(t *testing.T) {
	e := newFixture().engine()
	o := model.NewOrder("R1", fixedNow)
	o.LineItems = []model.LineItem{{ID: "li", VariantID: 1, Quantity: 1, Price: d("100")}}
	o.Payments = []model.Payment{{ID: "p", Amount: d("110"), State: model.PaymentCompleted}}

	require.NoError(t, e.Update(context.Background(), o))
	assert.True(t, o.OutstandingBalance().Equal(d("-10")))
	assert.True(t, o.HasOutstandingBalance())
}

func TestDeriveShipmentStatePriority(t *testing.T) {
	tests := []struct {
		name      string
		shipments []model.ShipmentStatus
		backorder bool
		want      model.ShipmentState
	}{
		{name: "none", want: model.ShipmentStateNone},
		{name: "all shipped", shipments: []model.ShipmentStatus{model.ShipmentShipped, model.ShipmentShipped}, want: model.ShipmentStateShipped},
		{name: "backorder beats partial", shipments: []model.ShipmentStatus{model.ShipmentShipped, model.ShipmentPending}, backorder: true, want: model.ShipmentStateBackorder},
		{name: "partial", shipments: []model.ShipmentStatus{model.ShipmentShipped, model.ShipmentReady}, want: model.ShipmentStatePartial},
		{name: "ready", shipments: []model.ShipmentStatus{model.ShipmentReady, model.ShipmentPending}, want: model.ShipmentStateReady},
		{name: "pending", shipments: []model.ShipmentStatus{model.ShipmentPending}, want: model.ShipmentStatePending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFixture().engine()
			o := &model.Order{}
			for i, s := range tt.shipments {
				o.Shipments = append(o.Shipments, model.Shipment{ID: string(rune('a' + i)), State: s})
			}
			if tt.backorder {
				o.InventoryUnits = []model.InventoryUnit{{ID: "u", ShipmentID: "b", State: model.UnitBackordered}}
			}
			assert.Equal(t, tt.want, e.deriveShipmentState(o))
		})
	}
}

func TestBackorderedIgnoredWithoutTracking(t *testing.T) {
	f := newFixture()
	f.settings.TrackInventoryLevels = false
	e := f.engine()
	o := &model.Order{
		Shipments:      []model.Shipment{{ID: "s", State: model.ShipmentPending}},
		InventoryUnits: []model.InventoryUnit{{ID: "u", ShipmentID: "s", State: model.UnitBackordered}},
	}
	assert.False(t, e.Backordered(o))
	assert.Equal(t, model.ShipmentStatePending, e.deriveShipmentState(o))
}

func TestUpdateSyncsCheckoutPayment(t *testing.T) {
	e := newFixture().engine()
	o := cartOrder()
	o.Payments = []model.Payment{{ID: "p", Amount: d("1"), State: model.PaymentCheckout}}

	require.NoError(t, e.Update(context.Background(), o))
	assert.True(t, o.Payments[0].Amount.Equal(d("100")), "payment amount %s", o.Payments[0].Amount)
}

func TestUpdateShipmentReadyWhenPaid(t *testing.T) {
	e := newFixture().engine()
	o := cartOrder()
	o.Shipments = []model.Shipment{{ID: "s", State: model.ShipmentPending}}
	o.InventoryUnits = []model.InventoryUnit{{ID: "u", ShipmentID: "s", VariantID: 1, State: model.UnitSold}}
	o.Payments = []model.Payment{{ID: "p", Amount: d("100"), State: model.PaymentCompleted}}

	require.NoError(t, e.Update(context.Background(), o))
	assert.Equal(t, model.ShipmentReady, o.Shipments[0].State)
	assert.Equal(t, model.ShipmentStateReady, o.ShipmentState)

	o.Shipments[0].State = model.ShipmentShipped
	require.NoError(t, e.Update(context.Background(), o))
	assert.Equal(t, model.ShipmentStateShipped, o.ShipmentState)
}

func TestUpdateShipmentPendingWhileBackordered(t *testing.T) {
	e := newFixture().engine()
	o := cartOrder()
	o.Shipments = []model.Shipment{{ID: "s", State: model.ShipmentReady}}
	o.InventoryUnits = []model.InventoryUnit{
		{ID: "u1", ShipmentID: "s", VariantID: 1, State: model.UnitSold},
		{ID: "u2", ShipmentID: "s", VariantID: 1, State: model.UnitBackordered},
	}
	o.Payments = []model.Payment{{ID: "p", Amount: d("100"), State: model.PaymentCompleted}}

	require.NoError(t, e.Update(context.Background(), o))
	assert.Equal(t, model.ShipmentPending, o.Shipments[0].State)
	assert.Equal(t, model.ShipmentStateBackorder, o.ShipmentState)

	o.InventoryUnits[1].State = model.UnitSold
	require.NoError(t, e.Update(context.Background(), o))
	assert.Equal(t, model.ShipmentReady, o.Shipments[0].State)
	assert.Equal(t, model.ShipmentStateReady, o.ShipmentState)
}

func TestUpdateIsIdempotent(t *testing.T) {
	f := newFixture()
	f.taxRates.rates = []model.TaxRate{{ID: 1, Amount: d("0.05"), Zone: model.Zone{CountryIDs: []int64{usa}}, Description: "Sales Tax"}}
	e := f.engine()
	o := addressedOrder()
	require.NoError(t, e.RecomputeTax(context.Background(), o))

	require.NoError(t, e.Update(context.Background(), o))
	first := o.Clone()
	require.NoError(t, e.Update(context.Background(), o))

	assert.True(t, first.Total.Equal(o.Total))
	assert.True(t, first.AdjustmentTotal.Equal(o.AdjustmentTotal))
	assert.Equal(t, first.PaymentState, o.PaymentState)
	assert.Len(t, o.Adjustments, len(first.Adjustments))
}

func TestUpdateRecomputesTaxAdjustmentsButNotLocked(t *testing.T) {
	f := newFixture()
	f.taxRates.rates = []model.TaxRate{{ID: 1, Amount: d("0.1"), Zone: model.Zone{CountryIDs: []int64{usa}}, Description: "VAT"}}
	e := f.engine()
	o := cartOrder()
	o.Adjustments = []model.Adjustment{
		{ID: "tax", Amount: d("1"), OriginatorType: model.OriginatorTaxRate, OriginatorID: 1, Mandatory: true, Eligible: true},
		{ID: "locked", Amount: d("3"), OriginatorType: model.OriginatorTaxRate, OriginatorID: 1, Locked: true, Eligible: true},
	}

	require.NoError(t, e.Update(context.Background(), o))

	assert.True(t, o.Adjustments[0].Amount.Equal(d("10")), "recomputed amount %s", o.Adjustments[0].Amount)
	assert.True(t, o.Adjustments[1].Amount.Equal(d("3")), "locked amount %s", o.Adjustments[1].Amount)
	assert.True(t, o.Total.Equal(d("113")))
}

func TestUpdateEligibilityFromAmount(t *testing.T) {
	f := newFixture()
	f.shipping.methods[0].Calculator.Type = CalculatorFreeShipping
	e := f.engine()
	o := cartOrder()
	o.Adjustments = []model.Adjustment{
		{ID: "ship", Amount: d("10"), OriginatorType: model.OriginatorShippingMethod, OriginatorID: 1, Eligible: true},
	}

	require.NoError(t, e.Update(context.Background(), o))
	assert.False(t, o.Adjustments[0].Eligible)
	assert.True(t, o.Total.Equal(d("100")))
}

func TestUpdateRunsHooksInOrder(t *testing.T) {
	f := newFixture()
	var calls []string
	f.hooks = []UpdateHook{
		func(context.Context, *model.Order) error { calls = append(calls, "first"); return nil },
		func(context.Context, *model.Order) error { calls = append(calls, "second"); return nil },
	}
	require.NoError(t, f.engine().Update(context.Background(), cartOrder()))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestUpdateFailureLeavesOrderUntouched(t *testing.T) {
	f := newFixture()
	boom := errors.New("boom")
	f.hooks = []UpdateHook{func(context.Context, *model.Order) error { return boom }}
	o := cartOrder()

	err := f.engine().Update(context.Background(), o)
	require.ErrorIs(t, err, boom)
	assert.True(t, o.Total.IsZero(), "total should not be written on failure")
}
