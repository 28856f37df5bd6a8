package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/gateway"
)

const usa int64 = 214

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type taxRatesFake struct {
	rates []model.TaxRate
}

func (f *taxRatesFake) Match(_ context.Context, addr *model.Address) ([]model.TaxRate, error) {
	return model.MatchTaxRates(f.rates, addr), nil
}

func (f *taxRatesFake) All(context.Context) ([]model.TaxRate, error) { return f.rates, nil }

func (f *taxRatesFake) Get(_ context.Context, id int64) (*model.TaxRate, error) {
	for _, r := range f.rates {
		if r.ID == id {
			rate := r
			return &rate, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

type shippingFake struct {
	methods []model.ShippingMethod
}

func (f *shippingFake) All(context.Context) ([]model.ShippingMethod, error) { return f.methods, nil }

func (f *shippingFake) Get(_ context.Context, id int64) (*model.ShippingMethod, error) {
	for _, m := range f.methods {
		if m.ID == id {
			method := m
			return &method, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

type paymentMethodsFake struct {
	methods []model.PaymentMethod
}

func (f *paymentMethodsFake) All(context.Context) ([]model.PaymentMethod, error) {
	return f.methods, nil
}

func (f *paymentMethodsFake) Get(_ context.Context, id int64) (*model.PaymentMethod, error) {
	for _, m := range f.methods {
		if m.ID == id {
			method := m
			return &method, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

type gatewayFake struct {
	err   error
	calls int
	block bool
}

func (g *gatewayFake) Process(ctx context.Context, charge gateway.Charge) (gateway.Receipt, error) {
	g.calls++
	if g.block {
		<-ctx.Done()
		return gateway.Receipt{}, ctx.Err()
	}
	if g.err != nil {
		return gateway.Receipt{Reference: "ref-" + charge.PaymentID, ResponseCode: "declined"}, g.err
	}
	return gateway.Receipt{Reference: "ref-" + charge.PaymentID, ResponseCode: "ok"}, nil
}

type inventoryFake struct {
	onHand    map[int64]int
	assigned  int
	restocked int
}

func (f *inventoryFake) OnHand(_ context.Context, variantID int64) (int, error) {
	return f.onHand[variantID], nil
}

func (f *inventoryFake) AssignOpeningInventory(_ context.Context, o *model.Order) error {
	f.assigned++
	for i := range o.InventoryUnits {
		u := &o.InventoryUnits[i]
		if f.onHand[u.VariantID] > 0 {
			f.onHand[u.VariantID]--
			u.State = model.UnitSold
		} else {
			u.State = model.UnitBackordered
		}
	}
	return nil
}

func (f *inventoryFake) Restock(_ context.Context, o *model.Order) error {
	f.restocked++
	for i := range o.InventoryUnits {
		u := &o.InventoryUnits[i]
		if u.State == model.UnitSold {
			f.onHand[u.VariantID]++
		}
		u.State = model.UnitReturned
	}
	return nil
}

func (f *inventoryFake) FillBackorders(_ context.Context, o *model.Order) (int, error) {
	filled := 0
	for i := range o.InventoryUnits {
		u := &o.InventoryUnits[i]
		if u.State == model.UnitBackordered && f.onHand[u.VariantID] > 0 {
			f.onHand[u.VariantID]--
			u.State = model.UnitSold
			filled++
		}
	}
	return filled, nil
}

type fixture struct {
	settings  model.Settings
	taxRates  *taxRatesFake
	shipping  *shippingFake
	payments  *paymentMethodsFake
	gateway   *gatewayFake
	inventory *inventoryFake
	hooks     []UpdateHook
	seq       atomic.Int64
}

func newFixture() *fixture {
	zone := model.Zone{ID: 1, Name: "North America", CountryIDs: []int64{usa}}
	return &fixture{
		settings: model.Settings{TrackInventoryLevels: true, DefaultCountryID: usa, GatewayTimeout: time.Second},
		taxRates: &taxRatesFake{},
		shipping: &shippingFake{methods: []model.ShippingMethod{
			{ID: 1, Name: "UPS Ground", Zone: zone, Calculator: model.CalculatorSpec{Type: CalculatorFlatRate, Preferences: map[string]decimal.Decimal{PrefAmount: d("10")}}},
		}},
		payments: &paymentMethodsFake{methods: []model.PaymentMethod{
			{ID: 1, Name: "Credit Card", Provider: "bogus", Active: true, SupportsProfiles: true},
		}},
		gateway:   &gatewayFake{},
		inventory: &inventoryFake{onHand: map[int64]int{1: 10, 2: 10}},
	}
}

func (f *fixture) engine() *Engine {
	return New(f.settings, Dependencies{
		TaxRates:        f.taxRates,
		ShippingMethods: f.shipping,
		PaymentMethods:  f.payments,
		Gateway:         f.gateway,
		Inventory:       f.inventory,
		Hooks:           f.hooks,
		Now:             func() time.Time { return fixedNow },
		NewID:           func() string { return fmt.Sprintf("id-%d", f.seq.Add(1)) },
	})
}

func address() *model.Address {
	return &model.Address{
		Firstname: "John",
		Lastname:  "Doe",
		Address1:  "10 Lovely Street",
		City:      "Herndon",
		Zipcode:   "20170",
		Phone:     "123-456-7890",
		CountryID: usa,
	}
}

func cartOrder() *model.Order {
	o := model.NewOrder("R123456789", fixedNow)
	o.UserID = 7
	o.Email = "spree@example.com"
	o.LineItems = []model.LineItem{
		{ID: "li-1", VariantID: 1, Quantity: 2, Price: d("25"), StockLocation: "default"},
		{ID: "li-2", VariantID: 2, Quantity: 1, Price: d("50"), StockLocation: "default"},
	}
	return o
}

func addressedOrder() *model.Order {
	o := cartOrder()
	o.State = model.OrderStateAddress
	o.BillAddress = address()
	o.ShipAddress = address()
	return o
}
