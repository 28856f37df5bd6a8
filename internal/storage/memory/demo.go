package memory

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CountryUSA is the country id used by the demo catalog.
const CountryUSA int64 = 214

// DemoCatalog is a small catalog with one zone, one tax rate, two shipping
// methods and a bogus card processor.
func DemoCatalog() Catalog {
	usa := model.Zone{ID: 1, Name: "USA", CountryIDs: []int64{CountryUSA}}
	return Catalog{
		Users: []model.User{{ID: 1, Email: "spree@example.com"}},
		Variants: []model.Variant{
			{ID: 1, SKU: "ROR-00011", Name: "Ruby on Rails Mug", ProductName: "Ruby on Rails Mug", Price: decimal.RequireFromString("25.00"), TaxCategoryID: 1, StockLocation: "default", CountOnHand: 10},
			{ID: 2, SKU: "ROR-00012", Name: "Ruby on Rails Tote", ProductName: "Ruby on Rails Tote", Price: decimal.RequireFromString("50.00"), TaxCategoryID: 1, StockLocation: "default", CountOnHand: 1},
		},
		TaxRates: []model.TaxRate{{
			ID: 1, Amount: decimal.RequireFromString("0.05"), Zone: usa, TaxCategoryID: 1,
			Calculator: model.CalculatorSpec{Type: "sales_tax"}, Description: "Sales Tax",
		}},
		ShippingMethods: []model.ShippingMethod{
			{ID: 1, Name: "UPS Ground", Zone: usa, Calculator: model.CalculatorSpec{
				Type: "flat_rate", Preferences: map[string]decimal.Decimal{"amount": decimal.NewFromInt(10)},
			}},
			{ID: 2, Name: "UPS Two Day", Zone: usa, Calculator: model.CalculatorSpec{
				Type: "flat_rate", Preferences: map[string]decimal.Decimal{"amount": decimal.NewFromInt(20)},
			}},
		},
		PaymentMethods: []model.PaymentMethod{
			{ID: 1, Name: "Credit Card", Provider: "bogus", Active: true, SupportsProfiles: true},
		},
	}
}
