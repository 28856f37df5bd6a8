package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Variant is a purchasable product variant with its stock level.
type Variant struct {
	ID            int64
	SKU           string
	Name          string
	ProductName   string
	Price         decimal.Decimal
	TaxCategoryID int64
	StockLocation string
	CountOnHand   int
}

// CalculatorSpec names a calculator strategy and its preferences.
type CalculatorSpec struct {
	Type        string                     `json:"type"`
	Preferences map[string]decimal.Decimal `json:"preferences,omitempty"`
}

// Preference returns named preference or zero.
func (c CalculatorSpec) Preference(name string) decimal.Decimal {
	if c.Preferences == nil {
		return decimal.Zero
	}
	return c.Preferences[name]
}

// TaxRate is a tax percentage applicable inside a zone.
type TaxRate struct {
	ID            int64
	Amount        decimal.Decimal
	Zone          Zone
	TaxCategoryID int64
	Calculator    CalculatorSpec
	Description   string
}

// Label renders adjustment label, e.g. "Sales Tax 5.0%".
func (r TaxRate) Label() string {
	pct := r.Amount.Mul(decimal.NewFromInt(100)).String()
	if !strings.Contains(pct, ".") {
		pct += ".0"
	}
	return r.Description + " " + pct + "%"
}

// MatchTaxRates filters rates whose zone contains address.
func MatchTaxRates(rates []TaxRate, addr *Address) []TaxRate {
	var matched []TaxRate
	for _, r := range rates {
		if r.Zone.Include(addr) {
			matched = append(matched, r)
		}
	}
	return matched
}

// ShippingMethod is a carrier option priced by its calculator.
type ShippingMethod struct {
	ID         int64
	Name       string
	Zone       Zone
	Calculator CalculatorSpec
}

// PaymentMethod describes a configured way to pay.
type PaymentMethod struct {
	ID               int64
	Name             string
	Provider         string
	Active           bool
	SupportsProfiles bool
	// ZoneID restricts the method to a zone; zero means everywhere.
	ZoneID int64
	Zone   *Zone
}

// AvailableFor reports whether method may be offered for address.
func (m PaymentMethod) AvailableFor(addr *Address) bool {
	if !m.Active {
		return false
	}
	if m.Zone == nil {
		return true
	}
	return m.Zone.Include(addr)
}
