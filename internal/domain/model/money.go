package model

import "github.com/shopspring/decimal"

// CurrencyPrecision is the number of fractional digits kept for monetary amounts.
const CurrencyPrecision = 2

// RoundMoney rounds amount to currency precision.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPrecision)
}

// moneyEpsilon is half of the smallest currency unit.
var moneyEpsilon = decimal.New(5, -(CurrencyPrecision + 1))

// MoneyEqual reports whether two amounts differ by less than half a cent.
func MoneyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(moneyEpsilon)
}
