// Package mymoney converts between major currency units (as shown to shoppers) and the integer
// minor units the payment provider works with.
package mymoney

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinorUnits returns round(price * 100), rounding half away from zero.
func ToMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FromFloat is used for prices coming from the catalog.
func FromFloat(price float64) decimal.Decimal {
	return decimal.NewFromFloat(price)
}
