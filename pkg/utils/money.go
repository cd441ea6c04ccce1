package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a decimal amount to the smallest currency unit,
// rounding half away from zero (500.005 -> 50001).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// CurrencySymbol falls back to the ISO code followed by a space.
func CurrencySymbol(code string) string {
	code = strings.ToUpper(code)
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code + " "
}
