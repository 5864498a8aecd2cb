package utils

import (
	"github.com/shopspring/decimal" // Decimal arithmetic for monetary rounding
)

// Round2 rounds a monetary value to 2 decimal places
func Round2(value float64) float64 {
	f, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return f
}
