package amortization

import "github.com/shopspring/decimal"

// RoundMoney rounds a monetary amount to 2 decimal places. Applied at every
// accumulation step, not only at output, so rounding error does not compound
// across periods.
func RoundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// RoundRate rounds an effective period rate to 8 decimal places.
func RoundRate(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(8).Float64()
	return f
}
