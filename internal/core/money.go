package core

import "github.com/shopspring/decimal"

// DefaultFeePercentage is the platform surcharge billed to the
// employer on top of the worker's pay.
const DefaultFeePercentage = 0.15

// round2 rounds at every derived amount, not only at display time, so
// floating-point drift never compounds across the computation chain.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// hoursTimesRate prices a span of hours at an hourly rate, rounded to
// cents.
func hoursTimesRate(hours float64, rate decimal.Decimal) decimal.Decimal {
	return round2(rate.Mul(decimal.NewFromFloat(hours)))
}
