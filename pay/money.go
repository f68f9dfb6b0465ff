package pay

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Dollar amounts on decimal.Decimal, rounded at point of computation
// =============================================================================

// Cents rounds a dollar amount to 2 decimal places.
func Cents(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// Money builds a dollar amount from a float (source workbooks carry floats).
func Money(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// MulHours multiplies an hourly wage by hours and rounds to cents.
// This is the gross-wage rule: gross = hours x wage, rounded once.
func MulHours(wage decimal.Decimal, hours float64) decimal.Decimal {
	return Cents(wage.Mul(decimal.NewFromFloat(hours)))
}

// Half halves a rate and rounds to cents (overtime and holiday premium basis).
func Half(rate decimal.Decimal) decimal.Decimal {
	return Cents(rate.Div(decimal.NewFromInt(2)))
}

// =============================================================================
// DURATIONS - Minutes are native, hours are derived
// =============================================================================

// Round2 rounds to 2 decimal places, matching the precision of the source
// "Staff Worked Duration (Minutes)" column.
func Round2(f float64) float64 { return math.Round(f*100) / 100 }

// HoursFromMinutes converts minutes to hours rounded to 2 decimals.
func HoursFromMinutes(minutes float64) float64 { return Round2(minutes / 60) }
