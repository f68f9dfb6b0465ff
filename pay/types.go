/*
Package pay provides the core domain types shared by the payroll pipeline.

PURPOSE:
  This package contains the types every stage of the pipeline speaks:
  shift records, pay periods, work weeks, and money. The pipeline packages
  (ingest, tracker, payroll, invoice) all consume and produce these values,
  so the definitions live here rather than in any single stage.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: A single worked interval for one employee, one shift code
  - Shift code classification: worked vs. not-worked placeholder vs. asleep
  - TimeOff: per-employee vacation/sick hours pulled out of the shift set

DESIGN PRINCIPLES:
  1. Value semantics: shifts are period-scoped values, copied freely
  2. Precision: dollar amounts use decimal.Decimal, never float64
  3. Native units: durations are minutes where the source data is minutes,
     hours only where derived

SEE ALSO:
  - period.go: Pay periods and Monday-start work weeks
  - money.go: Decimal helpers and rounding rules
  - errors.go: The error taxonomy for the whole pipeline
*/
package pay

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHIFT RECORD - One worked interval, the atomic input of the pipeline
// =============================================================================

// Shift is a normalized shift record. Ingest produces it from one or two raw
// export rows; the merger attaches wage fields; the cropper partitions it;
// the calculator aggregates it into payroll lines.
type Shift struct {
	Name      string // "First Last"
	FirstName string
	LastName  string

	// Code is the effective shift code after normalization and any
	// substitution (training remap, RBT level conversion).
	// OriginalCode is the cleaned code as exported, before substitution.
	Code         string
	OriginalCode string

	CheckIn  time.Time
	CheckOut time.Time

	// Minutes is the worked duration, recomputed after midnight splitting.
	Minutes float64

	// HolidayMinutes is the overlap with approved holiday ranges.
	HolidayMinutes float64

	// Attached by the merger from the tracker's rate tables.
	RegularWage decimal.Decimal
	BOTWage     decimal.Decimal
	AccrualRate float64
}

// Hours returns the worked duration in hours, rounded to 2 decimals.
func (s Shift) Hours() float64 { return HoursFromMinutes(s.Minutes) }

// SameDay reports whether check-in and check-out fall on the same calendar day.
func (s Shift) SameDay() bool {
	y1, m1, d1 := s.CheckIn.Date()
	y2, m2, d2 := s.CheckOut.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// =============================================================================
// SHIFT CODE CLASSIFICATION
// =============================================================================

const (
	CodeAdmin      = "Admin"
	CodeSick       = "Sick"
	CodeVacation   = "Vacation"
	CodeRBT        = "RBT"
	CodeDirectCare = "MGR-Direct-Care"
	CodeCCRWorked  = "CCR-Worked"
)

// NotWorked reports whether a code is an unpaid-sleep placeholder type.
// These count toward hours paid but not hours worked.
func NotWorked(code string) bool { return strings.Contains(code, "-Not-Worked") }

// Asleep reports whether a code is an asleep-shift category. Asleep time is
// excluded from Nova-paid hours unless it is a holiday-extra-pay line.
func Asleep(code string) bool { return strings.Contains(code, "Asleep") }

// OvertimeLine reports whether a payroll line label is an overtime extra-pay
// line. Overtime lines carry gross wages but zero worked/paid hours in the
// weekly breakdowns, since their hours are already counted in base lines.
func OvertimeLine(label string) bool { return strings.Contains(label, "OT Extra") }

// HolidayLine reports whether a payroll line label is a holiday extra-pay line.
func HolidayLine(label string) bool { return strings.Contains(label, "Holiday Extra Pay") }

// PrepaidLine reports whether a weekly-breakdown line is a prepaid carry-over.
func PrepaidLine(label string) bool { return strings.Contains(label, "PREPAID") }

// DisplayCategory strips the "-Worked"/"-Not-Worked" suffix from a shift code
// for invoice display ("IHSS-Asleep-Worked" -> "IHSS-Asleep", "CCR-Not-Worked"
// -> "CCR").
func DisplayCategory(code string) string {
	if strings.HasSuffix(code, "-Not-Worked") {
		return strings.TrimSuffix(code, "-Not-Worked")
	}
	return strings.TrimSuffix(code, "-Worked")
}

// =============================================================================
// TIME OFF - Vacation and sick usage extracted from the shift set
// =============================================================================

// TimeOff is the vacation and sick hours an employee logged this period.
// The corresponding shifts are removed from the payable set and cashed out
// as dedicated payroll lines instead.
type TimeOff struct {
	VacationHours float64
	SickHours     float64
}

// TimeOffByEmployee maps employee name to period time-off usage.
type TimeOffByEmployee map[string]TimeOff
