/*
Package tracker loads and prepares the agency's persistent tracker workbook:
rate tables, staff metadata, accrual balances, bonus and premium-pay records,
and the shift rows carried over between pay cycles.

PURPOSE:
  The tracker is the only state that survives across payroll runs. Each run
  reads it at period start, derives per-employee figures (days since hire,
  blended admin wage, bonus and premium records), and writes back a refreshed
  snapshot with rolled-forward accrual balances.

TABLES:
  ManagerRates - salaried managers: salaries, non-exempt rate, benefits
  ShiftRates   - per-shift-type wages, overtime basis, accrual and billing rates
  Staff        - non-manager metadata: hire date, certification levels,
                 weekly hour allocations per level
  Accruals     - YTD hours, vacation accrued/taken/carried, sick bank/taken
  BonusRows    - fixed 4-slot bonus entries and 4-slot premium-pay punches
  Prepaid      - last cycle's trailing partial week, already compensated
  Deferred     - shifts pushed from last cycle into this one

SEE ALSO:
  - loader.go: derivations (admin wage, bonus expansion, premium hours)
  - workbook: reads the workbook in and writes the refreshed snapshot
*/
package tracker

import (
	"time"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/shopspring/decimal"
)

// Accrual rates are vacation hours earned per hour worked.
const (
	// StandardAccrualRate applies to non-manager staff and admin time.
	StandardAccrualRate = 0.04

	// ManagerAccrualRate applies to salaried managers.
	ManagerAccrualRate = 0.068
)

// Accrual caps in vacation hours.
const (
	StandardAccrualCap = 80.0
	ManagerAccrualCap  = 136.0
)

// =============================================================================
// RATE TABLES
// =============================================================================

// ManagerRate is one row of the manager table.
type ManagerRate struct {
	Name     string
	HireDate time.Time

	ExemptWeeklySalary      decimal.Decimal
	ExemptSemimonthlySalary decimal.Decimal // nonzero only for the semimonthly special case
	NonExemptHourlyWage     decimal.Decimal
	AccrualRate             float64
	AdminWage               decimal.Decimal // blended admin/sick/vacation wage

	// Benefits are the manager's benefit cost columns, in table order.
	Benefits []Benefit

	// DaysSinceHire is derived at load time from the period start.
	DaysSinceHire int
}

// Benefit is one named benefit cost for a manager.
type Benefit struct {
	Name   string
	Amount decimal.Decimal
}

// ShiftRate is one row of the per-shift-type rate table.
type ShiftRate struct {
	Code        string
	RegularWage decimal.Decimal
	BOTWage     decimal.Decimal // base overtime rate
	AccrualRate float64

	// BillingRate is nil for non-billable shift types.
	BillingRate *decimal.Decimal
}

// =============================================================================
// STAFF AND ACCRUALS
// =============================================================================

// StaffInfo is one row of the non-manager staff table. The level fields are
// certification levels ("BST2", "HSS1", ...); the hour fields are the
// employee's typical weekly allocation per level, used to blend the admin
// wage.
type StaffInfo struct {
	Name     string
	HireDate time.Time

	BSTLevel string
	OALevel  string
	HSSLevel string

	BSTHours float64
	OAHours  float64
	HSSHours float64

	AccrualRate float64
	AdminWage   decimal.Decimal // derived: hours-weighted average rate

	DaysSinceHire int // derived
}

// AccrualBalance is one employee's accrual state, read at period start and
// rolled forward once per run.
type AccrualBalance struct {
	Staff string

	YTDHours            float64
	YTDVacationAccrued  float64
	YTDVacationTaken    float64
	VacationCarriedOver float64
	SickBank            float64
	SickTaken           float64

	VacationBalance float64
	SickBalance     float64

	// Sub marks substitute/relief staff, who do not accrue vacation.
	Sub bool
}

// =============================================================================
// BONUS AND PREMIUM PAY - Fixed 4-slot wide rows
// =============================================================================

// BonusSlot is one recorded bonus: a date and a dollar amount.
type BonusSlot struct {
	Date   time.Time
	Amount decimal.Decimal
}

// PremiumSlot is one recorded premium-pay interval.
type PremiumSlot struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// BonusRow is one employee's row in the bonus/PTO table: up to four bonus
// slots and four premium-pay punch pairs. Nil slots are empty.
type BonusRow struct {
	FullName  string
	FirstName string
	LastName  string

	Bonuses [4]*BonusSlot
	Premium [4]*PremiumSlot
}

// BonusRecord is one flattened {employee, date, amount} bonus entry.
type BonusRecord struct {
	Name   string
	Date   time.Time
	Amount decimal.Decimal
}

// =============================================================================
// TRACKER - The full loaded table set
// =============================================================================

// Tracker is the loaded tracker workbook. Call Prepare before use to fill
// the derived fields.
type Tracker struct {
	ManagerRates []ManagerRate
	ShiftRates   []ShiftRate
	Staff        []StaffInfo
	Accruals     []AccrualBalance
	BonusRows    []BonusRow

	Prepaid  []pay.Shift
	Deferred []pay.Shift
}
