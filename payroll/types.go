/*
Package payroll turns normalized shifts plus tracker state into pay lines,
weekly breakdowns, and rolled-forward accrual balances.

PURPOSE:
  This is the computation core of the engine. Everything upstream (ingest,
  tracker) prepares inputs; everything downstream (invoice, workbook, runner)
  presents results. The pipeline per run:

    Merge  - attach wages and accrual rates, convert RBT shifts to the
             employee's BST level, pull sick/vacation usage out of pay
    Crop   - split shifts into in-period / deferred / prepaid sets and
             Monday-start work weeks
    Calc   - per-employee pay lines (hourly staff and salaried managers
             follow different paths)
    Accrue - roll vacation and sick balances forward
    Weekly - per-week per-line breakdown rows for the output workbook

KEY CONCEPTS:
  Deferral: shifts punched after the period end are not paid now; they carry
  into the next cycle through the tracker.
  Prepay: when the period's last work week is partial, the whole week is paid
  now and ALSO carried forward, then deducted next cycle as a negative
  "Prepaid Last Time" line. Employees never see a short final check.

SEE ALSO:
  - merge.go, crop.go, calc.go, manager.go, weekly.go
*/
package payroll

import (
	"time"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/tracker"
	"github.com/shopspring/decimal"
)

// Line is one payroll output row: a labelled quantity of paid time at a rate.
type Line struct {
	Name    string
	Label   string
	Minutes float64
	Hours   float64
	Wage    decimal.Decimal
	Gross   decimal.Decimal
}

// WeeklyRow is one row of the per-week breakdown: a line's worked, paid, and
// agency-funded views. Agency-funded figures exclude time billed elsewhere
// (asleep overnight hours outside holidays) and fold overtime differently.
type WeeklyRow struct {
	Name  string
	Label string

	HrsWorked   float64
	HrsPaid     float64
	NovaPaidHrs float64

	Wage          decimal.Decimal
	Gross         decimal.Decimal
	NovaPaidGross decimal.Decimal
}

// WeekTable is one employee's breakdown for one work week: the rows, their
// TOTAL row, and the wage summary the agency reads off the table.
type WeekTable struct {
	Name  string
	Title string

	Rows  []WeeklyRow
	Total WeeklyRow

	// RealWages is the agency-funded gross net of prepaid carry-over.
	RealWages decimal.Decimal

	// OvertimeRate is total gross over total hours paid; zero for managers,
	// whose salary makes the ratio meaningless.
	OvertimeRate decimal.Decimal
}

// HoursSummary is the hours block of an employee's pay-stub package.
type HoursSummary struct {
	YTDHours        float64
	HoursThisPeriod float64
	HireDate        time.Time
	DaysSinceHire   int
}

// VacationSummary is the vacation-accrual block of the package.
type VacationSummary struct {
	AccruedYTD        float64
	TakenYTD          float64
	AccruedThisPeriod float64
	TakenThisPeriod   float64
	CarriedOver       float64
	Balance           float64
}

// SickSummary is the sick-leave block of the package.
type SickSummary struct {
	BankYTD         float64
	TakenYTD        float64
	TakenThisPeriod float64
	Balance         float64
}

// EmployeePackage is one employee's complete pay-stub section of the output
// workbook: pay lines plus the hours, vacation, and sick summaries.
type EmployeePackage struct {
	Name    string
	Manager bool
	Sub     bool

	TotalHoursWorked float64
	TotalGross       decimal.Decimal

	Lines    []Line
	Hours    HoursSummary
	Vacation VacationSummary
	Sick     SickSummary
}

// Result is everything one payroll run computes.
type Result struct {
	Period pay.Period

	// InPeriod are the merged, cropped shifts the run paid: the shift
	// detail for the output workbook and the invoice's hour source.
	InPeriod []pay.Shift

	Packages []EmployeePackage

	TimeOff       pay.TimeOffByEmployee
	TimeOffDetail []pay.Shift

	Accruals []tracker.AccrualBalance

	Weekly []WeekTable

	// Deferred and Prepaid carry into the next cycle's tracker snapshot.
	Deferred []pay.Shift
	Prepaid  []pay.Shift
	Prepay   bool

	// DroppedLeading holds the leading partial week excluded from this run,
	// kept so totals remain auditable.
	DroppedLeading []pay.Shift
}

// Output line labels. OT lines additionally carry their week key.
const (
	labelSalary   = "MGR Salary"
	labelPrepaid  = "Prepaid Last Time"
	labelSick     = "Sick Leave Used"
	labelVacation = "Vacation Payout"
	labelBonus    = "Bonus"
	labelPremium  = "Premium Pay"
	labelHoliday  = "Holiday Extra Pay"
)

// Lines flattens every package's pay lines, in package order.
func (r *Result) Lines() []Line {
	var out []Line
	for _, p := range r.Packages {
		out = append(out, p.Lines...)
	}
	return out
}
