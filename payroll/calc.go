package payroll

import (
	"fmt"
	"sort"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/tracker"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RUN - The full payroll computation for one period
// =============================================================================

// Run computes a complete payroll: merge rates, extract time off, fold in
// last cycle's deferred shifts, crop to the period, then build one package
// per eligible employee plus the weekly breakdowns and rolled-forward
// accrual balances.
func Run(shifts []pay.Shift, t *tracker.Tracker, period pay.Period) (*Result, error) {
	payable, timeOff, detail, err := Merge(shifts, t)
	if err != nil {
		return nil, err
	}

	// Last cycle's deferred shifts already carry wages; they join the
	// current set before cropping so they land in the right week.
	all := append(append([]pay.Shift(nil), t.Deferred...), payable...)
	cropped := Crop(all, period)
	cropped.CarriedPrepaid = t.Prepaid

	res := &Result{
		Period:         period,
		InPeriod:       cropped.InPeriod,
		TimeOff:        timeOff,
		TimeOffDetail:  detail,
		Deferred:       cropped.Deferred,
		Prepaid:        cropped.Prepaid,
		Prepay:         cropped.Prepay,
		DroppedLeading: cropped.DroppedLeading,
	}

	names := eligibleNames(cropped.InPeriod, timeOff, t)

	// Accrual rows for employees absent this period pass through untouched.
	touched := make(map[string]bool, len(names))
	for _, n := range names {
		touched[n] = true
	}
	for _, a := range t.Accruals {
		if !touched[a.Staff] {
			res.Accruals = append(res.Accruals, a)
		}
	}

	byName := groupByName(cropped.InPeriod)
	for _, name := range names {
		var (
			pkg EmployeePackage
			bal tracker.AccrualBalance
			err error
		)
		if _, ok := t.Manager(name); ok {
			pkg, bal, err = managerPackage(name, byName[name], t, timeOff, cropped)
		} else {
			pkg, bal, err = nonExemptPackage(name, byName[name], t, timeOff, cropped)
		}
		if err != nil {
			return nil, err
		}
		res.Packages = append(res.Packages, pkg)
		res.Accruals = append(res.Accruals, bal)
	}

	res.Weekly = weeklyBreakdown(names, byName, t, cropped, period)
	return res, nil
}

// eligibleNames returns, sorted, the employees with anything to pay this
// period (shifts, bonuses, or time off) that the tracker actually knows.
// Unknown names are skipped, not errors: the export includes staff from
// programs outside this payroll.
func eligibleNames(shifts []pay.Shift, timeOff pay.TimeOffByEmployee, t *tracker.Tracker) []string {
	seen := make(map[string]bool)
	for _, s := range shifts {
		seen[s.Name] = true
	}
	for _, b := range t.Bonuses() {
		seen[b.Name] = true
	}
	for name := range timeOff {
		seen[name] = true
	}

	known := make(map[string]bool)
	for _, s := range t.Staff {
		known[s.Name] = true
	}
	for _, m := range t.ManagerRates {
		known[m.Name] = true
	}

	var names []string
	for name := range seen {
		if known[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func groupByName(shifts []pay.Shift) map[string][]pay.Shift {
	byName := make(map[string][]pay.Shift)
	for _, s := range shifts {
		byName[s.Name] = append(byName[s.Name], s)
	}
	return byName
}

// =============================================================================
// NON-EXEMPT PATH - Hourly staff
// =============================================================================

func nonExemptPackage(name string, own []pay.Shift, t *tracker.Tracker, timeOff pay.TimeOffByEmployee, cropped Cropped) (EmployeePackage, tracker.AccrualBalance, error) {
	staff, err := t.StaffByName(name)
	if err != nil {
		return EmployeePackage{}, tracker.AccrualBalance{}, err
	}
	blended := staff.AdminWage

	var lines []Line

	// Base lines: total minutes per shift type at its regular wage.
	lines = append(lines, aggregateByCode(name, own, func(s pay.Shift) (float64, decimal.Decimal) {
		return s.Minutes, s.RegularWage
	}, "")...)

	// Worked time excludes unpaid-sleep placeholder types.
	worked := filterWorked(own)
	totalHoursWorked := pay.HoursFromMinutes(sumMinutes(worked))

	// Holiday extra pay: half the overtime-basis wage per overlapping type.
	var withHoliday []pay.Shift
	for _, s := range worked {
		if s.HolidayMinutes > 0 {
			withHoliday = append(withHoliday, s)
		}
	}
	lines = append(lines, aggregateByCode(name, withHoliday, func(s pay.Shift) (float64, decimal.Decimal) {
		return s.HolidayMinutes, pay.Half(s.BOTWage)
	}, " Holiday Extra Pay")...)

	// Weekly overtime: hours worked past 40 in a Monday-start week, at half
	// the hours-weighted average overtime basis. The first week folds in
	// shifts prepaid last cycle so the 40-hour test sees the whole week.
	for _, week := range pay.SplitByWorkWeek(own) {
		weekly := week.Shifts
		if prepaid := prepaidFor(name, cropped, week); len(prepaid) > 0 {
			weekly = append(append([]pay.Shift(nil), prepaid...), weekly...)
		}
		workedHrs := pay.HoursFromMinutes(sumMinutes(filterWorked(weekly)))
		paidHrs := pay.HoursFromMinutes(sumMinutes(weekly))
		otHrs := overtimeHours(workedHrs)
		if otHrs <= 0 {
			continue
		}
		lines = append(lines, Line{
			Name:    name,
			Label:   fmt.Sprintf("OT Extra Pay (%s)", week.Key()),
			Minutes: otHrs * 60,
			Wage:    pay.Half(overtimeBasisRate(weekly, paidHrs)),
		})
	}

	to := timeOff[name]
	lines = append(lines, timeOffLines(name, to, blended)...)
	lines = append(lines, bonusLines(name, t, blended)...)

	finalizeLines(lines)
	pkg := EmployeePackage{
		Name:             name,
		Sub:              isSub(name, t),
		TotalHoursWorked: totalHoursWorked,
		TotalGross:       sumGross(lines),
		Lines:            lines,
		Hours: HoursSummary{
			HireDate:      staff.HireDate,
			DaysSinceHire: staff.DaysSinceHire,
		},
	}

	bal, accrued, err := rollForward(name, t, to, totalHoursWorked)
	if err != nil {
		return EmployeePackage{}, tracker.AccrualBalance{}, err
	}
	fillSummaries(&pkg, bal, accrued, to, totalHoursWorked)
	return pkg, bal, nil
}

// =============================================================================
// SHARED LINE BUILDERS
// =============================================================================

// aggregateByCode sums an extracted minute quantity per shift type, taking
// the first shift's wage for each, and returns lines ordered by label.
func aggregateByCode(name string, shifts []pay.Shift, extract func(pay.Shift) (float64, decimal.Decimal), suffix string) []Line {
	byCode := make(map[string]*Line)
	var order []string
	for _, s := range shifts {
		minutes, wage := extract(s)
		label := s.Code + suffix
		if l, ok := byCode[label]; ok {
			l.Minutes += minutes
			continue
		}
		byCode[label] = &Line{Name: name, Label: label, Minutes: minutes, Wage: wage}
		order = append(order, label)
	}
	sort.Strings(order)
	lines := make([]Line, 0, len(order))
	for _, label := range order {
		lines = append(lines, *byCode[label])
	}
	return lines
}

func timeOffLines(name string, to pay.TimeOff, wage decimal.Decimal) []Line {
	var lines []Line
	if to.SickHours > 0 {
		lines = append(lines, Line{Name: name, Label: labelSick, Minutes: 60 * to.SickHours, Wage: wage})
	}
	if to.VacationHours > 0 {
		lines = append(lines, Line{Name: name, Label: labelVacation, Minutes: 60 * to.VacationHours, Wage: wage})
	}
	return lines
}

func bonusLines(name string, t *tracker.Tracker, blended decimal.Decimal) []Line {
	var lines []Line
	total := decimal.Zero
	found := false
	for _, b := range t.Bonuses() {
		if b.Name == name {
			total = total.Add(b.Amount)
			found = true
		}
	}
	if found {
		// One hour at the bonus amount: gross equals the amount.
		lines = append(lines, Line{Name: name, Label: labelBonus, Minutes: 60, Wage: total})
	}
	if hrs := t.PremiumHours(name); hrs > 0 {
		wage := pay.Cents(decimal.NewFromFloat(1.5).Mul(blended))
		lines = append(lines, Line{Name: name, Label: labelPremium, Minutes: hrs * 60, Wage: wage})
	}
	return lines
}

// finalizeLines derives hours and gross on every line: hours from minutes,
// gross = hours x wage, each rounded to 2 decimals.
func finalizeLines(lines []Line) {
	for i := range lines {
		lines[i].Hours = pay.HoursFromMinutes(lines[i].Minutes)
		lines[i].Gross = pay.MulHours(lines[i].Wage, lines[i].Hours)
	}
}

func sumGross(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Gross)
	}
	return total
}

// =============================================================================
// OVERTIME HELPERS
// =============================================================================

const weeklyOvertimeThreshold = 40.0

func overtimeHours(workedHrs float64) float64 {
	if workedHrs <= weeklyOvertimeThreshold {
		return 0
	}
	return workedHrs - weeklyOvertimeThreshold
}

// overtimeBasisRate is the hours-weighted average overtime-basis wage across
// a week's shifts: sum(BOT x shift hours) / hours paid.
func overtimeBasisRate(weekly []pay.Shift, paidHrs float64) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range weekly {
		sum = sum.Add(s.BOTWage.Mul(decimal.NewFromFloat(s.Hours())))
	}
	return sum.Div(decimal.NewFromFloat(paidHrs))
}

// prepaidFor returns the employee's prepaid-last-cycle shifts when the given
// week is the period's first.
func prepaidFor(name string, cropped Cropped, week pay.Week) []pay.Shift {
	if len(cropped.Weeks) == 0 || week.Key() != cropped.Weeks[0].Key() {
		return nil
	}
	return carriedPrepaid(name, cropped)
}

func carriedPrepaid(name string, cropped Cropped) []pay.Shift {
	var out []pay.Shift
	for _, s := range cropped.CarriedPrepaid {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func filterWorked(shifts []pay.Shift) []pay.Shift {
	var out []pay.Shift
	for _, s := range shifts {
		if !pay.NotWorked(s.Code) {
			out = append(out, s)
		}
	}
	return out
}

func sumMinutes(shifts []pay.Shift) float64 {
	var total float64
	for _, s := range shifts {
		total += s.Minutes
	}
	return total
}

func isSub(name string, t *tracker.Tracker) bool {
	if bal, ok := t.AccrualFor(name); ok {
		return bal.Sub
	}
	return false
}

// =============================================================================
// ACCRUAL ROLL-FORWARD
// =============================================================================

// rollForward advances one employee's accrual balance by a period's usage
// and worked hours. Returns the new balance and the vacation accrued this
// period.
//
// The cap rules differ by role and are deliberately asymmetric:
//   - staff: an over-cap prior balance is first written down to 80, then
//     this period's accrual is added (the balance may sit above 80 until
//     the next run writes it down again)
//   - managers: this period's accrual is added first, then the balance is
//     capped at 136
//   - subs accrue nothing
func rollForward(name string, t *tracker.Tracker, to pay.TimeOff, hoursWorked float64) (tracker.AccrualBalance, float64, error) {
	bal, ok := t.AccrualFor(name)
	if !ok {
		return tracker.AccrualBalance{}, 0, &pay.LookupError{Employee: name, Field: "accrual balance"}
	}

	bal.YTDVacationTaken = pay.Round2(bal.YTDVacationTaken + to.VacationHours)
	bal.SickTaken = pay.Round2(bal.SickTaken + to.SickHours)
	bal.YTDHours = pay.Round2(bal.YTDHours + hoursWorked)

	var accrued float64
	switch {
	case isManager(name, t):
		accrued = pay.Round2(hoursWorked * tracker.ManagerAccrualRate)
		bal.YTDVacationAccrued = pay.Round2(bal.YTDVacationAccrued + accrued)
		if bal.YTDVacationAccrued > tracker.ManagerAccrualCap {
			bal.YTDVacationAccrued = tracker.ManagerAccrualCap
		}
	case bal.Sub:
		accrued = 0
	default:
		if bal.YTDVacationAccrued > tracker.StandardAccrualCap {
			bal.YTDVacationAccrued = tracker.StandardAccrualCap
		}
		accrued = pay.Round2(hoursWorked * tracker.StandardAccrualRate)
		bal.YTDVacationAccrued = pay.Round2(bal.YTDVacationAccrued + accrued)
	}

	bal.VacationBalance = pay.Round2(bal.YTDVacationAccrued + bal.VacationCarriedOver - bal.YTDVacationTaken)
	bal.SickBalance = pay.Round2(bal.SickBank - bal.SickTaken)
	return bal, accrued, nil
}

func isManager(name string, t *tracker.Tracker) bool {
	_, ok := t.Manager(name)
	return ok
}

func fillSummaries(pkg *EmployeePackage, bal tracker.AccrualBalance, accrued float64, to pay.TimeOff, hoursWorked float64) {
	pkg.Hours.YTDHours = bal.YTDHours
	pkg.Hours.HoursThisPeriod = hoursWorked
	pkg.Vacation = VacationSummary{
		AccruedYTD:        bal.YTDVacationAccrued,
		TakenYTD:          bal.YTDVacationTaken,
		AccruedThisPeriod: accrued,
		TakenThisPeriod:   to.VacationHours,
		CarriedOver:       bal.VacationCarriedOver,
		Balance:           bal.VacationBalance,
	}
	pkg.Sick = SickSummary{
		BankYTD:         bal.SickBank,
		TakenYTD:        bal.SickTaken,
		TakenThisPeriod: to.SickHours,
		Balance:         bal.SickBalance,
	}
}
