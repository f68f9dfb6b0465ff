package payroll

import (
	"fmt"
	"sort"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/tracker"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MANAGER PATH - Salaried staff with a week-by-week exemption test
// =============================================================================
//
// Managers are salaried, but a week spent mostly on direct care is paid
// hourly instead: the exemption only holds while the majority of the
// manager's time is managerial. The test runs per work week:
//
//   exempt hours (everything but direct care) >= direct-care hours
//     -> flat weekly salary
//   otherwise
//     -> hourly at the blended admin wage, plus overtime past 40 hours
//
// A prepay period's final week is always paid as salary: the week is
// incomplete, so the majority test cannot be trusted yet.

func managerPackage(name string, own []pay.Shift, t *tracker.Tracker, timeOff pay.TimeOffByEmployee, cropped Cropped) (EmployeePackage, tracker.AccrualBalance, error) {
	m, ok := t.Manager(name)
	if !ok {
		return EmployeePackage{}, tracker.AccrualBalance{}, &pay.LookupError{Employee: name, Field: "manager rate"}
	}
	regular := m.AdminWage

	worked := filterWorked(own)
	totalHoursWorked := pay.HoursFromMinutes(sumMinutes(worked))

	var lines []Line
	if !m.ExemptSemimonthlySalary.IsZero() {
		// Semimonthly managers are paid a flat salary per period, no
		// weekly test.
		lines = append(lines, Line{Name: name, Label: labelSalary, Minutes: 60, Wage: m.ExemptSemimonthlySalary})
	} else {
		lines = append(lines, managerWeeklyLines(name, own, m, cropped)...)
	}

	// A single holiday line at half the blended wage, across all types.
	var holidayMin float64
	for _, s := range worked {
		holidayMin += s.HolidayMinutes
	}
	if holidayMin > 0 {
		lines = append(lines, Line{Name: name, Label: labelHoliday, Minutes: holidayMin, Wage: pay.Half(regular)})
	}

	to := timeOff[name]
	lines = append(lines, timeOffLines(name, to, regular)...)
	lines = append(lines, bonusLines(name, t, regular)...)

	lines = aggregateLines(lines)
	finalizeLines(lines)

	pkg := EmployeePackage{
		Name:             name,
		Manager:          true,
		TotalHoursWorked: totalHoursWorked,
		TotalGross:       sumGross(lines),
		Lines:            lines,
		Hours: HoursSummary{
			HireDate:      m.HireDate,
			DaysSinceHire: m.DaysSinceHire,
		},
	}

	bal, accrued, err := rollForward(name, t, to, totalHoursWorked)
	if err != nil {
		return EmployeePackage{}, tracker.AccrualBalance{}, err
	}
	fillSummaries(&pkg, bal, accrued, to, totalHoursWorked)
	return pkg, bal, nil
}

func managerWeeklyLines(name string, own []pay.Shift, m tracker.ManagerRate, cropped Cropped) []Line {
	var lines []Line
	lastKey := ""
	if n := len(cropped.Weeks); n > 0 {
		lastKey = cropped.Weeks[n-1].Key()
	}

	for _, week := range pay.SplitByWorkWeek(own) {
		weekly := week.Shifts

		// A prepaid manager was paid the whole week's salary last cycle.
		// Deduct it here and fold the shifts back in, so this week's test
		// and totals see the complete week.
		if prepaid := prepaidFor(name, cropped, week); len(prepaid) > 0 {
			lines = append(lines, Line{Name: name, Label: labelPrepaid, Minutes: 60, Wage: m.ExemptWeeklySalary.Neg()})
			weekly = append(append([]pay.Shift(nil), prepaid...), weekly...)
		}

		weeklyHrs := pay.HoursFromMinutes(sumMinutes(weekly))
		exemptHrs := pay.HoursFromMinutes(sumMinutes(exceptDirectCare(weekly)))
		directCareHrs := weeklyHrs - exemptHrs

		if exemptHrs >= directCareHrs || (week.Key() == lastKey && cropped.Prepay) {
			lines = append(lines, Line{Name: name, Label: labelSalary, Minutes: 60, Wage: m.ExemptWeeklySalary})
			continue
		}

		// Hourly week: every shift type at the blended admin wage.
		lines = append(lines, aggregateByCode(name, weekly, func(s pay.Shift) (float64, decimal.Decimal) {
			return s.Minutes, m.AdminWage
		}, "")...)
		if otHrs := overtimeHours(weeklyHrs); otHrs > 0 {
			lines = append(lines, Line{
				Name:    name,
				Label:   fmt.Sprintf("OT Extra Pay (%s)", week.Key()),
				Minutes: otHrs * 60,
				Wage:    pay.Half(m.AdminWage),
			})
		}
	}
	return lines
}

func exceptDirectCare(shifts []pay.Shift) []pay.Shift {
	var out []pay.Shift
	for _, s := range shifts {
		if s.Code != pay.CodeDirectCare {
			out = append(out, s)
		}
	}
	return out
}

// aggregateLines merges lines sharing a label: minutes sum, the first wage
// wins, output ordered by label.
func aggregateLines(lines []Line) []Line {
	byLabel := make(map[string]*Line)
	var labels []string
	for _, l := range lines {
		if agg, ok := byLabel[l.Label]; ok {
			agg.Minutes += l.Minutes
			continue
		}
		copied := l
		byLabel[l.Label] = &copied
		labels = append(labels, l.Label)
	}
	sort.Strings(labels)
	out := make([]Line, 0, len(labels))
	for _, label := range labels {
		out = append(out, *byLabel[label])
	}
	return out
}
