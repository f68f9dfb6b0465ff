package payroll

import (
	"fmt"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/tracker"
	"github.com/shopspring/decimal"
)

// =============================================================================
// WEEKLY BREAKDOWN - Per-week tables for the output workbook
// =============================================================================
//
// The breakdown is not the payroll: it restates each work week at the
// overtime-basis wage (non-managers) or the non-exempt hourly wage
// (managers), with three hour columns the agency reconciles against its
// funding sources:
//
//   Hrs. Worked     - actual work; unpaid-sleep placeholders and OT lines
//                     count zero
//   Hrs. Paid       - compensated hours; OT lines count zero (their hours
//                     already sit in the base rows)
//   Nova-Paid Hrs.  - hours funded by the agency itself; asleep overnight
//                     time is funded elsewhere unless it is holiday premium
//
// Gross wages carry matching adjustments, with Nova-Paid Gross keeping the
// overtime dollars the plain Gross column drops.

func weeklyBreakdown(names []string, byName map[string][]pay.Shift, t *tracker.Tracker, cropped Cropped, period pay.Period) []WeekTable {
	var tables []WeekTable
	for _, name := range names {
		if m, ok := t.Manager(name); ok {
			tables = append(tables, managerWeekTables(name, m, byName[name], cropped, period)...)
		} else {
			tables = append(tables, nonExemptWeekTables(name, byName[name], cropped)...)
		}
	}
	return tables
}

// =============================================================================
// NON-MANAGER TABLES
// =============================================================================

func nonExemptWeekTables(name string, own []pay.Shift, cropped Cropped) []WeekTable {
	var tables []WeekTable
	for _, week := range pay.SplitByWorkWeek(own) {
		var entries []Line
		for _, s := range week.Shifts {
			entries = append(entries, Line{Name: name, Label: s.Code, Minutes: s.Minutes, Wage: s.BOTWage})
		}

		weekly := week.Shifts
		prepaid := prepaidFor(name, cropped, week)
		if len(prepaid) > 0 {
			for _, s := range prepaid {
				entries = append(entries, Line{Name: name, Label: "PREPAID " + s.Code, Minutes: s.Minutes, Wage: s.BOTWage})
			}
			weekly = append(append([]pay.Shift(nil), prepaid...), weekly...)
		}

		workedHrs := pay.HoursFromMinutes(sumMinutes(filterWorked(weekly)))
		paidHrs := pay.HoursFromMinutes(sumMinutes(weekly))
		if otHrs := overtimeHours(workedHrs); otHrs > 0 {
			entries = append(entries, Line{
				Name:    name,
				Label:   fmt.Sprintf("OT Extra Pay (%s)", week.Key()),
				Minutes: otHrs * 60,
				Wage:    pay.Half(overtimeBasisRate(weekly, paidHrs)),
			})
		}
		rows := aggregateLines(entries)

		// Holiday rows come from the week's own shifts only; prepaid
		// holiday time was broken down last cycle.
		var withHoliday []pay.Shift
		for _, s := range filterWorked(week.Shifts) {
			if s.HolidayMinutes > 0 {
				withHoliday = append(withHoliday, s)
			}
		}
		rows = append(rows, aggregateByCode(name, withHoliday, func(s pay.Shift) (float64, decimal.Decimal) {
			return s.HolidayMinutes, pay.Half(s.BOTWage)
		}, " Holiday Extra Pay")...)

		tables = append(tables, buildWeekTable(name, "Week of "+week.Key(), rows, false))
	}
	return tables
}

// =============================================================================
// MANAGER TABLES
// =============================================================================

func managerWeekTables(name string, m tracker.ManagerRate, own []pay.Shift, cropped Cropped, period pay.Period) []WeekTable {
	rate := m.NonExemptHourlyWage

	if !m.ExemptSemimonthlySalary.IsZero() {
		var rows []Line
		var holidayMin float64
		for _, s := range filterWorked(own) {
			holidayMin += s.HolidayMinutes
		}
		if holidayMin > 0 {
			rows = append(rows, Line{Name: name, Label: labelHoliday, Minutes: holidayMin, Wage: pay.Half(rate)})
		}
		rows = append(rows, Line{Name: name, Label: labelSalary, Minutes: 60, Wage: m.ExemptSemimonthlySalary})
		return []WeekTable{buildWeekTable(name, "Weeks of "+period.Label(), rows, true)}
	}

	lastKey := ""
	if n := len(cropped.Weeks); n > 0 {
		lastKey = cropped.Weeks[n-1].Key()
	}

	var tables []WeekTable
	for _, week := range pay.SplitByWorkWeek(own) {
		var entries []Line
		weekly := week.Shifts

		prepaid := prepaidFor(name, cropped, week)
		if len(prepaid) > 0 {
			entries = append(entries, Line{Name: name, Label: "PREPAID " + labelSalary, Minutes: 60, Wage: m.ExemptWeeklySalary})
			weekly = append(append([]pay.Shift(nil), weekly...), prepaid...)
		}

		// The breakdown's exemption test counts worked hours only, unlike
		// the payroll path which counts paid hours.
		workedHrs := pay.HoursFromMinutes(sumMinutes(filterWorked(weekly)))
		exemptHrs := pay.HoursFromMinutes(sumMinutes(exceptDirectCare(filterWorked(weekly))))

		if exemptHrs >= workedHrs-exemptHrs || (week.Key() == lastKey && cropped.Prepay) {
			entries = append(entries, Line{Name: name, Label: labelSalary, Minutes: 60, Wage: m.ExemptWeeklySalary})
		} else {
			entries = append(entries, aggregateByCode(name, weekly, func(s pay.Shift) (float64, decimal.Decimal) {
				return s.Minutes, rate
			}, "")...)
			if otHrs := overtimeHours(workedHrs); otHrs > 0 {
				entries = append(entries, Line{
					Name:    name,
					Label:   fmt.Sprintf("OT Extra Pay (%s)", week.Key()),
					Minutes: otHrs * 60,
					Wage:    pay.Half(rate),
				})
			}
		}
		tables = append(tables, buildWeekTable(name, "Week of "+week.Key(), entries, true))
	}
	return tables
}

// =============================================================================
// TABLE ASSEMBLY - Hour-column adjustments, totals, summary figures
// =============================================================================

func buildWeekTable(name, title string, lines []Line, manager bool) WeekTable {
	table := WeekTable{Name: name, Title: title}

	prepaidGross := decimal.Zero
	for _, l := range lines {
		hrs := pay.HoursFromMinutes(l.Minutes)
		gross := pay.MulHours(l.Wage, hrs)

		row := WeeklyRow{
			Name: l.Name, Label: l.Label,
			HrsWorked: hrs, HrsPaid: hrs, NovaPaidHrs: hrs,
			Wage: l.Wage, Gross: gross, NovaPaidGross: gross,
		}
		if pay.NotWorked(l.Label) {
			row.HrsWorked = 0
		}
		if pay.Asleep(l.Label) && !pay.HolidayLine(l.Label) {
			row.NovaPaidHrs = 0
			row.NovaPaidGross = decimal.Zero
		}
		if pay.OvertimeLine(l.Label) {
			// Overtime hours already live in the base rows; the plain gross
			// column drops the premium but Nova-Paid keeps it.
			row.HrsWorked = 0
			row.HrsPaid = 0
			row.Gross = decimal.Zero
		}
		table.Rows = append(table.Rows, row)

		if pay.PrepaidLine(l.Label) {
			prepaidGross = prepaidGross.Add(row.NovaPaidGross)
			if manager {
				continue // manager TOTAL rows exclude the prepaid carry-over
			}
		}
		table.Total.HrsWorked += row.HrsWorked
		table.Total.HrsPaid += row.HrsPaid
		table.Total.NovaPaidHrs += row.NovaPaidHrs
		table.Total.Wage = table.Total.Wage.Add(row.Wage)
		table.Total.Gross = table.Total.Gross.Add(row.Gross)
		table.Total.NovaPaidGross = table.Total.NovaPaidGross.Add(row.NovaPaidGross)
	}
	table.Total.Name = "TOTAL"
	table.Total.Label = "---"

	novaPaid := decimal.Zero
	for _, row := range table.Rows {
		novaPaid = novaPaid.Add(row.NovaPaidGross)
	}
	if manager {
		// A prepaid manager received the whole week's salary last cycle, so
		// the carry-over comes off twice: once as the duplicated row, once
		// as the deduction.
		table.RealWages = novaPaid.Sub(prepaidGross.Mul(decimal.NewFromInt(2)))
	} else {
		table.RealWages = novaPaid.Sub(prepaidGross)
		if table.Total.HrsPaid > 0 {
			table.OvertimeRate = pay.Cents(table.Total.Gross.Div(decimal.NewFromFloat(table.Total.HrsPaid)))
		}
	}
	table.RealWages = pay.Cents(table.RealWages)
	return table
}
