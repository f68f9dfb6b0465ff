package payroll_test

import (
	"testing"
	"time"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ManagerMajorityExemptWeekPaysSalary(t *testing.T) {
	// GIVEN: 30 admin hours against 10 direct-care hours
	// WHEN: Running payroll
	// THEN: The exemption holds; one flat salary line for the week

	period := oneWeek()
	tr := baseTracker(t, period.Start)
	shifts := []pay.Shift{
		shift("Mara Boss", "Admin", at(2025, time.June, 2, 9), 10),
		shift("Mara Boss", "Admin", at(2025, time.June, 4, 9), 10),
		shift("Mara Boss", "Admin", at(2025, time.June, 6, 9), 10),
		shift("Mara Boss", "MGR-Direct-Care", at(2025, time.June, 8, 9), 10),
	}

	res, err := payroll.Run(shifts, tr, period)
	require.NoError(t, err)

	pkg := packageFor(t, res, "Mara Boss")
	assert.True(t, pkg.Manager)
	require.Len(t, pkg.Lines, 1)
	assert.Equal(t, "MGR Salary", pkg.Lines[0].Label)
	eq(t, 2000, pkg.Lines[0].Gross, "weekly salary")
	assert.Equal(t, 40.0, pkg.TotalHoursWorked)
	eq(t, 2000, pkg.TotalGross, "total gross")
}

func TestRun_ManagerDirectCareWeekPaidHourly(t *testing.T) {
	// GIVEN: 30 direct-care hours against 12 admin hours
	// THEN: The exemption breaks; every shift type pays at the blended wage
	// and the 2 hours past 40 pay as overtime

	period := oneWeek()
	tr := baseTracker(t, period.Start)
	shifts := []pay.Shift{
		shift("Mara Boss", "MGR-Direct-Care", at(2025, time.June, 2, 6), 10),
		shift("Mara Boss", "MGR-Direct-Care", at(2025, time.June, 4, 6), 12),
		shift("Mara Boss", "MGR-Direct-Care", at(2025, time.June, 6, 6), 8),
		shift("Mara Boss", "Admin", at(2025, time.June, 8, 6), 12),
	}

	res, err := payroll.Run(shifts, tr, period)
	require.NoError(t, err)

	pkg := packageFor(t, res, "Mara Boss")
	require.Len(t, pkg.Lines, 3)

	admin := pkg.Lines[0]
	assert.Equal(t, "Admin", admin.Label)
	eq(t, 30, admin.Wage, "blended wage, not the rate table")
	eq(t, 360, admin.Gross, "admin gross")

	care := pkg.Lines[1]
	assert.Equal(t, "MGR-Direct-Care", care.Label)
	eq(t, 900, care.Gross, "30h at the blended wage")

	ot := pkg.Lines[2]
	assert.Equal(t, "OT Extra Pay (2025-06-02)", ot.Label)
	assert.Equal(t, 120.0, ot.Minutes)
	eq(t, 15, ot.Wage, "half the blended wage")
	eq(t, 30, ot.Gross, "ot gross")

	eq(t, 1290, pkg.TotalGross, "total gross")
}

func TestRun_ManagerPartialFinalWeekForcedToSalary(t *testing.T) {
	// GIVEN: A full exempt week, then a direct-care-heavy partial final week
	// THEN: The incomplete week's majority test is not trusted; both weeks
	// pay salary, aggregated into one line

	period := pay.Period{Start: at(2025, time.June, 2, 0), End: at(2025, time.June, 16, 0)}
	tr := baseTracker(t, period.Start)
	shifts := []pay.Shift{
		shift("Mara Boss", "Admin", at(2025, time.June, 2, 9), 10),
		shift("Mara Boss", "Admin", at(2025, time.June, 8, 9), 10),
		shift("Mara Boss", "MGR-Direct-Care", at(2025, time.June, 9, 9), 10),
		shift("Mara Boss", "MGR-Direct-Care", at(2025, time.June, 11, 9), 10),
	}

	res, err := payroll.Run(shifts, tr, period)
	require.NoError(t, err)
	assert.True(t, res.Prepay)

	pkg := packageFor(t, res, "Mara Boss")
	require.Len(t, pkg.Lines, 1)
	assert.Equal(t, "MGR Salary", pkg.Lines[0].Label)
	assert.Equal(t, 2.0, pkg.Lines[0].Hours, "two salary weeks in one line")
	eq(t, 4000, pkg.Lines[0].Gross, "two weekly salaries")
}

func TestRun_PrepaidManagerWeekDeductedOnce(t *testing.T) {
	// GIVEN: A manager whose final week last cycle was prepaid in full
	// WHEN: That week's shifts fold into this period's first week
	// THEN: A negative deduction line offsets the salary paid again

	period := oneWeek()
	tr := baseTracker(t, period.Start)
	carried := shift("Mara Boss", "MGR-Direct-Care", at(2025, time.May, 29, 9), 4)
	carried.RegularWage = decimal.NewFromInt(25)
	carried.BOTWage = decimal.NewFromInt(25)
	tr.Prepaid = []pay.Shift{carried}

	shifts := []pay.Shift{
		shift("Mara Boss", "Admin", at(2025, time.June, 2, 9), 10),
		shift("Mara Boss", "Admin", at(2025, time.June, 8, 9), 10),
	}

	res, err := payroll.Run(shifts, tr, period)
	require.NoError(t, err)

	pkg := packageFor(t, res, "Mara Boss")
	require.Len(t, pkg.Lines, 2)
	assert.Equal(t, "MGR Salary", pkg.Lines[0].Label)
	eq(t, 2000, pkg.Lines[0].Gross, "salary for the completed week")
	assert.Equal(t, "Prepaid Last Time", pkg.Lines[1].Label)
	eq(t, -2000, pkg.Lines[1].Gross, "last cycle's advance comes back off")
	assert.True(t, pkg.TotalGross.IsZero())
}

func TestRun_ManagerHolidaySingleLine(t *testing.T) {
	// Managers get one holiday line across all shift types, at half the
	// blended wage.

	period := oneWeek()
	tr := baseTracker(t, period.Start)
	mon := shift("Mara Boss", "Admin", at(2025, time.June, 2, 9), 10)
	mon.HolidayMinutes = 60
	sun := shift("Mara Boss", "Admin", at(2025, time.June, 8, 9), 10)
	sun.HolidayMinutes = 120
	shifts := []pay.Shift{mon, sun}

	res, err := payroll.Run(shifts, tr, period)
	require.NoError(t, err)

	pkg := packageFor(t, res, "Mara Boss")
	require.Len(t, pkg.Lines, 2)
	holiday := pkg.Lines[0]
	assert.Equal(t, "Holiday Extra Pay", holiday.Label)
	assert.Equal(t, 3.0, holiday.Hours)
	eq(t, 15, holiday.Wage, "half the $30 blended wage")
	eq(t, 45, holiday.Gross, "holiday gross")
	assert.Equal(t, "MGR Salary", pkg.Lines[1].Label)
}

func TestRun_SemimonthlyManagerSingleSalaryLine(t *testing.T) {
	// A semimonthly salary skips the weekly test entirely: one line per
	// period, regardless of what the weeks look like.

	period := oneWeek()
	tr := baseTracker(t, period.Start)
	shifts := []pay.Shift{
		shift("Dana Lead", "MGR-Direct-Care", at(2025, time.June, 3, 9), 12),
	}

	res, err := payroll.Run(shifts, tr, period)
	require.NoError(t, err)

	pkg := packageFor(t, res, "Dana Lead")
	require.Len(t, pkg.Lines, 1)
	assert.Equal(t, "MGR Salary", pkg.Lines[0].Label)
	eq(t, 3500, pkg.Lines[0].Gross, "semimonthly salary")

	// The breakdown covers the whole period in one table.
	var table *payroll.WeekTable
	for i := range res.Weekly {
		if res.Weekly[i].Name == "Dana Lead" {
			table = &res.Weekly[i]
		}
	}
	require.NotNil(t, table)
	assert.Equal(t, "Weeks of 2025-06-02 - 2025-06-08", table.Title)
	assert.True(t, table.OvertimeRate.IsZero(), "meaningless for salaried staff")
}

func TestRun_PrepaidManagerBreakdownDeductsTwice(t *testing.T) {
	// The breakdown shows the prepaid salary as a positive row excluded from
	// the TOTAL, and real wages subtract it twice: once for the duplicated
	// row, once for the payroll deduction.

	period := oneWeek()
	tr := baseTracker(t, period.Start)
	carried := shift("Mara Boss", "MGR-Direct-Care", at(2025, time.May, 29, 9), 4)
	carried.RegularWage = decimal.NewFromInt(25)
	carried.BOTWage = decimal.NewFromInt(25)
	tr.Prepaid = []pay.Shift{carried}

	shifts := []pay.Shift{
		shift("Mara Boss", "Admin", at(2025, time.June, 2, 9), 10),
		shift("Mara Boss", "Admin", at(2025, time.June, 8, 9), 10),
	}

	res, err := payroll.Run(shifts, tr, period)
	require.NoError(t, err)

	require.Len(t, res.Weekly, 1)
	table := res.Weekly[0]

	var prepaid, salary *payroll.WeeklyRow
	for i := range table.Rows {
		switch table.Rows[i].Label {
		case "PREPAID MGR Salary":
			prepaid = &table.Rows[i]
		case "MGR Salary":
			salary = &table.Rows[i]
		}
	}
	require.NotNil(t, prepaid)
	require.NotNil(t, salary)
	eq(t, 2000, prepaid.NovaPaidGross, "shown positive for reconciliation")
	eq(t, 2000, table.Total.NovaPaidGross, "TOTAL excludes the carry-over")
	eq(t, 0, table.RealWages, "4000 shown minus 2x the 2000 advance")
}
