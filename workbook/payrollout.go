package workbook

import (
	"fmt"
	"strings"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/payroll"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// PAYROLL OUTPUT WORKBOOK
// =============================================================================

const (
	sheetFinalPayroll     = "FINAL PAYROLL"
	sheetWeeklyBreakdowns = "WEEKLY BREAKDOWNS"
	sheetShiftBreakdowns  = "SHIFT BREAKDOWNS"
)

// sheetWriter appends rows to one sheet, tracking the cursor so stacked
// per-employee blocks land where the previous block ended.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string) (*sheetWriter, error) {
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}
	return &sheetWriter{f: f, sheet: sheet, next: 1}, nil
}

func (w *sheetWriter) writeRow(values ...interface{}) {
	if w.err != nil {
		return
	}
	cellRef, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(w.sheet, cellRef, &values)
	w.next++
}

func (w *sheetWriter) blank(n int) { w.next += n }

// WritePayroll writes the payroll output workbook: stacked per-employee pay
// stubs, the weekly breakdown tables, and the full shift detail. The same
// layout serves the regular run and the off-cycle single-employee run; only
// the result's contents differ.
func WritePayroll(path string, res *payroll.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeFinalPayroll(f, res); err != nil {
		return err
	}
	if err := writeWeeklyBreakdowns(f, res); err != nil {
		return err
	}
	if err := writeShiftBreakdowns(f, sheetShiftBreakdowns, res); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	return f.SaveAs(path)
}

// =============================================================================
// FINAL PAYROLL - One stacked block per employee
// =============================================================================

func writeFinalPayroll(f *excelize.File, res *payroll.Result) error {
	w, err := newSheetWriter(f, sheetFinalPayroll)
	if err != nil {
		return err
	}

	packages := append([]payroll.EmployeePackage(nil), res.Packages...)
	sortByLastWord(packages, func(p payroll.EmployeePackage) string { return p.Name })

	for _, p := range packages {
		writeEmployeeBlock(w, p, res.Period)
		w.blank(3)
	}
	return w.err
}

func writeEmployeeBlock(w *sheetWriter, p payroll.EmployeePackage, period pay.Period) {
	tag := " "
	if p.Sub {
		tag = "SUB ONLY"
	}
	w.writeRow(p.Name, tag)

	w.writeRow("Name", "Shift", "Min. Worked", "Hrs. Worked", "Wage", "Gross Wages")
	for _, l := range p.Lines {
		w.writeRow(l.Name, l.Label, l.Minutes, l.Hours, money(l.Wage), money(l.Gross))
	}

	if p.Manager {
		w.writeRow("Total Hours Worked", "Total Gross Wage", "Pay Period")
		w.writeRow(p.TotalHoursWorked, money(p.TotalGross), period.Label())
	} else {
		w.writeRow("Total Gross Wage", "Pay Period")
		w.writeRow(money(p.TotalGross), period.Label())
	}

	w.writeRow("Hrs. YTD", "Hrs. Worked This Period", "Hire Date", "Calendar Days Since Hire Date")
	w.writeRow(p.Hours.YTDHours, p.Hours.HoursThisPeriod,
		p.Hours.HireDate.Format("2006-01-02"), p.Hours.DaysSinceHire)

	w.writeRow("Vac. Accrued YTD", "Vac. Taken YTD", "Vac. Accrued This Period",
		"Vac. Taken This Period", "Vac. Hrs Carried Over", "Vac. Balance")
	w.writeRow(p.Vacation.AccruedYTD, p.Vacation.TakenYTD, p.Vacation.AccruedThisPeriod,
		p.Vacation.TakenThisPeriod, p.Vacation.CarriedOver, p.Vacation.Balance)

	w.writeRow("Sick Bank YTD", "Sick Taken YTD", "Sick Taken This Period", "Sick Balance")
	w.writeRow(p.Sick.BankYTD, p.Sick.TakenYTD, p.Sick.TakenThisPeriod, p.Sick.Balance)
}

// =============================================================================
// WEEKLY BREAKDOWNS - One table per employee-week
// =============================================================================

func writeWeeklyBreakdowns(f *excelize.File, res *payroll.Result) error {
	w, err := newSheetWriter(f, sheetWeeklyBreakdowns)
	if err != nil {
		return err
	}

	isManager := make(map[string]bool)
	for _, p := range res.Packages {
		isManager[p.Name] = p.Manager
	}

	// Tables arrive grouped per employee; the uppercased name heads only the
	// first table of each group.
	prev := ""
	for _, table := range res.Weekly {
		head := ""
		if table.Name != prev {
			head = strings.ToUpper(table.Name)
			prev = table.Name
		}
		w.writeRow(head, table.Title)

		w.writeRow("Name", "Shift", "Hrs. Worked", "Hrs. Paid", "Nova-Paid Hrs.",
			"Wage", "Gross Wages", "Nova-Paid Gross Wages")
		for _, r := range table.Rows {
			writeWeeklyRow(w, r)
		}
		writeWeeklyRow(w, table.Total)

		w.writeRow("Weekly Nova-Paid Gross Wages - Prepaid Wages", money(table.RealWages))
		if !isManager[table.Name] {
			w.writeRow("Total Gross Wages / Total Hrs. Paid", money(table.OvertimeRate))
		}
		w.blank(2)
	}
	return w.err
}

func writeWeeklyRow(w *sheetWriter, r payroll.WeeklyRow) {
	w.writeRow(r.Name, r.Label, r.HrsWorked, r.HrsPaid, r.NovaPaidHrs,
		money(r.Wage), money(r.Gross), money(r.NovaPaidGross))
}

// =============================================================================
// SHIFT BREAKDOWNS - Flat detail of every paid and time-off shift
// =============================================================================

func writeShiftBreakdowns(f *excelize.File, sheet string, res *payroll.Result) error {
	w, err := newSheetWriter(f, sheet)
	if err != nil {
		return err
	}

	detail := make([]pay.Shift, 0, len(res.InPeriod)+len(res.TimeOffDetail))
	detail = append(detail, res.InPeriod...)
	detail = append(detail, res.TimeOffDetail...)
	sortShiftDetail(detail)

	w.writeRow("Name", "First Name", "Last Name", "Shift_original", "Shift",
		"Day of the Week", "Check-In Date/Time", "Check-Out Date/Time",
		"Min. Worked", "Hrs. Worked", "Regular Hourly Wage", "BOT Hourly Wage",
		"Accrual Rate", "Holiday Worked Duration (Minutes)", "Holiday Worked Duration (Hours)")
	for _, s := range detail {
		w.writeRow(s.Name, s.FirstName, s.LastName, s.OriginalCode, s.Code,
			s.CheckIn.Weekday().String(),
			s.CheckIn.Format(punchDateFormat+" "+punchTimeFormat),
			s.CheckOut.Format(punchDateFormat+" "+punchTimeFormat),
			s.Minutes, s.Hours(), money(s.RegularWage), money(s.BOTWage),
			s.AccrualRate, s.HolidayMinutes, pay.HoursFromMinutes(s.HolidayMinutes))
	}
	return w.err
}

func sortShiftDetail(shifts []pay.Shift) {
	pay.SortByCheckIn(shifts)
	sortByLastWord(shifts, func(s pay.Shift) string {
		if s.LastName != "" {
			return s.LastName
		}
		return s.Name
	})
}

// OffCyclePath names the off-cycle artifact for one employee.
func OffCyclePath(dir, name string, period pay.Period) string {
	return fmt.Sprintf("%s/OFF CYCLE PAYROLL OUTPUT - %s - %s.xlsx", dir, name, period.Label())
}
