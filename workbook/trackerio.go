package workbook

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/payroll"
	"github.com/nova-hs/payroll-engine/tracker"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TRACKER SHEETS
// =============================================================================

const (
	sheetManagers   = "MANAGER INFO"
	sheetShiftRates = "SHIFT INFO"
	sheetStaff      = "STAFF INFO"
	sheetAccruals   = "HRS & ACCRUALS"
	sheetBonus      = "NEW PTO & BONUS INFO"
	sheetPrepaid    = "IGNORE! (Prepaid Shifts)"
	sheetDeferred   = "IGNORE! (Next Period Shifts)"
)

// managerFixedColumns are MANAGER INFO's leading columns; everything after
// them (except the derived days column) is a benefit.
var managerFixedColumns = map[string]bool{
	"Name":                         true,
	"Hire Date":                    true,
	"Exempt Weekly Salary":         true,
	"Exempt Semi-monthly Salary":   true,
	"Non-exempt Hourly Wage":       true,
	"Admin/Sick/Vacay Wage":        true,
	"Accrual Rate":                 true,
	"Days Elapsed Since Hire Date": true,
}

const (
	punchDateFormat = "01/02/2006"
	punchTimeFormat = "03:04 PM"
)

// =============================================================================
// READER
// =============================================================================

// ReadTracker loads the persistent tracker workbook. Derived fields are not
// filled here; call Tracker.Prepare with the period start afterwards.
func ReadTracker(path string) (*tracker.Tracker, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open tracker %s: %v", pay.ErrFileFormat, path, err)
	}
	defer f.Close()

	t := &tracker.Tracker{}

	if t.ManagerRates, err = readManagers(f); err != nil {
		return nil, err
	}
	if t.ShiftRates, err = readShiftRates(f); err != nil {
		return nil, err
	}
	if t.Staff, err = readStaff(f); err != nil {
		return nil, err
	}
	if t.Accruals, err = readAccruals(f); err != nil {
		return nil, err
	}
	if t.BonusRows, err = readBonusRows(f); err != nil {
		return nil, err
	}
	if t.Prepaid, err = readCarriedShifts(f, sheetPrepaid); err != nil {
		return nil, err
	}
	if t.Deferred, err = readCarriedShifts(f, sheetDeferred); err != nil {
		return nil, err
	}
	return t, nil
}

func sheetRows(f *excelize.File, sheet string) ([][]string, map[string]int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: tracker sheet %q: %v", pay.ErrFileFormat, sheet, err)
	}
	return rows, header(rows), nil
}

func readManagers(f *excelize.File) ([]tracker.ManagerRate, error) {
	rows, idx, err := sheetRows(f, sheetManagers)
	if err != nil {
		return nil, err
	}

	var benefitCols []string
	if len(rows) > 0 {
		for _, name := range rows[0] {
			name = strings.TrimSpace(name)
			if name != "" && !managerFixedColumns[name] {
				benefitCols = append(benefitCols, name)
			}
		}
	}

	var out []tracker.ManagerRate
	for _, r := range rows[1:] {
		name := cell(r, idx, "Name")
		if name == "" {
			continue
		}
		m := tracker.ManagerRate{
			Name:                    name,
			ExemptWeeklySalary:      moneyOrZero(cell(r, idx, "Exempt Weekly Salary")),
			ExemptSemimonthlySalary: moneyOrZero(cell(r, idx, "Exempt Semi-monthly Salary")),
			NonExemptHourlyWage:     moneyOrZero(cell(r, idx, "Non-exempt Hourly Wage")),
			AdminWage:               moneyOrZero(cell(r, idx, "Admin/Sick/Vacay Wage")),
			AccrualRate:             floatOrZero(cell(r, idx, "Accrual Rate")),
		}
		if d, ok := parseDate(cell(r, idx, "Hire Date")); ok {
			m.HireDate = d
		}
		for _, col := range benefitCols {
			m.Benefits = append(m.Benefits, tracker.Benefit{
				Name:   col,
				Amount: moneyOrZero(cell(r, idx, col)),
			})
		}
		out = append(out, m)
	}
	return out, nil
}

func readShiftRates(f *excelize.File) ([]tracker.ShiftRate, error) {
	rows, idx, err := sheetRows(f, sheetShiftRates)
	if err != nil {
		return nil, err
	}
	var out []tracker.ShiftRate
	for _, r := range rows[1:] {
		code := cell(r, idx, "Shift")
		if code == "" {
			continue
		}
		sr := tracker.ShiftRate{
			Code:        code,
			RegularWage: moneyOrZero(cell(r, idx, "Regular Hourly Wage")),
			BOTWage:     moneyOrZero(cell(r, idx, "BOT Hourly Wage")),
			AccrualRate: floatOrZero(cell(r, idx, "Accrual Rate")),
		}
		// A non-numeric billing cell means the shift type is not billable.
		if rate, ok := parseMoney(cell(r, idx, "Billing Rate")); ok {
			sr.BillingRate = &rate
		}
		out = append(out, sr)
	}
	return out, nil
}

func readStaff(f *excelize.File) ([]tracker.StaffInfo, error) {
	rows, idx, err := sheetRows(f, sheetStaff)
	if err != nil {
		return nil, err
	}
	var out []tracker.StaffInfo
	for _, r := range rows[1:] {
		name := cell(r, idx, "Name")
		if name == "" {
			continue
		}
		s := tracker.StaffInfo{
			Name:        name,
			BSTLevel:    cell(r, idx, "BST Level"),
			OALevel:     cell(r, idx, "OA Level"),
			HSSLevel:    cell(r, idx, "HSS Level"),
			BSTHours:    floatOrZero(cell(r, idx, "# BST")),
			OAHours:     floatOrZero(cell(r, idx, "# OA")),
			HSSHours:    floatOrZero(cell(r, idx, "# HSS")),
			AccrualRate: floatOrZero(cell(r, idx, "Accrual Rate")),
		}
		if d, ok := parseDate(cell(r, idx, "Hire Date")); ok {
			s.HireDate = d
		}
		out = append(out, s)
	}
	return out, nil
}

func readAccruals(f *excelize.File) ([]tracker.AccrualBalance, error) {
	rows, idx, err := sheetRows(f, sheetAccruals)
	if err != nil {
		return nil, err
	}
	var out []tracker.AccrualBalance
	for _, r := range rows[1:] {
		name := cell(r, idx, "Staff")
		if name == "" {
			continue
		}
		out = append(out, tracker.AccrualBalance{
			Staff:               name,
			YTDHours:            floatOrZero(cell(r, idx, "YTD Hours")),
			YTDVacationAccrued:  floatOrZero(cell(r, idx, "YTD Vacation Accrued")),
			YTDVacationTaken:    floatOrZero(cell(r, idx, "YTD Vacation Taken")),
			VacationCarriedOver: floatOrZero(cell(r, idx, "Vac. Hrs Carried Over")),
			VacationBalance:     floatOrZero(cell(r, idx, "Vacation Balance")),
			SickBank:            floatOrZero(cell(r, idx, "Sick Bank")),
			SickTaken:           floatOrZero(cell(r, idx, "Sick Taken")),
			SickBalance:         floatOrZero(cell(r, idx, "Sick Balance")),
			Sub:                 floatOrZero(cell(r, idx, "Sub")) != 0,
		})
	}
	return out, nil
}

func readBonusRows(f *excelize.File) ([]tracker.BonusRow, error) {
	rows, idx, err := sheetRows(f, sheetBonus)
	if err != nil {
		return nil, err
	}
	var out []tracker.BonusRow
	for _, r := range rows[1:] {
		name := cell(r, idx, "Full Name")
		if name == "" {
			continue
		}
		b := tracker.BonusRow{
			FullName:  name,
			FirstName: cell(r, idx, "First Name"),
			LastName:  cell(r, idx, "Last Name"),
		}
		for i := 0; i < 4; i++ {
			n := i + 1
			if amount, ok := parseMoney(cell(r, idx, fmt.Sprintf("Bonus %d", n))); ok {
				slot := &tracker.BonusSlot{Amount: amount}
				if d, ok := parseDate(cell(r, idx, fmt.Sprintf("Bonus %d Date", n))); ok {
					slot.Date = d
				}
				b.Bonuses[i] = slot
			}
			if start, end := premiumInterval(r, idx, n); !start.IsZero() && !end.IsZero() {
				b.Premium[i] = &tracker.PremiumSlot{CheckIn: start, CheckOut: end}
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func premiumInterval(r []string, idx map[string]int, n int) (in, out time.Time) {
	in = punchAt(
		cell(r, idx, fmt.Sprintf("Premium Pay %d Check-In Date", n)),
		cell(r, idx, fmt.Sprintf("Premium Pay %d Check-In Time", n)))
	out = punchAt(
		cell(r, idx, fmt.Sprintf("Premium Pay %d Check-Out Date", n)),
		cell(r, idx, fmt.Sprintf("Premium Pay %d Check-Out Time", n)))
	return in, out
}

func punchAt(date, clock string) time.Time {
	d, ok := parseDate(date)
	if !ok {
		return time.Time{}
	}
	c, ok := parseClock(clock)
	if !ok {
		return time.Time{}
	}
	return d.Add(c)
}

// =============================================================================
// CARRIED SHIFT SHEETS
// =============================================================================

var carriedColumns = []string{
	"Name", "First Name", "Last Name", "Shift_original", "Shift",
	"Check-In Date", "Check-In Time", "Check-Out Date", "Check-Out Time",
	"Min. Worked", "Regular Hourly Wage", "BOT Hourly Wage", "Accrual Rate",
	"Holiday Worked Duration (Minutes)",
}

func readCarriedShifts(f *excelize.File, sheet string) ([]pay.Shift, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		// The sheet is absent on a freshly seeded tracker.
		return nil, nil
	}
	idx := header(rows)
	var out []pay.Shift
	for _, r := range rows[1:] {
		name := cell(r, idx, "Name")
		if name == "" {
			continue
		}
		checkIn := punchAt(cell(r, idx, "Check-In Date"), cell(r, idx, "Check-In Time"))
		checkOut := punchAt(cell(r, idx, "Check-Out Date"), cell(r, idx, "Check-Out Time"))
		if checkIn.IsZero() || checkOut.IsZero() {
			return nil, &pay.ParseError{Field: "carried shift punch", Value: name, Format: punchDateFormat + " " + punchTimeFormat}
		}
		out = append(out, pay.Shift{
			Name:           name,
			FirstName:      cell(r, idx, "First Name"),
			LastName:       cell(r, idx, "Last Name"),
			OriginalCode:   cell(r, idx, "Shift_original"),
			Code:           cell(r, idx, "Shift"),
			CheckIn:        checkIn,
			CheckOut:       checkOut,
			Minutes:        floatOrZero(cell(r, idx, "Min. Worked")),
			HolidayMinutes: floatOrZero(cell(r, idx, "Holiday Worked Duration (Minutes)")),
			RegularWage:    moneyOrZero(cell(r, idx, "Regular Hourly Wage")),
			BOTWage:        moneyOrZero(cell(r, idx, "BOT Hourly Wage")),
			AccrualRate:    floatOrZero(cell(r, idx, "Accrual Rate")),
		})
	}
	return out, nil
}

func writeCarriedShifts(f *excelize.File, sheet string, shifts []pay.Shift) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	head := make([]interface{}, len(carriedColumns))
	for i, c := range carriedColumns {
		head[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i, s := range shifts {
		values := row(
			s.Name, s.FirstName, s.LastName, s.OriginalCode, s.Code,
			s.CheckIn.Format(punchDateFormat), s.CheckIn.Format(punchTimeFormat),
			s.CheckOut.Format(punchDateFormat), s.CheckOut.Format(punchTimeFormat),
			s.Minutes, money(s.RegularWage), money(s.BOTWage), s.AccrualRate,
			s.HolidayMinutes,
		)
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SNAPSHOT WRITER
// =============================================================================

// WriteTracker writes the refreshed tracker for the next cycle: rate and
// staff tables as loaded, rolled-forward accruals, a cleared bonus sheet,
// and this run's prepaid/deferred shifts.
func WriteTracker(path string, t *tracker.Tracker, res *payroll.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeBonusTemplate(f, t); err != nil {
		return err
	}
	if err := writeShiftRates(f, t); err != nil {
		return err
	}
	if err := writeStaff(f, t); err != nil {
		return err
	}
	if err := writeManagers(f, t); err != nil {
		return err
	}
	if err := writeAccruals(f, res.Accruals); err != nil {
		return err
	}
	if err := writeCarriedShifts(f, sheetPrepaid, res.Prepaid); err != nil {
		return err
	}
	if err := writeCarriedShifts(f, sheetDeferred, res.Deferred); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	return f.SaveAs(path)
}

// writeBonusTemplate clears every bonus and premium entry, keeping only the
// name columns: the next cycle starts from a blank bonus sheet.
func writeBonusTemplate(f *excelize.File, t *tracker.Tracker) error {
	if _, err := f.NewSheet(sheetBonus); err != nil {
		return err
	}
	cols := []string{"Full Name", "First Name", "Last Name"}
	for n := 1; n <= 4; n++ {
		cols = append(cols, fmt.Sprintf("Bonus %d", n), fmt.Sprintf("Bonus %d Date", n))
	}
	for n := 1; n <= 4; n++ {
		cols = append(cols,
			fmt.Sprintf("Premium Pay %d Check-In Date", n),
			fmt.Sprintf("Premium Pay %d Check-In Time", n),
			fmt.Sprintf("Premium Pay %d Check-Out Date", n),
			fmt.Sprintf("Premium Pay %d Check-Out Time", n))
	}
	head := make([]interface{}, len(cols))
	for i, c := range cols {
		head[i] = c
	}
	if err := f.SetSheetRow(sheetBonus, "A1", &head); err != nil {
		return err
	}
	for i, b := range t.BonusRows {
		values := row(b.FullName, b.FirstName, b.LastName)
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetBonus, cellRef, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeShiftRates(f *excelize.File, t *tracker.Tracker) error {
	if _, err := f.NewSheet(sheetShiftRates); err != nil {
		return err
	}
	head := row("Shift", "Regular Hourly Wage", "BOT Hourly Wage", "Accrual Rate", "Billing Rate")
	if err := f.SetSheetRow(sheetShiftRates, "A1", &head); err != nil {
		return err
	}
	for i, r := range t.ShiftRates {
		var billing interface{}
		if r.BillingRate != nil {
			billing = money(*r.BillingRate)
		}
		values := row(r.Code, money(r.RegularWage), money(r.BOTWage), r.AccrualRate, billing)
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetShiftRates, cellRef, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeStaff(f *excelize.File, t *tracker.Tracker) error {
	if _, err := f.NewSheet(sheetStaff); err != nil {
		return err
	}
	head := row("Name", "Hire Date", "BST Level", "OA Level", "HSS Level",
		"# BST", "# OA", "# HSS", "Accrual Rate", "Admin/Sick/Vacay Wage",
		"Days Elapsed Since Hire Date")
	if err := f.SetSheetRow(sheetStaff, "A1", &head); err != nil {
		return err
	}
	staff := append([]tracker.StaffInfo(nil), t.Staff...)
	sortByLastWord(staff, func(s tracker.StaffInfo) string { return s.Name })
	for i, s := range staff {
		values := row(s.Name, s.HireDate.Format("2006-01-02"), s.BSTLevel, s.OALevel, s.HSSLevel,
			s.BSTHours, s.OAHours, s.HSSHours, s.AccrualRate, money(s.AdminWage), s.DaysSinceHire)
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetStaff, cellRef, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeManagers(f *excelize.File, t *tracker.Tracker) error {
	if _, err := f.NewSheet(sheetManagers); err != nil {
		return err
	}
	cols := []interface{}{"Name", "Hire Date", "Exempt Weekly Salary", "Exempt Semi-monthly Salary",
		"Non-exempt Hourly Wage", "Admin/Sick/Vacay Wage", "Accrual Rate", "Days Elapsed Since Hire Date"}
	if len(t.ManagerRates) > 0 {
		for _, b := range t.ManagerRates[0].Benefits {
			cols = append(cols, b.Name)
		}
	}
	if err := f.SetSheetRow(sheetManagers, "A1", &cols); err != nil {
		return err
	}
	for i, m := range t.ManagerRates {
		values := row(m.Name, m.HireDate.Format("2006-01-02"), money(m.ExemptWeeklySalary),
			money(m.ExemptSemimonthlySalary), money(m.NonExemptHourlyWage), money(m.AdminWage),
			m.AccrualRate, m.DaysSinceHire)
		for _, b := range m.Benefits {
			values = append(values, money(b.Amount))
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetManagers, cellRef, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeAccruals(f *excelize.File, balances []tracker.AccrualBalance) error {
	if _, err := f.NewSheet(sheetAccruals); err != nil {
		return err
	}
	head := row("Staff", "YTD Hours", "YTD Vacation Accrued", "YTD Vacation Taken",
		"Vac. Hrs Carried Over", "Vacation Balance", "Sick Bank", "Sick Taken", "Sick Balance", "Sub")
	if err := f.SetSheetRow(sheetAccruals, "A1", &head); err != nil {
		return err
	}
	sorted := append([]tracker.AccrualBalance(nil), balances...)
	sortByLastWord(sorted, func(b tracker.AccrualBalance) string { return b.Staff })
	for i, b := range sorted {
		sub := 0
		if b.Sub {
			sub = 1
		}
		values := row(b.Staff, b.YTDHours, b.YTDVacationAccrued, b.YTDVacationTaken,
			b.VacationCarriedOver, b.VacationBalance, b.SickBank, b.SickTaken, b.SickBalance, sub)
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetAccruals, cellRef, &values); err != nil {
			return err
		}
	}
	return nil
}

// sortByLastWord orders records by the last word of a name field, the way
// every human-facing sheet sorts people.
func sortByLastWord[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return lastWord(name(items[i])) < lastWord(name(items[j]))
	})
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[len(fields)-1]
}
