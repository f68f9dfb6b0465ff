package workbook

import (
	"github.com/nova-hs/payroll-engine/invoice"
	"github.com/nova-hs/payroll-engine/payroll"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// MACHINE-READABLE EXTRACT
// =============================================================================

const (
	sheetMachinePayroll = "Payroll"
	sheetMachineInvoice = "Invoice"
)

// WriteMachineReadable writes the flat rectangular extract consumed by
// downstream reporting: one row per pay line, the employee's period summary
// repeated on each. A nil invoice (off-cycle run) omits the Invoice sheet.
func WriteMachineReadable(path string, res *payroll.Result, inv *invoice.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeMachinePayroll(f, res); err != nil {
		return err
	}
	if inv != nil {
		if err := writeMachineInvoice(f, inv); err != nil {
			return err
		}
	}

	f.DeleteSheet("Sheet1")
	return f.SaveAs(path)
}

func writeMachinePayroll(f *excelize.File, res *payroll.Result) error {
	w, err := newSheetWriter(f, sheetMachinePayroll)
	if err != nil {
		return err
	}

	w.writeRow("Pay Period", "Name", "Total Gross Wage", "Shift", "Min. Worked",
		"Hrs. Worked", "Wage", "Gross Wages", "Hrs. YTD", "Hrs. Worked This Period",
		"Hire Date", "Calendar Days Since Hire Date", "Vac. Accrued YTD",
		"Vac. Taken YTD", "Vac. Accrued This Period", "Vac. Taken This Period",
		"Vac. Balance", "Sick Bank YTD", "Sick Taken YTD", "Sick Taken This Period",
		"Sick Balance")

	period := res.Period.Label()
	for _, p := range res.Packages {
		for _, l := range p.Lines {
			w.writeRow(period, p.Name, money(p.TotalGross), l.Label, l.Minutes,
				l.Hours, money(l.Wage), money(l.Gross),
				p.Hours.YTDHours, p.Hours.HoursThisPeriod,
				p.Hours.HireDate.Format("2006-01-02"), p.Hours.DaysSinceHire,
				p.Vacation.AccruedYTD, p.Vacation.TakenYTD,
				p.Vacation.AccruedThisPeriod, p.Vacation.TakenThisPeriod,
				p.Vacation.Balance,
				p.Sick.BankYTD, p.Sick.TakenYTD, p.Sick.TakenThisPeriod,
				p.Sick.Balance)
		}
	}
	return w.err
}

func writeMachineInvoice(f *excelize.File, inv *invoice.Invoice) error {
	w, err := newSheetWriter(f, sheetMachineInvoice)
	if err != nil {
		return err
	}

	w.writeRow("Pay Period", "Shift", "Gross_Hrs", "Rate", "SARC_Billed_Amt",
		"Ins_Billed_Hrs", "SARC_Billed_Hrs")
	period := inv.Period.Label()
	for _, r := range inv.Rows {
		w.writeRow(period, r.Category, r.GrossHours, money(r.Rate), money(r.Amount),
			r.InsuranceHours, r.SARCHours)
	}
	return w.err
}
