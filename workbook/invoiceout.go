package workbook

import (
	"github.com/nova-hs/payroll-engine/invoice"
	"github.com/nova-hs/payroll-engine/payroll"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// INVOICE WORKBOOK
// =============================================================================

const (
	sheetInvoiceForm    = "Invoice to send to GT"
	sheetLeadershipCost = "Nova Leadership Cost Breakdowns"
	sheetInvoiceDetail  = "Shift Breakdowns"

	// vendorSubCode is the agency's vendor sub code on every invoice line.
	vendorSubCode = 320

	// invoiceDataRow is the first hourly billing row of the form; the TOTAL
	// row sits at invoiceTotalRow unless the data runs past it.
	invoiceDataRow  = 12
	invoiceTotalRow = 36
)

// WriteInvoice writes the invoice workbook: the funder-facing form, the
// manager cost breakdown, and the shift detail backing the billed hours.
func WriteInvoice(path string, inv *invoice.Invoice, res *payroll.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeInvoiceForm(f, inv); err != nil {
		return err
	}
	if err := writeLeadershipCosts(f, inv); err != nil {
		return err
	}
	if err := writeShiftBreakdowns(f, sheetInvoiceDetail, res); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	return f.SaveAs(path)
}

func writeInvoiceForm(f *excelize.File, inv *invoice.Invoice) error {
	if _, err := f.NewSheet(sheetInvoiceForm); err != nil {
		return err
	}

	set := func(col, row int, value interface{}) error {
		cellRef, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetInvoiceForm, cellRef, value)
	}

	// Vendor block.
	if err := set(1, 3, "Vendor: Nova Home Support"); err != nil {
		return err
	}
	if err := set(1, 4, "Vendor Sub Code: 320"); err != nil {
		return err
	}
	if err := set(1, 5, "Service Period: "+inv.Period.Label()); err != nil {
		return err
	}

	// Column headers above the billing rows.
	headers := []struct {
		col  int
		text string
	}{
		{2, "Sub Code"},
		{3, "Service Category"},
		{5, "Original Gross Hours"},
		{6, "BST/BCBA Hours Billed to Insurance"},
		{7, "Hours Billed to SARC"},
		{8, "Rate"},
		{9, "Amounts Billed to SARC"},
	}
	for _, h := range headers {
		if err := set(h.col, 10, h.text); err != nil {
			return err
		}
	}

	total := 0.0
	rowNum := invoiceDataRow
	for _, r := range inv.Rows {
		cells := []struct {
			col   int
			value interface{}
		}{
			{2, vendorSubCode},
			{3, r.Category},
			{5, r.GrossHours},
			{6, r.InsuranceHours},
			{7, r.SARCHours},
			{8, money(r.Rate)},
			{9, money(r.Amount)},
		}
		for _, c := range cells {
			if err := set(c.col, rowNum, c.value); err != nil {
				return err
			}
		}
		total += money(r.Amount)
		rowNum++
	}

	// Manager wages and benefits pass through as a single cost line.
	if err := set(3, rowNum, "Nova Leadership Costs"); err != nil {
		return err
	}
	if err := set(9, rowNum, money(inv.GrandTotal)); err != nil {
		return err
	}
	total += money(inv.GrandTotal)
	rowNum++

	totalRow := invoiceTotalRow
	if rowNum+1 > totalRow {
		totalRow = rowNum + 1
	}
	if err := set(3, totalRow, "TOTAL"); err != nil {
		return err
	}
	return set(9, totalRow, total)
}

// =============================================================================
// MANAGER COST BREAKDOWN
// =============================================================================

func writeLeadershipCosts(f *excelize.File, inv *invoice.Invoice) error {
	w, err := newSheetWriter(f, sheetLeadershipCost)
	if err != nil {
		return err
	}

	head := row("")
	for _, name := range inv.Benefits.Managers {
		head = append(head, name)
	}
	w.writeRow(head...)

	for _, r := range inv.Benefits.Rows {
		values := row(r.Name)
		for _, a := range r.Amounts {
			values = append(values, money(a))
		}
		w.writeRow(values...)
	}

	totals := row("Totals")
	for _, t := range inv.Benefits.Totals {
		totals = append(totals, money(t))
	}
	w.writeRow(totals...)

	w.blank(1)
	w.writeRow("MANAGERS' TOTAL WAGES & BENEFITS", money(inv.GrandTotal))
	return w.err
}
