package workbook

import (
	"fmt"

	"github.com/nova-hs/payroll-engine/ingest"
	"github.com/nova-hs/payroll-engine/pay"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// SHIFT EXPORT READER
// =============================================================================

const criteriaSheet = "Report Criteria"

// Raw-variant columns beyond the shared set.
var updatedColumns = []string{
	"Updated Check-In Date",
	"Updated Check-In Time",
	"Updated Check-Out Date",
	"Updated Check-Out Time",
}

// ReadShiftExport reads a shift-punch export workbook into the raw Export
// union. The schema variant is detected here, once, by the presence of the
// Updated punch columns; values pass through as strings for ingest to
// clean and parse.
func ReadShiftExport(path string) (ingest.Export, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ingest.Export{}, fmt.Errorf("%w: cannot open shift record %s: %v", pay.ErrFileFormat, path, err)
	}
	defer f.Close()

	export := ingest.Export{Criteria: readCriteria(f)}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ingest.Export{}, fmt.Errorf("%w: shift record has no sheets", pay.ErrFileFormat)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ingest.Export{}, fmt.Errorf("%w: cannot read shift record: %v", pay.ErrFileFormat, err)
	}
	if len(rows) < 1 {
		return ingest.Export{}, fmt.Errorf("%w: shift record is empty", pay.ErrFileFormat)
	}

	idx := header(rows)
	raw := true
	for _, col := range updatedColumns {
		if _, ok := idx[col]; !ok {
			raw = false
			break
		}
	}

	for _, r := range rows[1:] {
		if blankRow(r) {
			continue
		}
		minutes := minutesPtr(cell(r, idx, "Staff Worked Duration (Minutes)"))
		if raw {
			export.Raw = append(export.Raw, ingest.RawRow{
				ServiceCode:         cell(r, idx, "Service 1 Description (Code)"),
				Provider:            cell(r, idx, "Service Provider"),
				CheckInDate:         cell(r, idx, "Check-In Date"),
				CheckInTime:         cell(r, idx, "Check-In Time"),
				CheckOutDate:        cell(r, idx, "Check-Out Date"),
				CheckOutTime:        cell(r, idx, "Check-Out Time"),
				UpdatedCheckInDate:  cell(r, idx, "Updated Check-In Date"),
				UpdatedCheckInTime:  cell(r, idx, "Updated Check-In Time"),
				UpdatedCheckOutDate: cell(r, idx, "Updated Check-Out Date"),
				UpdatedCheckOutTime: cell(r, idx, "Updated Check-Out Time"),
				Minutes:             minutes,
			})
			continue
		}
		export.PreCleaned = append(export.PreCleaned, ingest.PreCleanedRow{
			ServiceCode:  cell(r, idx, "Service 1 Description (Code)"),
			Provider:     cell(r, idx, "Service Provider"),
			CheckInDate:  cell(r, idx, "Check-In Date"),
			CheckInTime:  cell(r, idx, "Check-In Time"),
			CheckOutDate: cell(r, idx, "Check-Out Date"),
			CheckOutTime: cell(r, idx, "Check-Out Time"),
			Minutes:      minutes,
		})
	}
	return export, nil
}

// readCriteria pulls the pay-period bounds from the Report Criteria sheet.
// A missing or malformed sheet returns nil; ingest raises the configuration
// error so the operator message is consistent either way.
func readCriteria(f *excelize.File) *ingest.ReportCriteria {
	rows, err := f.GetRows(criteriaSheet)
	if err != nil || len(rows) < 2 {
		return nil
	}
	idx := header(rows)
	values := make(map[string]string)
	for _, r := range rows[1:] {
		values[cell(r, idx, "Report Criteria")] = cell(r, idx, "Value")
	}
	from, okFrom := values["Slot Start Date From"]
	to, okTo := values["Slot Start Date To"]
	if !okFrom || !okTo {
		return nil
	}
	return &ingest.ReportCriteria{SlotStartFrom: from, SlotStartTo: to}
}

func minutesPtr(s string) *float64 {
	if f, ok := parseFloat(s); ok {
		return &f
	}
	return nil
}

func blankRow(r []string) bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}
