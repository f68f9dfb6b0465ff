/*
Package ingest parses and validates raw shift-punch exports.

PURPOSE:
  Turns the scheduling system's export rows into the canonical shift set the
  rest of the pipeline computes on. This is the noisy boundary: two export
  schema variants, "Last, First /site" provider strings, decorated service
  codes, corrected punch times, and shifts that cross midnight.

PIPELINE (Normalize):
  1. Read the pay period from the export's report criteria
  2. Resolve the schema variant (raw vs. pre-cleaned), preferring corrected
     check-in/out fields where the raw variant carries them
  3. Reject rows with missing required fields (one error naming the column)
  4. Clean service codes and provider names
  5. Parse check-in/out datetimes with the export's fixed format
  6. Validate: overlapping shifts, then unusual overnight timing - each
     check collects every violation in the dataset and fails once
  7. Split midnight-crossing shifts at the day boundary, recompute minutes
  8. Remap training codes to their effective levels
  9. Annotate holiday-overlap minutes

  Ingestion never proceeds partially: any failure aborts before output.

SCHEMA VARIANTS:
  The export arrives either "raw" (with Updated Check-In/Out columns) or
  "pre-cleaned" (corrections already folded in). The variant is resolved
  once at the boundary into the tagged Export union, never re-detected.

SEE ALSO:
  - workbook: reads xlsx bytes into an Export
  - pay/errors.go: the error taxonomy raised here
*/
package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nova-hs/payroll-engine/holiday"
	"github.com/nova-hs/payroll-engine/pay"
)

// =============================================================================
// EXPORT SCHEMA - Two variants, resolved once
// =============================================================================

// RawRow is one row of the uncorrected export variant. Updated* fields are
// empty when no correction was recorded.
type RawRow struct {
	ServiceCode string
	Provider    string

	CheckInDate  string
	CheckInTime  string
	CheckOutDate string
	CheckOutTime string

	UpdatedCheckInDate  string
	UpdatedCheckInTime  string
	UpdatedCheckOutDate string
	UpdatedCheckOutTime string

	Minutes *float64
}

// PreCleanedRow is one row of the pre-cleaned variant (corrections folded in).
type PreCleanedRow struct {
	ServiceCode string
	Provider    string

	CheckInDate  string
	CheckInTime  string
	CheckOutDate string
	CheckOutTime string

	Minutes *float64
}

// Export is the tagged union of the two schema variants plus the embedded
// report criteria. Exactly one of Raw and PreCleaned is populated.
type Export struct {
	Raw        []RawRow
	PreCleaned []PreCleanedRow
	Criteria   *ReportCriteria
}

// ReportCriteria is the export's embedded pay-period metadata.
type ReportCriteria struct {
	SlotStartFrom string // "MM/DD/YYYY"
	SlotStartTo   string // "MM/DD/YYYY", inclusive
}

const (
	dateTimeFormat = "01/02/2006 03:04 PM"
	criteriaFormat = "01/02/2006"

	// codePrefix decorates service codes in some exports and carries no
	// payroll meaning.
	codePrefix = "RC-SDP-CLS-320 "
)

var parenthetical = regexp.MustCompile(`\(.*\)`)

// trainingRemap converts training shift codes to the codes they are paid as.
var trainingRemap = map[string]string{
	"Training-HSS": "HSS1",
	"Training-RBT": "BST1",
}

// =============================================================================
// NORMALIZE - Whole-export entry point
// =============================================================================

// Normalize runs the full ingestion pipeline and returns the chronologically
// sorted shift set plus the pay period from the report criteria.
func Normalize(export Export) ([]pay.Shift, pay.Period, error) {
	period, err := export.period()
	if err != nil {
		return nil, pay.Period{}, err
	}
	shifts, err := normalizeRows(export, "")
	if err != nil {
		return nil, pay.Period{}, err
	}
	return shifts, period, nil
}

// NormalizeForEmployee filters the export to a single named employee before
// the same pipeline, deriving the pay period from that employee's own shift
// span. Used for off-cycle, single-person reprocessing.
func NormalizeForEmployee(export Export, name string) ([]pay.Shift, pay.Period, error) {
	if _, err := export.period(); err != nil {
		// The criteria must still be readable even though the period is
		// derived from the data for a single-person run.
		return nil, pay.Period{}, err
	}
	shifts, err := normalizeRows(export, name)
	if err != nil {
		return nil, pay.Period{}, err
	}
	if len(shifts) == 0 {
		return nil, pay.Period{}, &pay.LookupError{Employee: name, Field: "shifts in export"}
	}
	first := shifts[0].CheckIn
	last := shifts[0].CheckIn
	for _, s := range shifts {
		if s.CheckIn.Before(first) {
			first = s.CheckIn
		}
		if s.CheckIn.After(last) {
			last = s.CheckIn
		}
	}
	period := pay.Period{
		Start: midnight(first),
		End:   midnight(last).AddDate(0, 0, 1),
	}
	return shifts, period, nil
}

func (e Export) period() (pay.Period, error) {
	if e.Criteria == nil {
		return pay.Period{}, fmt.Errorf("%w: report criteria sheet not found", pay.ErrConfiguration)
	}
	from, err := time.Parse(criteriaFormat, e.Criteria.SlotStartFrom)
	if err != nil {
		return pay.Period{}, fmt.Errorf("%w: bad Slot Start Date From %q", pay.ErrConfiguration, e.Criteria.SlotStartFrom)
	}
	to, err := time.Parse(criteriaFormat, e.Criteria.SlotStartTo)
	if err != nil {
		return pay.Period{}, fmt.Errorf("%w: bad Slot Start Date To %q", pay.ErrConfiguration, e.Criteria.SlotStartTo)
	}
	return pay.Period{Start: from, End: to.AddDate(0, 0, 1)}, nil
}

// =============================================================================
// ROW RESOLUTION
// =============================================================================

// resolvedRow is a schema-variant-independent row with corrections applied.
type resolvedRow struct {
	ServiceCode  string
	Provider     string
	CheckInDate  string
	CheckInTime  string
	CheckOutDate string
	CheckOutTime string
	Minutes      *float64
}

func (e Export) resolve() []resolvedRow {
	if e.Raw != nil {
		rows := make([]resolvedRow, len(e.Raw))
		for i, r := range e.Raw {
			rows[i] = resolvedRow{
				ServiceCode:  r.ServiceCode,
				Provider:     r.Provider,
				CheckInDate:  prefer(r.UpdatedCheckInDate, r.CheckInDate),
				CheckInTime:  prefer(r.UpdatedCheckInTime, r.CheckInTime),
				CheckOutDate: prefer(r.UpdatedCheckOutDate, r.CheckOutDate),
				CheckOutTime: prefer(r.UpdatedCheckOutTime, r.CheckOutTime),
				Minutes:      r.Minutes,
			}
		}
		return rows
	}
	rows := make([]resolvedRow, len(e.PreCleaned))
	for i, r := range e.PreCleaned {
		rows[i] = resolvedRow{
			ServiceCode:  r.ServiceCode,
			Provider:     r.Provider,
			CheckInDate:  r.CheckInDate,
			CheckInTime:  r.CheckInTime,
			CheckOutDate: r.CheckOutDate,
			CheckOutTime: r.CheckOutTime,
			Minutes:      r.Minutes,
		}
	}
	return rows
}

func prefer(updated, original string) string {
	if strings.TrimSpace(updated) != "" {
		return updated
	}
	return original
}

func normalizeRows(export Export, onlyEmployee string) ([]pay.Shift, error) {
	rows := export.resolve()

	if onlyEmployee != "" {
		var filtered []resolvedRow
		for _, r := range rows {
			first, last := splitProvider(r.Provider)
			if first+" "+last == onlyEmployee {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if err := checkMissing(rows); err != nil {
		return nil, err
	}

	shifts := make([]pay.Shift, 0, len(rows))
	for _, r := range rows {
		first, last := splitProvider(r.Provider)
		code := cleanCode(r.ServiceCode)

		checkIn, err := parsePunch("check-in", r.CheckInDate, r.CheckInTime)
		if err != nil {
			return nil, err
		}
		checkOut, err := parsePunch("check-out", r.CheckOutDate, r.CheckOutTime)
		if err != nil {
			return nil, err
		}

		shifts = append(shifts, pay.Shift{
			Name:      first + " " + last,
			FirstName: first,
			LastName:  last,
			Code:      code,
			CheckIn:   checkIn,
			CheckOut:  checkOut,
			Minutes:   *r.Minutes,
		})
	}

	if err := checkOverlaps(shifts); err != nil {
		return nil, err
	}
	if err := checkOvernightTiming(shifts); err != nil {
		return nil, err
	}

	shifts = splitAtMidnight(shifts)
	pay.SortByCheckIn(shifts)

	for i := range shifts {
		shifts[i].OriginalCode = shifts[i].Code
		if target, ok := trainingRemap[shifts[i].Code]; ok {
			shifts[i].Code = target
		}
	}

	holiday.Annotate(shifts)
	return shifts, nil
}

func checkMissing(rows []resolvedRow) error {
	columns := []struct {
		name  string
		blank func(resolvedRow) bool
	}{
		{"Service 1 Description (Code)", func(r resolvedRow) bool { return strings.TrimSpace(r.ServiceCode) == "" }},
		{"Service Provider", func(r resolvedRow) bool { return strings.TrimSpace(r.Provider) == "" }},
		{"Check-In Date", func(r resolvedRow) bool { return strings.TrimSpace(r.CheckInDate) == "" }},
		{"Check-In Time", func(r resolvedRow) bool { return strings.TrimSpace(r.CheckInTime) == "" }},
		{"Check-Out Date", func(r resolvedRow) bool { return strings.TrimSpace(r.CheckOutDate) == "" }},
		{"Check-Out Time", func(r resolvedRow) bool { return strings.TrimSpace(r.CheckOutTime) == "" }},
		{"Staff Worked Duration (Minutes)", func(r resolvedRow) bool { return r.Minutes == nil }},
	}
	for _, col := range columns {
		for _, r := range rows {
			if col.blank(r) {
				return &pay.MissingColumnError{Column: col.name}
			}
		}
	}
	return nil
}

// cleanCode strips parenthetical suffixes and the billing prefix from a
// service code.
func cleanCode(code string) string {
	code = parenthetical.ReplaceAllString(code, "")
	code = strings.TrimPrefix(code, codePrefix)
	return strings.TrimRight(code, " ")
}

// splitProvider converts "Last, First /site" into (first, last).
func splitProvider(provider string) (first, last string) {
	name := provider
	if i := strings.Index(name, " /"); i >= 0 {
		name = name[:i]
	}
	parts := strings.SplitN(name, ", ", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(name), ""
	}
	return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
}

func parsePunch(field, date, clock string) (time.Time, error) {
	combined := date + " " + clock
	t, err := time.Parse(dateTimeFormat, combined)
	if err != nil {
		return time.Time{}, &pay.ParseError{Field: field, Value: combined, Format: dateTimeFormat}
	}
	return t, nil
}

// =============================================================================
// MIDNIGHT SPLIT
// =============================================================================

// splitAtMidnight replaces every shift whose check-in and check-out fall on
// different calendar days with per-day rows clipped at midnight, and
// recomputes minutes for every row. A shift ending exactly at midnight yields
// a zero-minute row for the following day, matching the export convention.
func splitAtMidnight(shifts []pay.Shift) []pay.Shift {
	out := make([]pay.Shift, 0, len(shifts))
	for _, s := range shifts {
		for !s.SameDay() {
			boundary := midnight(s.CheckIn).AddDate(0, 0, 1)
			head := s
			head.CheckOut = boundary
			head.Minutes = pay.Round2(boundary.Sub(head.CheckIn).Minutes())
			out = append(out, head)
			s.CheckIn = boundary
		}
		s.Minutes = pay.Round2(s.CheckOut.Sub(s.CheckIn).Minutes())
		out = append(out, s)
	}
	return out
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
