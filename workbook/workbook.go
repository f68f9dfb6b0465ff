/*
Package workbook is the xlsx boundary of the engine: it reads the shift
export and the tracker, and writes every output artifact.

PURPOSE:
  All excelize usage lives here. The rest of the pipeline never sees a
  spreadsheet: ingest gets an Export of raw strings, tracker gets typed
  tables, and the writers get finished payroll/invoice values.

ARTIFACTS WRITTEN (per run, named by pay period):
  PAYROLL OUTPUT - <period>.xlsx            pay stubs, weekly breakdowns,
                                            shift detail
  NEW TRACKER - <period>.xlsx               refreshed tracker snapshot
  INVOICE - <period>.xlsx                   billing invoice + manager costs
  MACHINE_READABLE_OUTPUT - <period>.xlsx   flattened rectangular extract
  OFF CYCLE PAYROLL OUTPUT - <name> - <period>.xlsx

PARSING POLICY:
  Cell values arrive as formatted strings. Dates and times tolerate the
  handful of formats the source workbooks actually use; anything else is a
  ParseError naming the field. Blank numeric cells read as zero where the
  source treats blank as zero (accrual balances), and as missing where
  blank means absent (bonus slots, billing rates).
*/
package workbook

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// header builds a column-name index from a sheet's first row.
func header(rows [][]string) map[string]int {
	idx := make(map[string]int)
	if len(rows) == 0 {
		return idx
	}
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

// cell returns a row's value under a named column, "" when absent.
func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.Trim(s, "$ "), ",", ""))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// floatOrZero reads a numeric cell where blank means zero.
func floatOrZero(s string) float64 {
	f, _ := parseFloat(s)
	return f
}

func parseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.Trim(s, "$ "), ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func moneyOrZero(s string) decimal.Decimal {
	d, _ := parseMoney(s)
	return d
}

// dateLayouts are the date formats the source workbooks actually produce.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"03:04 PM",
}

// parseClock returns the time-of-day as a duration past midnight.
func parseClock(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// row converts values to a SetSheetRow slice.
func row(values ...interface{}) []interface{} { return values }

func money(d decimal.Decimal) float64 { f, _ := d.Float64(); return f }
