/*
Package holiday computes the agency's paid-holiday calendar and the overlap
of shifts with it.

PURPOSE:
  The agency pays a premium for time worked during approved holidays. The
  approved set per year is: Thanksgiving, Christmas Day, Easter (computed),
  Christmas Eve, and New Year's Eve of the current and the prior year.

THE NEW YEAR'S EVE RULE:
  Every holiday covers the full calendar day [00:00, next 00:00) except
  December 31, whose premium window starts at 15:00. That is the agency's
  rule, not a general one: New Year's Eve premium pay starts at 3pm.

OVERLAP:
  Per-shift overlap minutes are computed by interval intersection against
  each range and summed. Holiday ranges never overlap each other, so no
  double counting can occur.

SEE ALSO:
  - ingest: annotates normalized shifts with overlap minutes
  - payroll: turns overlap minutes into holiday-extra-pay lines
*/
package holiday

import (
	"time"

	"github.com/nova-hs/payroll-engine/pay"
)

// Range is a half-open premium window [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// =============================================================================
// APPROVED HOLIDAY SET
// =============================================================================

// Dates returns the approved holiday dates for one year (midnight-normalized).
// Includes the prior year's New Year's Eve, which can fall inside a pay
// period that starts in late December.
func Dates(year int) []time.Time {
	return []time.Time{
		thanksgiving(year),
		date(year, time.December, 25),
		Easter(year),
		date(year, time.December, 24),
		date(year, time.December, 31),
		date(year-1, time.December, 31),
	}
}

// Ranges returns the premium datetime windows for all given years,
// deduplicated (adjacent years share a New Year's Eve).
func Ranges(years []int) []Range {
	seen := make(map[time.Time]bool)
	var ranges []Range
	for _, y := range years {
		for _, d := range Dates(y) {
			if seen[d] {
				continue
			}
			seen[d] = true
			ranges = append(ranges, rangeFor(d))
		}
	}
	return ranges
}

func rangeFor(d time.Time) Range {
	next := d.AddDate(0, 0, 1)
	if d.Month() == time.December && d.Day() == 31 {
		// Premium pay on New Year's Eve starts at 3pm.
		return Range{Start: d.Add(15 * time.Hour), End: next}
	}
	return Range{Start: d, End: next}
}

// Easter returns Easter Sunday (Gregorian) for the given year, via the
// anonymous Gregorian computus.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}

// thanksgiving returns the fourth Thursday of November.
func thanksgiving(year int) time.Time {
	nov1 := date(year, time.November, 1)
	offset := (int(time.Thursday) - int(nov1.Weekday()) + 7) % 7
	return nov1.AddDate(0, 0, offset+21)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// SHIFT OVERLAP
// =============================================================================

// OverlapMinutes returns the total minutes of [start, end) inside the given
// premium windows: sum over ranges of max(0, min(ends) - max(starts)).
func OverlapMinutes(start, end time.Time, ranges []Range) float64 {
	var total float64
	for _, r := range ranges {
		latestStart := start
		if r.Start.After(latestStart) {
			latestStart = r.Start
		}
		earliestEnd := end
		if r.End.Before(earliestEnd) {
			earliestEnd = r.End
		}
		if overlap := earliestEnd.Sub(latestStart); overlap > 0 {
			total += overlap.Minutes()
		}
	}
	return total
}

// Annotate fills HolidayMinutes on every shift, using windows for the years
// spanned by the data (min check-in year through max check-out year).
func Annotate(shifts []pay.Shift) {
	if len(shifts) == 0 {
		return
	}
	minYear := shifts[0].CheckIn.Year()
	maxYear := shifts[0].CheckOut.Year()
	for _, s := range shifts {
		if y := s.CheckIn.Year(); y < minYear {
			minYear = y
		}
		if y := s.CheckOut.Year(); y > maxYear {
			maxYear = y
		}
	}
	var years []int
	for y := minYear; y <= maxYear; y++ {
		years = append(years, y)
	}
	ranges := Ranges(years)
	for i := range shifts {
		shifts[i].HolidayMinutes = OverlapMinutes(shifts[i].CheckIn, shifts[i].CheckOut, ranges)
	}
}
