package pay

import (
	"sort"
	"time"
)

// =============================================================================
// PAY PERIOD - Half-open [Start, End) datetime bounds
// =============================================================================

// Period is a pay period. Start is the first payable instant, End the first
// excluded one. The human-readable label uses the inclusive last day, the way
// the export's report criteria states it.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether a check-in time falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Label formats the period as "YYYY-MM-DD - YYYY-MM-DD" (inclusive last day).
func (p Period) Label() string {
	last := p.End.AddDate(0, 0, -1)
	return p.Start.Format("2006-01-02") + " - " + last.Format("2006-01-02")
}

// =============================================================================
// WORK WEEKS - Monday-start buckets keyed by the Monday's date
// =============================================================================

// Week is one Monday-start work week's worth of shifts, bucketed by check-in.
type Week struct {
	Start  time.Time
	Shifts []Shift
}

// Key returns the week's Monday as "YYYY-MM-DD", the label overtime lines and
// breakdown headers carry.
func (w Week) Key() string { return w.Start.Format("2006-01-02") }

// Full reports whether the week runs Monday through Sunday: it holds a shift
// checking in on Monday and one checking in on Sunday. A week failing this
// test at the tail of a period raises the PREPAY flag.
func (w Week) Full() bool {
	if len(w.Shifts) == 0 {
		return false
	}
	first := w.Shifts[0].CheckIn
	last := w.Shifts[0].CheckIn
	for _, s := range w.Shifts[1:] {
		if s.CheckIn.Before(first) {
			first = s.CheckIn
		}
		if s.CheckIn.After(last) {
			last = s.CheckIn
		}
	}
	return mondayIndex(first.Weekday()) == 0 && mondayIndex(last.Weekday()) == 6
}

// WeekStart returns the Monday 00:00 of t's work week.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -mondayIndex(t.Weekday()))
}

// mondayIndex maps time.Weekday (Sunday=0) to a Monday=0 index.
func mondayIndex(d time.Weekday) int { return (int(d) + 6) % 7 }

// SplitByWorkWeek buckets shifts into Monday-start weeks ordered
// chronologically. Assumes midnight-crossing shifts were already split, so no
// shift straddles a week boundary.
func SplitByWorkWeek(shifts []Shift) []Week {
	buckets := make(map[time.Time][]Shift)
	for _, s := range shifts {
		ws := WeekStart(s.CheckIn)
		buckets[ws] = append(buckets[ws], s)
	}
	starts := make([]time.Time, 0, len(buckets))
	for ws := range buckets {
		starts = append(starts, ws)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	weeks := make([]Week, 0, len(starts))
	for _, ws := range starts {
		weeks = append(weeks, Week{Start: ws, Shifts: buckets[ws]})
	}
	return weeks
}

// SortByCheckIn orders shifts chronologically in place.
func SortByCheckIn(shifts []Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		return shifts[i].CheckIn.Before(shifts[j].CheckIn)
	})
}
