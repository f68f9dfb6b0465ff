package ingest

import (
	"fmt"
	"sort"

	"github.com/nova-hs/payroll-engine/pay"
)

// =============================================================================
// VALIDATION CHECKS
// =============================================================================
// Each check scans the whole dataset, collects every violation into a
// ValidationResult, and fails once. Operators fix the spreadsheet in one
// pass instead of resubmitting per row.

// overlapTolerance: consecutive shifts may disagree by up to a minute before
// they count as overlapping (punch clocks round).
const overlapToleranceSeconds = 60.0

// overnightCodes are overnight-only shift categories. Their check-in is
// expected outside daytime hours; a daytime start almost always means a
// mispunched code.
var overnightCodes = map[string]bool{
	"OA1":         true,
	"OA2":         true,
	"IHSS-Asleep": true,
	"OPA":         true,
}

// checkOverlaps flags, per employee, consecutive shifts whose previous
// check-out runs past the next check-in beyond the tolerance.
func checkOverlaps(shifts []pay.Shift) error {
	byName := make(map[string][]pay.Shift)
	var order []string
	for _, s := range shifts {
		if _, ok := byName[s.Name]; !ok {
			order = append(order, s.Name)
		}
		byName[s.Name] = append(byName[s.Name], s)
	}
	sort.Strings(order)

	var result pay.ValidationResult
	for _, name := range order {
		own := byName[name]
		sort.SliceStable(own, func(i, j int) bool { return own[i].CheckIn.Before(own[j].CheckIn) })
		for i := 0; i+1 < len(own); i++ {
			overrun := own[i].CheckOut.Sub(own[i+1].CheckIn).Seconds()
			if overrun > overlapToleranceSeconds {
				result.Add(pay.Violation{
					Check:    pay.CheckOverlap,
					Employee: name,
					Date:     own[i+1].CheckIn,
					Detail:   fmt.Sprintf("shift %s overlaps %s", own[i].Code, own[i+1].Code),
				})
			}
		}
	}
	return result.Err()
}

// checkOvernightTiming flags overnight-category shifts that check in during
// daytime hours, strictly inside (07:15, 22:45).
func checkOvernightTiming(shifts []pay.Shift) error {
	var result pay.ValidationResult
	for _, s := range shifts {
		if !overnightCodes[s.Code] {
			continue
		}
		mins := s.CheckIn.Hour()*60 + s.CheckIn.Minute()
		if mins > 7*60+15 && mins < 22*60+45 {
			result.Add(pay.Violation{
				Check:    pay.CheckOvernight,
				Employee: s.Name,
				Date:     s.CheckIn,
				Detail:   fmt.Sprintf("shift %s starts at %s", s.Code, s.CheckIn.Format("03:04 PM")),
			})
		}
	}
	return result.Err()
}
