package payroll

import (
	"github.com/nova-hs/payroll-engine/pay"
)

// =============================================================================
// CROP - Partition shifts around the pay period and into work weeks
// =============================================================================

// Cropped is the partition of a shift set around one pay period. Every input
// shift lands in exactly one of InPeriod, Deferred, or DroppedLeading;
// Prepaid duplicates the final week when Prepay is set.
type Cropped struct {
	// InPeriod are the shifts this run pays, grouped into Weeks.
	InPeriod []pay.Shift
	Weeks    []pay.Week

	// Deferred shifts punched at or after the period end carry to next cycle.
	Deferred []pay.Shift

	// Prepay marks a partial final week. Prepaid is a copy of that week,
	// carried forward so next cycle can deduct it.
	Prepay  bool
	Prepaid []pay.Shift

	// DroppedLeading holds shifts excluded from this run entirely: anything
	// before the period start, and a leading partial week when the period
	// spans more than one week (its start was paid last cycle).
	DroppedLeading []pay.Shift

	// CarriedPrepaid are LAST cycle's prepaid shifts, folded into the first
	// week's overtime math and deducted from manager pay. Filled by the
	// caller from the tracker; Crop itself never sees them.
	CarriedPrepaid []pay.Shift
}

// Crop partitions shifts around the period. Call after any carried-over
// shifts from the last cycle have been concatenated in, so they land in the
// right bucket like everything else.
func Crop(shifts []pay.Shift, period pay.Period) Cropped {
	var c Cropped

	for _, s := range shifts {
		switch {
		case !s.CheckIn.Before(period.End):
			c.Deferred = append(c.Deferred, s)
		case s.CheckIn.Before(period.Start):
			c.DroppedLeading = append(c.DroppedLeading, s)
		default:
			c.InPeriod = append(c.InPeriod, s)
		}
	}

	c.Weeks = pay.SplitByWorkWeek(c.InPeriod)

	// A leading partial week belongs to the previous cycle, which already
	// paid it in full as a prepaid week. Dropping requires more than one
	// week: a single-week run pays whatever it has.
	if len(c.Weeks) > 1 && !c.Weeks[0].Full() {
		c.DroppedLeading = append(c.DroppedLeading, c.Weeks[0].Shifts...)
		c.Weeks = c.Weeks[1:]
		c.InPeriod = flatten(c.Weeks)
	}

	// A partial final week triggers prepay: the week is paid now and also
	// carried forward for deduction next cycle.
	if n := len(c.Weeks); n > 0 && !c.Weeks[n-1].Full() {
		c.Prepay = true
		c.Prepaid = append([]pay.Shift(nil), c.Weeks[n-1].Shifts...)
	}

	return c
}

func flatten(weeks []pay.Week) []pay.Shift {
	var out []pay.Shift
	for _, w := range weeks {
		out = append(out, w.Shifts...)
	}
	return out
}
