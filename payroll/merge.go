package payroll

import (
	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/tracker"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MERGE - Attach tracker rates to shifts, extract time-off usage
// =============================================================================

// Merge resolves every shift against the tracker: RBT shifts convert to the
// employee's BST level, each shift gains its regular wage, overtime basis,
// and accrual rate, and sick/vacation shifts move out of the payable set
// into per-employee usage totals.
//
// Any unresolvable rate or staff record aborts the run. Payroll has no
// partial success: a check computed from half-joined data is worse than no
// check.
func Merge(shifts []pay.Shift, t *tracker.Tracker) (payable []pay.Shift, timeOff pay.TimeOffByEmployee, detail []pay.Shift, err error) {
	timeOff = make(pay.TimeOffByEmployee)

	for _, s := range shifts {
		if s.Code == pay.CodeRBT {
			level, err := rbtLevel(s.Name, t)
			if err != nil {
				return nil, nil, nil, err
			}
			s.Code = level
		}

		if err := attachRates(&s, t); err != nil {
			return nil, nil, nil, err
		}

		switch s.Code {
		case pay.CodeSick:
			to := timeOff[s.Name]
			to.SickHours += s.Hours()
			timeOff[s.Name] = to
			detail = append(detail, s)
		case pay.CodeVacation:
			to := timeOff[s.Name]
			to.VacationHours += s.Hours()
			timeOff[s.Name] = to
			detail = append(detail, s)
		default:
			payable = append(payable, s)
		}
	}
	return payable, timeOff, detail, nil
}

// rbtLevel maps an RBT punch to the employee's BST certification level. The
// punch system has a single RBT category; the pay rate depends on which BST
// level the employee actually holds.
func rbtLevel(name string, t *tracker.Tracker) (string, error) {
	staff, err := t.StaffByName(name)
	if err != nil {
		return "", err
	}
	if staff.BSTLevel == "" {
		return "", &pay.LookupError{Employee: name, Field: "BST level"}
	}
	return staff.BSTLevel, nil
}

// attachRates fills the shift's wage, overtime basis, and accrual rate.
// Admin shifts are special: they pay the employee's blended wage rather
// than a rate-table entry, and accrue at the standard rate.
func attachRates(s *pay.Shift, t *tracker.Tracker) error {
	if s.Code == pay.CodeAdmin || s.Code == pay.CodeSick || s.Code == pay.CodeVacation {
		wage, err := adminWage(s.Name, t)
		if err != nil {
			return err
		}
		s.RegularWage = wage
		s.BOTWage = wage
		s.AccrualRate = tracker.StandardAccrualRate
		return nil
	}

	rate, ok := t.Rate(s.Code)
	if !ok {
		return &pay.LookupError{Employee: s.Name, Field: "rate for shift type " + s.Code}
	}
	s.RegularWage = rate.RegularWage
	s.BOTWage = rate.BOTWage
	s.AccrualRate = rate.AccrualRate

	// A manager's personal accrual rate overrides the shift type's.
	if m, ok := t.Manager(s.Name); ok {
		s.AccrualRate = m.AccrualRate
	}
	return nil
}

// adminWage resolves the blended admin/sick/vacation wage for managers and
// staff alike.
func adminWage(name string, t *tracker.Tracker) (decimal.Decimal, error) {
	if m, ok := t.Manager(name); ok {
		return m.AdminWage, nil
	}
	staff, err := t.StaffByName(name)
	if err != nil {
		return decimal.Zero, err
	}
	return staff.AdminWage, nil
}
