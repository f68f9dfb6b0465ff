package tracker

import (
	"strings"
	"time"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PREPARATION - Derived fields computed once per run
// =============================================================================

// Prepare fills every derived field: days since hire for staff and managers,
// and the blended admin wage for each non-manager. Call once after loading,
// before any lookup.
func (t *Tracker) Prepare(periodStart time.Time) error {
	for i := range t.ManagerRates {
		t.ManagerRates[i].DaysSinceHire = daysSinceHire(t.ManagerRates[i].HireDate, periodStart)
	}
	for i := range t.Staff {
		t.Staff[i].DaysSinceHire = daysSinceHire(t.Staff[i].HireDate, periodStart)
		wage, err := t.blendedAdminWage(&t.Staff[i])
		if err != nil {
			return err
		}
		t.Staff[i].AdminWage = wage
	}
	return nil
}

// daysSinceHire never goes negative: staff hired mid-period count as day zero.
func daysSinceHire(hire, periodStart time.Time) int {
	if hire.IsZero() || !hire.Before(periodStart) {
		return 0
	}
	return int(periodStart.Sub(hire).Hours() / 24)
}

// blendedAdminWage is the hours-weighted average of the overtime-basis wages
// across the employee's level allocations. Admin, sick, and vacation hours
// are paid at this rate because they are not tied to any one shift type.
//
// An employee with no allocation at all defaults to one HSS hour, and a blank
// HSS level reads as HSS1, so every staff row yields a usable rate.
func (t *Tracker) blendedAdminWage(s *StaffInfo) (decimal.Decimal, error) {
	type alloc struct {
		level string
		hours float64
	}
	allocs := []alloc{
		{s.BSTLevel, s.BSTHours},
		{s.OALevel, s.OAHours},
		{s.HSSLevel, s.HSSHours},
	}
	if s.BSTHours == 0 && s.OAHours == 0 && s.HSSHours == 0 {
		level := s.HSSLevel
		if level == "" {
			level = "HSS1"
		}
		allocs = []alloc{{level, 1}}
	}

	sum := decimal.Zero
	var total float64
	for _, a := range allocs {
		if a.hours == 0 {
			continue
		}
		rate, ok := t.overtimeBasis(a.level)
		if !ok {
			return decimal.Zero, &pay.LookupError{Employee: s.Name, Field: "rate for level " + a.level}
		}
		sum = sum.Add(rate.Mul(decimal.NewFromFloat(a.hours)))
		total += a.hours
	}
	return sum.Div(decimal.NewFromFloat(total)), nil
}

// overtimeBasis resolves a certification level to its overtime-basis wage.
// The rate table keys shift types as "<level>-Worked"; not-worked variants
// carry no wage and are skipped.
func (t *Tracker) overtimeBasis(level string) (decimal.Decimal, bool) {
	for _, r := range t.ShiftRates {
		if strings.HasSuffix(r.Code, "-Not-Worked") {
			continue
		}
		if strings.TrimSuffix(r.Code, "-Worked") == level || r.Code == level {
			return r.BOTWage, true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Rate returns the rate-table row for a shift code.
func (t *Tracker) Rate(code string) (ShiftRate, bool) {
	for _, r := range t.ShiftRates {
		if r.Code == code {
			return r, true
		}
	}
	return ShiftRate{}, false
}

// Manager returns the manager-rate row for a name, if the employee is a
// salaried manager.
func (t *Tracker) Manager(name string) (ManagerRate, bool) {
	for _, m := range t.ManagerRates {
		if m.Name == name {
			return m, true
		}
	}
	return ManagerRate{}, false
}

// StaffByName resolves a name to exactly one staff row. Zero or multiple
// matches abort the run: payroll cannot guess which person worked a shift.
func (t *Tracker) StaffByName(name string) (StaffInfo, error) {
	var found []StaffInfo
	for _, s := range t.Staff {
		if s.Name == name {
			found = append(found, s)
		}
	}
	if len(found) != 1 {
		return StaffInfo{}, &pay.StaffMatchError{Name: name, Matches: len(found)}
	}
	return found[0], nil
}

// AccrualFor returns the accrual balance row for an employee, if present.
func (t *Tracker) AccrualFor(name string) (AccrualBalance, bool) {
	for _, a := range t.Accruals {
		if a.Staff == name {
			return a, true
		}
	}
	return AccrualBalance{}, false
}

// =============================================================================
// BONUS AND PREMIUM DERIVATIONS - Wide rows to flat records
// =============================================================================

// Bonuses flattens the fixed-slot bonus table into one record per entry.
func (t *Tracker) Bonuses() []BonusRecord {
	var out []BonusRecord
	for _, row := range t.BonusRows {
		for _, slot := range row.Bonuses {
			if slot == nil {
				continue
			}
			out = append(out, BonusRecord{Name: row.FullName, Date: slot.Date, Amount: slot.Amount})
		}
	}
	return out
}

// PremiumHours sums the recorded premium-pay intervals for one employee.
// Empty slots contribute nothing.
func (t *Tracker) PremiumHours(name string) float64 {
	var total float64
	for _, row := range t.BonusRows {
		if row.FullName != name {
			continue
		}
		for _, slot := range row.Premium {
			if slot == nil {
				continue
			}
			total += slot.CheckOut.Sub(slot.CheckIn).Hours()
		}
	}
	return total
}
