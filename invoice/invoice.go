/*
Package invoice builds the billing invoice from a finished payroll run.

PURPOSE:
  The agency bills two funders for the same worked hours:
    - SARC, the regional center, billed per service category at the rates in
      the tracker's rate table
    - private insurance, billed for behavior-treatment hours delivered by
      RBT-certified staff and BCBAs

  The split is the heart of this package: for categories with RBT-origin
  hours, insurance takes the RBT portion and SARC the remainder, and the
  billed amount covers only the SARC portion.

KEY CONCEPTS:
  Category: the invoice-facing name of a service, the rate-table code with
  its "-Worked"/"-Not-Worked" suffix stripped.
  Manager benefits: the invoice also passes through manager wages and
  benefit costs, summed into a grand total alongside the hourly billing.

SEE ALSO:
  - payroll: supplies the pay lines the hour totals come from
  - workbook: renders the invoice sheet
*/
package invoice

import (
	"sort"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/payroll"
	"github.com/nova-hs/payroll-engine/tracker"
	"github.com/shopspring/decimal"
)

// blueShieldCodes are the treatment categories whose hours count as BCBA
// work billed to insurance rather than SARC.
var blueShieldCodes = map[string]bool{
	"Adaptive-Behavior-Treatment":        true,
	"Family-Adaptive-Behavior-Treatment": true,
	"Report-Writing":                     true,
}

const categoryBCBA = "BCBA"

// Row is one invoice line: the hours delivered in a category and how they
// split between funders.
type Row struct {
	Category string

	// GrossHours = InsuranceHours + SARCHours.
	GrossHours     float64
	InsuranceHours float64
	SARCHours      float64

	Rate decimal.Decimal

	// Amount is the SARC-billed total: SARCHours x Rate.
	Amount decimal.Decimal
}

// BenefitsRow is one row of the manager pass-through table: a benefit name
// (or "Wages") and the amount per manager, in Managers order.
type BenefitsRow struct {
	Name    string
	Amounts []decimal.Decimal
}

// BenefitsTable is the manager cost pass-through: benefits and gross wages
// per manager, with per-manager totals.
type BenefitsTable struct {
	Managers []string
	Rows     []BenefitsRow
	Totals   []decimal.Decimal
}

// Invoice is the complete billing document for one pay period.
type Invoice struct {
	Period pay.Period

	Rows     []Row
	Benefits BenefitsTable

	// GrandTotal is the sum of the per-manager totals; the hourly rows'
	// amounts bill separately per category.
	GrandTotal decimal.Decimal
}

// =============================================================================
// BUILD
// =============================================================================

// Build derives the invoice from a payroll result and the tracker's rate
// and staff tables.
func Build(res *payroll.Result, t *tracker.Tracker) (*Invoice, error) {
	inv := &Invoice{Period: res.Period}

	rows, err := hourlyRows(res, t)
	if err != nil {
		return nil, err
	}
	inv.Rows = rows

	inv.Benefits = benefitsTable(res, t)
	for _, total := range inv.Benefits.Totals {
		inv.GrandTotal = inv.GrandTotal.Add(total)
	}
	return inv, nil
}

func hourlyRows(res *payroll.Result, t *tracker.Tracker) ([]Row, error) {
	billRates := make(map[string]decimal.Decimal)
	for _, r := range t.ShiftRates {
		if r.BillingRate != nil {
			billRates[r.Code] = *r.BillingRate
		}
	}

	byCategory := make(map[string]*Row)
	add := func(category string, rateCode string, hours float64) error {
		row, ok := byCategory[category]
		if !ok {
			rate, found := billRates[rateCode]
			if !found {
				return &pay.LookupError{Employee: category, Field: "billing rate"}
			}
			row = &Row{Category: category, Rate: rate}
			byCategory[category] = row
		}
		row.GrossHours += hours
		return nil
	}

	// Hours come from the pay lines, so the invoice bills exactly what
	// payroll paid: aggregated, midnight-split, overtime excluded.
	for _, p := range res.Packages {
		for _, l := range p.Lines {
			code := l.Label
			if code == pay.CodeCCRWorked {
				// Worked CCR time bills at the employee's own HSS level.
				level := hssLevel(p.Name, t)
				if err := add(level, level, l.Hours); err != nil {
					return nil, err
				}
				continue
			}
			if _, billable := billRates[code]; !billable {
				continue
			}
			if err := add(pay.DisplayCategory(code), code, l.Hours); err != nil {
				return nil, err
			}
		}
	}

	// BCBA hours are invisible to the rate join (BCBAs are salaried), so
	// they come straight from the shift detail.
	var bcbaHrs, blueShieldHrs float64
	for _, s := range res.InPeriod {
		switch {
		case s.OriginalCode == categoryBCBA:
			bcbaHrs += s.Hours()
		case blueShieldCodes[s.OriginalCode]:
			bcbaHrs += s.Hours()
			blueShieldHrs += s.Hours()
		}
	}
	bcbaRate, ok := billRates[categoryBCBA]
	if !ok {
		return nil, &pay.LookupError{Employee: categoryBCBA, Field: "billing rate"}
	}
	byCategory[categoryBCBA] = &Row{Category: categoryBCBA, GrossHours: bcbaHrs, Rate: bcbaRate}

	// RBT-origin hours per converted BST level, for the insurance split.
	rbtHours := make(map[string]float64)
	for _, s := range res.InPeriod {
		if s.OriginalCode == pay.CodeRBT {
			rbtHours[s.Code] += s.Hours()
		}
	}

	for _, row := range byCategory {
		row.GrossHours = pay.Round2(row.GrossHours)
		switch {
		case rbtHours[row.Category] > 0:
			splitFunders(row, pay.Round2(rbtHours[row.Category]))
		case row.Category == categoryBCBA:
			splitFunders(row, pay.Round2(blueShieldHrs))
		default:
			row.SARCHours = row.GrossHours
			row.Amount = pay.MulHours(row.Rate, row.SARCHours)
		}
	}

	return orderRows(byCategory, t), nil
}

// splitFunders assigns insurance its hours and bills SARC the remainder.
// A remainder within a cent-rounding hair of zero collapses: everything
// goes to insurance and SARC is billed nothing.
func splitFunders(row *Row, insuranceHrs float64) {
	row.InsuranceHours = insuranceHrs
	sarc := pay.Round2(row.GrossHours - insuranceHrs)
	if sarc >= -0.01 && sarc <= 0.01 {
		sarc = 0
		row.InsuranceHours = row.GrossHours
	}
	row.SARCHours = sarc
	row.Amount = pay.MulHours(row.Rate, row.SARCHours)
}

// orderRows sorts invoice rows by the rate table's category order, BCBA and
// anything unlisted at the end.
func orderRows(byCategory map[string]*Row, t *tracker.Tracker) []Row {
	rank := make(map[string]int)
	for i, r := range t.ShiftRates {
		cat := pay.DisplayCategory(r.Code)
		if _, ok := rank[cat]; !ok {
			rank[cat] = i
		}
	}
	rows := make([]Row, 0, len(byCategory))
	for _, row := range byCategory {
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ri, iOK := rank[rows[i].Category]
		rj, jOK := rank[rows[j].Category]
		if iOK != jOK {
			return iOK
		}
		if ri != rj {
			return ri < rj
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// =============================================================================
// MANAGER BENEFITS PASS-THROUGH
// =============================================================================

func benefitsTable(res *payroll.Result, t *tracker.Tracker) BenefitsTable {
	table := BenefitsTable{}
	if len(t.ManagerRates) == 0 {
		return table
	}

	for _, m := range t.ManagerRates {
		table.Managers = append(table.Managers, m.Name)
	}

	// Benefit names follow the first manager's column order; every manager
	// shares the same benefit columns in the tracker.
	for _, b := range t.ManagerRates[0].Benefits {
		row := BenefitsRow{Name: b.Name}
		for _, m := range t.ManagerRates {
			row.Amounts = append(row.Amounts, benefitAmount(m, b.Name))
		}
		table.Rows = append(table.Rows, row)
	}

	gross := make(map[string]decimal.Decimal)
	for _, p := range res.Packages {
		if p.Manager {
			gross[p.Name] = p.TotalGross
		}
	}
	wages := BenefitsRow{Name: "Wages"}
	for _, name := range table.Managers {
		wages.Amounts = append(wages.Amounts, gross[name])
	}
	table.Rows = append(table.Rows, wages)

	for i := range table.Managers {
		total := decimal.Zero
		for _, row := range table.Rows {
			total = total.Add(row.Amounts[i])
		}
		table.Totals = append(table.Totals, total)
	}
	return table
}

func benefitAmount(m tracker.ManagerRate, name string) decimal.Decimal {
	for _, b := range m.Benefits {
		if b.Name == name {
			return b.Amount
		}
	}
	return decimal.Zero
}

func hssLevel(name string, t *tracker.Tracker) string {
	if staff, err := t.StaffByName(name); err == nil && staff.HSSLevel != "" {
		return staff.HSSLevel
	}
	return "HSS1"
}
