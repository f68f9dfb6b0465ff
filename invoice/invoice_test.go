package invoice_test

import (
	"testing"

	"github.com/nova-hs/payroll-engine/invoice"
	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/payroll"
	"github.com/nova-hs/payroll-engine/tracker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func bp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// billingTracker carries the rate-table order the invoice sorts by. The
// asleep category has no billing rate: it is paid but never billed.
func billingTracker() *tracker.Tracker {
	return &tracker.Tracker{
		ShiftRates: []tracker.ShiftRate{
			{Code: "HSS1", BillingRate: bp(35)},
			{Code: "HSS2", BillingRate: bp(38)},
			{Code: "BST1", BillingRate: bp(40)},
			{Code: "IHSS-Asleep-Worked"},
			{Code: "BCBA", BillingRate: bp(90)},
		},
		Staff: []tracker.StaffInfo{{Name: "Alice Smith", HSSLevel: "HSS2"}},
	}
}

func line(label string, hours float64) payroll.Line {
	return payroll.Line{Name: "Alice Smith", Label: label, Hours: hours}
}

func resultWith(lines ...payroll.Line) *payroll.Result {
	return &payroll.Result{
		Packages: []payroll.EmployeePackage{{Name: "Alice Smith", Lines: lines}},
	}
}

func rowFor(t *testing.T, inv *invoice.Invoice, category string) invoice.Row {
	t.Helper()
	for _, r := range inv.Rows {
		if r.Category == category {
			return r
		}
	}
	t.Fatalf("no invoice row for %s", category)
	return invoice.Row{}
}

// =============================================================================
// HOURLY ROWS
// =============================================================================

func TestBuild_BillsPayLinesInRateTableOrder(t *testing.T) {
	// GIVEN: Pay lines for two billable categories plus non-billable lines
	// WHEN: Building the invoice
	// THEN: One row per category in rate-table order, all hours billed to
	// SARC; extra-pay and bonus lines never bill

	res := resultWith(
		line("BST1", 10),
		line("HSS1", 8),
		line("OT Extra Pay (2025-06-02)", 5),
		line("Bonus", 1),
	)

	inv, err := invoice.Build(res, billingTracker())
	require.NoError(t, err)

	require.Len(t, inv.Rows, 3)
	assert.Equal(t, "HSS1", inv.Rows[0].Category)
	assert.Equal(t, "BST1", inv.Rows[1].Category)
	assert.Equal(t, "BCBA", inv.Rows[2].Category, "BCBA row always present")

	hss := inv.Rows[0]
	assert.Equal(t, 8.0, hss.GrossHours)
	assert.Equal(t, 8.0, hss.SARCHours)
	assert.Equal(t, 0.0, hss.InsuranceHours)
	assert.True(t, hss.Amount.Equal(decimal.NewFromInt(280)), "got %s", hss.Amount)

	bst := inv.Rows[1]
	assert.True(t, bst.Amount.Equal(decimal.NewFromInt(400)), "got %s", bst.Amount)
}

func TestBuild_UnbilledCategorySkipped(t *testing.T) {
	// Paid asleep time has no billing rate and produces no row.
	res := resultWith(line("IHSS-Asleep-Worked", 9))

	inv, err := invoice.Build(res, billingTracker())
	require.NoError(t, err)
	require.Len(t, inv.Rows, 1)
	assert.Equal(t, "BCBA", inv.Rows[0].Category)
}

func TestBuild_RBTOriginHoursSplitToInsurance(t *testing.T) {
	// GIVEN: 10 BST1 hours, 4 of which came in as RBT punches
	// WHEN: Building the invoice
	// THEN: Insurance takes the RBT portion, SARC is billed the remainder

	res := resultWith(line("BST1", 10))
	res.InPeriod = []pay.Shift{
		{Name: "Alice Smith", Code: "BST1", OriginalCode: "RBT", Minutes: 240},
	}

	inv, err := invoice.Build(res, billingTracker())
	require.NoError(t, err)

	row := rowFor(t, inv, "BST1")
	assert.Equal(t, 10.0, row.GrossHours)
	assert.Equal(t, 4.0, row.InsuranceHours)
	assert.Equal(t, 6.0, row.SARCHours)
	assert.True(t, row.Amount.Equal(decimal.NewFromInt(240)), "got %s", row.Amount)
}

func TestBuild_SplitCollapsesWithinACent(t *testing.T) {
	// A SARC remainder of a rounding hair collapses to zero: everything
	// bills to insurance and SARC owes nothing.

	res := resultWith(line("BST1", 4.01))
	res.InPeriod = []pay.Shift{
		{Name: "Alice Smith", Code: "BST1", OriginalCode: "RBT", Minutes: 240},
	}

	inv, err := invoice.Build(res, billingTracker())
	require.NoError(t, err)

	row := rowFor(t, inv, "BST1")
	assert.Equal(t, 4.01, row.InsuranceHours)
	assert.Equal(t, 0.0, row.SARCHours)
	assert.True(t, row.Amount.IsZero())
}

func TestBuild_CCRWorkedBillsAtEmployeeHSSLevel(t *testing.T) {
	// Worked CCR time bills at the employee's own HSS level; an unknown
	// employee falls back to HSS1.

	res := resultWith(line(pay.CodeCCRWorked, 5))
	res.Packages = append(res.Packages, payroll.EmployeePackage{
		Name:  "Zed Unknown",
		Lines: []payroll.Line{{Name: "Zed Unknown", Label: pay.CodeCCRWorked, Hours: 3}},
	})

	inv, err := invoice.Build(res, billingTracker())
	require.NoError(t, err)

	hss2 := rowFor(t, inv, "HSS2")
	assert.Equal(t, 5.0, hss2.GrossHours)
	assert.True(t, hss2.Amount.Equal(decimal.NewFromInt(190)), "5h at the HSS2 rate, got %s", hss2.Amount)

	hss1 := rowFor(t, inv, "HSS1")
	assert.Equal(t, 3.0, hss1.GrossHours)
}

func TestBuild_BCBAHoursFromShiftDetail(t *testing.T) {
	// GIVEN: Salaried BCBA punches plus blue-shield treatment punches
	// WHEN: Building the invoice
	// THEN: The BCBA row totals both; only the treatment hours shift to
	// insurance

	res := resultWith()
	res.InPeriod = []pay.Shift{
		{Name: "Mara Boss", Code: "BCBA", OriginalCode: "BCBA", Minutes: 360},
		{Name: "Mara Boss", Code: "Report-Writing", OriginalCode: "Report-Writing", Minutes: 120},
	}

	inv, err := invoice.Build(res, billingTracker())
	require.NoError(t, err)

	row := rowFor(t, inv, "BCBA")
	assert.Equal(t, 8.0, row.GrossHours)
	assert.Equal(t, 2.0, row.InsuranceHours)
	assert.Equal(t, 6.0, row.SARCHours)
	assert.True(t, row.Amount.Equal(decimal.NewFromInt(540)), "got %s", row.Amount)
}

func TestBuild_MissingBCBARateFails(t *testing.T) {
	tr := billingTracker()
	tr.ShiftRates = tr.ShiftRates[:4] // drop the BCBA row

	_, err := invoice.Build(resultWith(), tr)
	require.Error(t, err)
	assert.ErrorIs(t, err, pay.ErrDataIntegrity)
}

// =============================================================================
// MANAGER BENEFITS PASS-THROUGH
// =============================================================================

func TestBuild_BenefitsTableTotalsAndGrandTotal(t *testing.T) {
	// GIVEN: Two managers with benefit columns and period wages
	// WHEN: Building the invoice
	// THEN: The table transposes benefits per manager, appends a Wages row,
	// and the grand total sums the per-manager totals

	d := decimal.NewFromInt
	tr := billingTracker()
	tr.ManagerRates = []tracker.ManagerRate{
		{Name: "Mara Boss", Benefits: []tracker.Benefit{
			{Name: "Health", Amount: d(500)}, {Name: "Dental", Amount: d(100)},
		}},
		{Name: "Dana Lead", Benefits: []tracker.Benefit{
			{Name: "Health", Amount: d(450)}, {Name: "Dental", Amount: d(80)},
		}},
	}

	res := &payroll.Result{Packages: []payroll.EmployeePackage{
		{Name: "Mara Boss", Manager: true, TotalGross: d(2000)},
		{Name: "Dana Lead", Manager: true, TotalGross: d(3500)},
	}}

	inv, err := invoice.Build(res, tr)
	require.NoError(t, err)

	table := inv.Benefits
	assert.Equal(t, []string{"Mara Boss", "Dana Lead"}, table.Managers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Health", table.Rows[0].Name)
	assert.Equal(t, "Wages", table.Rows[2].Name)
	assert.True(t, table.Rows[2].Amounts[1].Equal(d(3500)))

	require.Len(t, table.Totals, 2)
	assert.True(t, table.Totals[0].Equal(d(2600)), "got %s", table.Totals[0])
	assert.True(t, table.Totals[1].Equal(d(4030)), "got %s", table.Totals[1])
	assert.True(t, inv.GrandTotal.Equal(d(6630)), "got %s", inv.GrandTotal)
}
