/*
Package runner orchestrates one processing run end to end.

PURPOSE:
  The domain packages each do one stage; runner is the only place the whole
  pipeline appears in order:

    workbook.ReadShiftExport + workbook.ReadTracker
    -> ingest.Normalize (or NormalizeForEmployee)
    -> tracker.Prepare
    -> payroll.Run
    -> invoice.Build
    -> workbook writers (payroll output, new tracker, invoice, extract)

  The HTTP shell and any future CLI call into this package; they never touch
  the stages directly.

KEY CONCEPTS:
  Full cycle: the regular semi-monthly run. Produces all four artifacts and
  the refreshed tracker the next cycle starts from.
  Off cycle: a correction run for one employee, pay period derived from that
  employee's own shifts. Produces a single payroll artifact and leaves the
  tracker untouched.
*/
package runner

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/nova-hs/payroll-engine/ingest"
	"github.com/nova-hs/payroll-engine/invoice"
	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/payroll"
	"github.com/nova-hs/payroll-engine/workbook"
)

// Result describes a finished run: the period it covered and the artifact
// files it wrote.
type Result struct {
	Period    pay.Period
	Artifacts []string
}

// Run executes the full payroll cycle and writes all four artifacts into
// outDir.
func Run(exportPath, trackerPath, outDir string) (*Result, error) {
	export, err := workbook.ReadShiftExport(exportPath)
	if err != nil {
		return nil, err
	}
	t, err := workbook.ReadTracker(trackerPath)
	if err != nil {
		return nil, err
	}

	shifts, period, err := ingest.Normalize(export)
	if err != nil {
		return nil, err
	}
	if err := t.Prepare(period.Start); err != nil {
		return nil, err
	}

	res, err := payroll.Run(shifts, t, period)
	if err != nil {
		return nil, err
	}
	inv, err := invoice.Build(res, t)
	if err != nil {
		return nil, err
	}

	label := period.Label()
	artifacts := []struct {
		path  string
		write func(string) error
	}{
		{artifact(outDir, "PAYROLL OUTPUT", label), func(p string) error {
			return workbook.WritePayroll(p, res)
		}},
		{artifact(outDir, "NEW TRACKER", label), func(p string) error {
			return workbook.WriteTracker(p, t, res)
		}},
		{artifact(outDir, "INVOICE", label), func(p string) error {
			return workbook.WriteInvoice(p, inv, res)
		}},
		{artifact(outDir, "MACHINE_READABLE_OUTPUT", label), func(p string) error {
			return workbook.WriteMachineReadable(p, res, inv)
		}},
	}

	out := &Result{Period: period}
	for _, a := range artifacts {
		if err := a.write(a.path); err != nil {
			return nil, err
		}
		out.Artifacts = append(out.Artifacts, a.path)
	}
	return out, nil
}

// RunOne executes an off-cycle run for a single employee. The tracker still
// supplies rates and balances but is not refreshed, and nothing is invoiced.
func RunOne(exportPath, trackerPath, outDir, name string) (*Result, error) {
	export, err := workbook.ReadShiftExport(exportPath)
	if err != nil {
		return nil, err
	}
	t, err := workbook.ReadTracker(trackerPath)
	if err != nil {
		return nil, err
	}

	shifts, period, err := ingest.NormalizeForEmployee(export, name)
	if err != nil {
		return nil, err
	}
	if err := t.Prepare(period.Start); err != nil {
		return nil, err
	}

	res, err := payroll.Run(shifts, t, period)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(outDir,
		fmt.Sprintf("OFF CYCLE PAYROLL OUTPUT - %s - %s.xlsx", name, period.Label()))
	if err := workbook.WritePayroll(path, res); err != nil {
		return nil, err
	}
	return &Result{Period: period, Artifacts: []string{path}}, nil
}

// Names lists the non-manager employees present in a shift export and known
// to the tracker, for the off-cycle run form.
func Names(exportPath, trackerPath string) ([]string, error) {
	export, err := workbook.ReadShiftExport(exportPath)
	if err != nil {
		return nil, err
	}
	t, err := workbook.ReadTracker(trackerPath)
	if err != nil {
		return nil, err
	}

	shifts, _, err := ingest.Normalize(export)
	if err != nil {
		return nil, err
	}

	staff := make(map[string]bool)
	for _, s := range t.Staff {
		staff[s.Name] = true
	}
	seen := make(map[string]bool)
	var names []string
	for _, s := range shifts {
		if staff[s.Name] && !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func artifact(dir, kind, label string) string {
	return filepath.Join(dir, fmt.Sprintf("%s - %s.xlsx", kind, label))
}
