/*
errors.go - Centralized error taxonomy for the payroll pipeline

PURPOSE:
  All error categories in one place. Pipeline packages wrap these with
  context (employee, column, shift) so a run that aborts tells the operator
  exactly what to fix in the source workbook.

ERROR CATEGORIES:
  1. File format errors  - unreadable or wrong-type input
  2. Configuration errors - missing report-period metadata
  3. Parse errors        - date/time strings that don't match the export format
  4. Data integrity errors - missing fields, unresolvable or ambiguous lookups
  5. Validation errors   - overlapping shifts, unusual overnight timing;
                           these accumulate across the dataset and fail once

PROPAGATION POLICY:
  Validation runs to completion and raises one aggregate error per check, so
  an operator fixes the spreadsheet once instead of row by row. Everything
  else fails fast: a missing rate or staff record aborts the entire run with
  no partial payroll output.

USAGE:
  if errors.Is(err, pay.ErrValidation) { ... }

  var lookup *pay.LookupError
  if errors.As(err, &lookup) { ... lookup.Employee ... }
*/
package pay

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrFileFormat is returned when an input cannot be opened or is not the
	// expected workbook type.
	ErrFileFormat = errors.New("unreadable input file")

	// ErrConfiguration is returned when the shift export's report-criteria
	// metadata (the pay-period bounds) cannot be read.
	ErrConfiguration = errors.New("missing report criteria")

	// ErrParse is returned when a date/time value does not match the export's
	// fixed format.
	ErrParse = errors.New("unparseable value")

	// ErrDataIntegrity is returned for missing required fields, unresolvable
	// name/level lookups, and ambiguous staff matches.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrValidation is returned once per check category after all violations
	// in the dataset have been collected.
	ErrValidation = errors.New("shift validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry context for the operator
// =============================================================================

// MissingColumnError reports shifts with a missing required field.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("some shifts have missing %s", e.Column)
}

func (e *MissingColumnError) Unwrap() error { return ErrDataIntegrity }

// ParseError reports a value that does not match the expected format.
type ParseError struct {
	Field  string
	Value  string
	Format string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q (expected format %s)", e.Field, e.Value, e.Format)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// LookupError reports a required rate or staff field that could not be
// resolved for an employee. The run aborts; there is no per-employee
// partial success.
type LookupError struct {
	Employee string
	Field    string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no %s found for %s", e.Field, e.Employee)
}

func (e *LookupError) Unwrap() error { return ErrDataIntegrity }

// StaffMatchError reports zero or multiple staff-table rows matching a name.
// Employee identity must resolve to exactly one row.
type StaffMatchError struct {
	Name    string
	Matches int
}

func (e *StaffMatchError) Error() string {
	return fmt.Sprintf("found %d staff records for %q, want exactly 1", e.Matches, e.Name)
}

func (e *StaffMatchError) Unwrap() error { return ErrDataIntegrity }

// =============================================================================
// VALIDATION RESULT - Accumulated violations, raised once per check
// =============================================================================

// Check identifies a validation check category.
type Check string

const (
	CheckOverlap   Check = "overlapping shifts"
	CheckOvernight Check = "unusual overnight timing"
)

// Violation is one structured validation finding.
type Violation struct {
	Check    Check
	Employee string
	Date     time.Time
	Detail   string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s for %s on %s: %s",
		v.Check, v.Employee, v.Date.Format("01/02/2006"), v.Detail)
}

// ValidationResult collects violations instead of failing per row. The caller
// decides when to abort via Err.
type ValidationResult struct {
	Violations []Violation
}

func (r *ValidationResult) Add(v Violation) { r.Violations = append(r.Violations, v) }

func (r *ValidationResult) OK() bool { return len(r.Violations) == 0 }

// Err returns nil if no violations were collected, otherwise a single
// aggregate *ValidationError listing every finding.
func (r *ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Violations: r.Violations}
}

// ValidationError is the aggregate failure for a validation pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
