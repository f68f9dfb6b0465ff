package ingest_test

import (
	"testing"
	"time"

	"github.com/nova-hs/payroll-engine/ingest"
	"github.com/nova-hs/payroll-engine/pay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func criteria(from, to string) *ingest.ReportCriteria {
	return &ingest.ReportCriteria{SlotStartFrom: from, SlotStartTo: to}
}

func minutes(f float64) *float64 { return &f }

func preCleaned(code, provider, inDate, inTime, outDate, outTime string, mins float64) ingest.PreCleanedRow {
	return ingest.PreCleanedRow{
		ServiceCode:  code,
		Provider:     provider,
		CheckInDate:  inDate,
		CheckInTime:  inTime,
		CheckOutDate: outDate,
		CheckOutTime: outTime,
		Minutes:      minutes(mins),
	}
}

// =============================================================================
// NORMALIZATION
// =============================================================================

func TestNormalize_CleansNamesAndCodes(t *testing.T) {
	// GIVEN: A pre-cleaned export row with a decorated code and a
	// "Last, First /site" provider
	// WHEN: Normalizing
	// THEN: The shift carries clean name parts and the stripped code

	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			preCleaned("RC-SDP-CLS-320 HSS1 (site A)", "Smith, Alice /Oak House",
				"06/03/2025", "09:00 AM", "06/03/2025", "05:00 PM", 480),
		},
	}

	shifts, period, err := ingest.Normalize(export)
	require.NoError(t, err)
	require.Len(t, shifts, 1)

	assert.Equal(t, "Alice Smith", shifts[0].Name)
	assert.Equal(t, "Alice", shifts[0].FirstName)
	assert.Equal(t, "Smith", shifts[0].LastName)
	assert.Equal(t, "HSS1", shifts[0].Code)
	assert.Equal(t, "HSS1", shifts[0].OriginalCode)
	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC), period.End)
}

func TestNormalize_RawVariantPrefersUpdatedPunches(t *testing.T) {
	// GIVEN: A raw row with a corrected check-out
	// WHEN: Normalizing
	// THEN: The corrected field wins; uncorrected fields fall through

	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		Raw: []ingest.RawRow{{
			ServiceCode:         "HSS1",
			Provider:            "Smith, Alice",
			CheckInDate:         "06/03/2025",
			CheckInTime:         "09:00 AM",
			CheckOutDate:        "06/03/2025",
			CheckOutTime:        "04:00 PM",
			UpdatedCheckOutTime: "05:00 PM",
			UpdatedCheckOutDate: "06/03/2025",
			Minutes:             minutes(480),
		}},
	}

	shifts, _, err := ingest.Normalize(export)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, 17, shifts[0].CheckOut.Hour())
}

func TestNormalize_SplitsMidnightCrossings(t *testing.T) {
	// GIVEN: An overnight shift 11pm-6am
	// WHEN: Normalizing
	// THEN: Two same-day rows with recomputed minutes; total is conserved

	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			preCleaned("OA1", "Smith, Alice", "06/03/2025", "11:00 PM", "06/04/2025", "06:00 AM", 420),
		},
	}

	shifts, _, err := ingest.Normalize(export)
	require.NoError(t, err)
	require.Len(t, shifts, 2)

	var total float64
	for _, s := range shifts {
		assert.True(t, s.SameDay(), "split rows must not cross midnight")
		total += s.Minutes
	}
	assert.Equal(t, 420.0, total)
	assert.Equal(t, 60.0, shifts[0].Minutes)
	assert.Equal(t, 360.0, shifts[1].Minutes)
}

func TestNormalize_RemapsTrainingCodes(t *testing.T) {
	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			preCleaned("Training-HSS", "Smith, Alice", "06/03/2025", "09:00 AM", "06/03/2025", "11:00 AM", 120),
		},
	}

	shifts, _, err := ingest.Normalize(export)
	require.NoError(t, err)
	assert.Equal(t, "HSS1", shifts[0].Code)
	assert.Equal(t, "Training-HSS", shifts[0].OriginalCode)
}

func TestNormalize_MissingCriteriaIsConfigurationError(t *testing.T) {
	_, _, err := ingest.Normalize(ingest.Export{})
	assert.ErrorIs(t, err, pay.ErrConfiguration)
}

func TestNormalize_MissingColumnNamedInError(t *testing.T) {
	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			{ServiceCode: "HSS1", Provider: "Smith, Alice",
				CheckInDate: "06/03/2025", CheckInTime: "09:00 AM",
				CheckOutDate: "06/03/2025", CheckOutTime: "05:00 PM"}, // no minutes
		},
	}

	_, _, err := ingest.Normalize(export)
	var missing *pay.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Staff Worked Duration (Minutes)", missing.Column)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestNormalize_OverlapsAccumulateIntoOneError(t *testing.T) {
	// GIVEN: Two separate overlapping pairs for the same employee
	// WHEN: Normalizing
	// THEN: One validation error lists both findings

	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			preCleaned("HSS1", "Smith, Alice", "06/03/2025", "09:00 AM", "06/03/2025", "01:00 PM", 240),
			preCleaned("HSS2", "Smith, Alice", "06/03/2025", "12:00 PM", "06/03/2025", "03:00 PM", 180),
			preCleaned("HSS1", "Smith, Alice", "06/04/2025", "09:00 AM", "06/04/2025", "01:00 PM", 240),
			preCleaned("HSS2", "Smith, Alice", "06/04/2025", "12:30 PM", "06/04/2025", "03:00 PM", 150),
		},
	}

	_, _, err := ingest.Normalize(export)
	require.ErrorIs(t, err, pay.ErrValidation)
	var agg *pay.ValidationError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Violations, 2)
	for _, v := range agg.Violations {
		assert.Equal(t, pay.CheckOverlap, v.Check)
	}
}

func TestNormalize_OneMinuteOverlapTolerated(t *testing.T) {
	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			preCleaned("HSS1", "Smith, Alice", "06/03/2025", "09:00 AM", "06/03/2025", "01:00 PM", 240),
			preCleaned("HSS2", "Smith, Alice", "06/03/2025", "12:59 PM", "06/03/2025", "03:00 PM", 121),
		},
	}

	_, _, err := ingest.Normalize(export)
	assert.NoError(t, err)
}

func TestNormalize_DaytimeOvernightCheckInFlagged(t *testing.T) {
	// GIVEN: An overnight-category shift checking in mid-afternoon
	// THEN: The overnight-timing check fires

	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			preCleaned("OA1", "Smith, Alice", "06/03/2025", "02:00 PM", "06/03/2025", "06:00 PM", 240),
		},
	}

	_, _, err := ingest.Normalize(export)
	require.ErrorIs(t, err, pay.ErrValidation)
	var agg *pay.ValidationError
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, pay.CheckOvernight, agg.Violations[0].Check)
}

func TestNormalize_BoundaryOvernightCheckInAccepted(t *testing.T) {
	// 10:45 PM sits on the window edge and is not "strictly inside".
	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			preCleaned("OA1", "Smith, Alice", "06/03/2025", "10:45 PM", "06/03/2025", "11:45 PM", 60),
		},
	}

	_, _, err := ingest.Normalize(export)
	assert.NoError(t, err)
}

// =============================================================================
// SINGLE-EMPLOYEE PATH
// =============================================================================

func TestNormalizeForEmployee_FiltersAndDerivesPeriod(t *testing.T) {
	// GIVEN: Two employees' rows
	// WHEN: Normalizing for one of them
	// THEN: Only their shifts survive; the period spans their check-in days

	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			preCleaned("HSS1", "Smith, Alice", "06/03/2025", "09:00 AM", "06/03/2025", "05:00 PM", 480),
			preCleaned("HSS1", "Smith, Alice", "06/10/2025", "09:00 AM", "06/10/2025", "05:00 PM", 480),
			preCleaned("HSS1", "Jones, Bob", "06/04/2025", "09:00 AM", "06/04/2025", "05:00 PM", 480),
		},
	}

	shifts, period, err := ingest.NormalizeForEmployee(export, "Alice Smith")
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC), period.End)
}

func TestNormalizeForEmployee_UnknownNameFails(t *testing.T) {
	export := ingest.Export{
		Criteria: criteria("06/02/2025", "06/15/2025"),
		PreCleaned: []ingest.PreCleanedRow{
			preCleaned("HSS1", "Smith, Alice", "06/03/2025", "09:00 AM", "06/03/2025", "05:00 PM", 480),
		},
	}

	_, _, err := ingest.NormalizeForEmployee(export, "Nobody Here")
	assert.ErrorIs(t, err, pay.ErrDataIntegrity)
}
