package holiday_test

import (
	"testing"
	"time"

	"github.com/nova-hs/payroll-engine/holiday"
	"github.com/nova-hs/payroll-engine/pay"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEaster_KnownYears(t *testing.T) {
	assert.Equal(t, date(2024, time.March, 31), holiday.Easter(2024))
	assert.Equal(t, date(2025, time.April, 20), holiday.Easter(2025))
	assert.Equal(t, date(2026, time.April, 5), holiday.Easter(2026))
}

func TestDates_FourthThursdayThanksgiving(t *testing.T) {
	dates := holiday.Dates(2024)
	assert.Contains(t, dates, date(2024, time.November, 28))
	// The prior year's New Year's Eve rides along.
	assert.Contains(t, dates, date(2023, time.December, 31))
}

func TestRanges_NewYearsEveStartsAtThreePM(t *testing.T) {
	// GIVEN: The 2024 holiday windows
	// THEN: Dec 31 starts at 15:00, every other holiday at midnight

	ranges := holiday.Ranges([]int{2024})

	var nye, christmas *holiday.Range
	for i := range ranges {
		switch ranges[i].End {
		case date(2025, time.January, 1):
			nye = &ranges[i]
		case date(2024, time.December, 26):
			christmas = &ranges[i]
		}
	}
	if assert.NotNil(t, nye) {
		assert.Equal(t, date(2024, time.December, 31).Add(15*time.Hour), nye.Start)
	}
	if assert.NotNil(t, christmas) {
		assert.Equal(t, date(2024, time.December, 25), christmas.Start)
	}
}

func TestRanges_AdjacentYearsDeduplicateSharedEve(t *testing.T) {
	// 2024's Dec 31 appears both as 2024's NYE and as 2025's prior-year NYE.
	ranges := holiday.Ranges([]int{2024, 2025})

	count := 0
	for _, r := range ranges {
		if r.End == date(2025, time.January, 1) {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestOverlapMinutes(t *testing.T) {
	ranges := holiday.Ranges([]int{2024})

	// GIVEN: A shift 22:00 Dec 24 - 02:00 Dec 25 (already midnight-split in
	// real data; raw interval used here to exercise the intersection)
	// THEN: All 240 minutes fall inside Christmas Eve + Christmas windows
	got := holiday.OverlapMinutes(
		time.Date(2024, time.December, 24, 22, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 25, 2, 0, 0, 0, time.UTC),
		ranges)
	assert.Equal(t, 240.0, got)

	// A Dec 31 shift only counts past 15:00.
	got = holiday.OverlapMinutes(
		time.Date(2024, time.December, 31, 14, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 31, 17, 0, 0, 0, time.UTC),
		ranges)
	assert.Equal(t, 120.0, got)

	// An ordinary day overlaps nothing.
	got = holiday.OverlapMinutes(
		time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 3, 17, 0, 0, 0, time.UTC),
		ranges)
	assert.Equal(t, 0.0, got)
}

func TestAnnotate_SpansDataYears(t *testing.T) {
	// GIVEN: Shifts in late December and the following January
	// WHEN: Annotating
	// THEN: Both years' windows apply; the NYE shift gets its post-15:00 part

	shifts := []pay.Shift{
		{
			CheckIn:  time.Date(2024, time.December, 31, 14, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, time.December, 31, 18, 0, 0, 0, time.UTC),
		},
		{
			CheckIn:  time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2025, time.January, 2, 17, 0, 0, 0, time.UTC),
		},
	}

	holiday.Annotate(shifts)

	assert.Equal(t, 180.0, shifts[0].HolidayMinutes)
	assert.Equal(t, 0.0, shifts[1].HolidayMinutes)
}
