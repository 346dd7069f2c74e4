package amortization_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/amortization-engine/amortization"
)

// =============================================================================
// MONTH STEPPING
// =============================================================================

func TestAddMonthClamped(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{"mid month", "2020-06-25", "2020-07-25"},
		{"december carries into next year", "2021-12-15", "2022-01-15"},
		{"jan 31 clamps to feb 28", "2021-01-31", "2021-02-28"},
		{"jan 31 clamps to feb 29 in leap year", "2020-01-31", "2020-02-29"},
		{"mar 31 clamps to apr 30", "2021-03-31", "2021-04-30"},
		{"aug 31 clamps to sep 30", "2021-08-31", "2021-09-30"},
		{"dec 31 into jan 31", "2021-12-31", "2022-01-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := amortization.AddMonthClamped(amortization.MustParseDate(tt.from))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAddMonthClamped_TwelveStepsIsOneYear(t *testing.T) {
	for _, start := range []string{"2020-06-25", "2021-01-01", "2021-12-28", "2019-03-15"} {
		d := amortization.MustParseDate(start)
		for i := 0; i < 12; i++ {
			d = amortization.AddMonthClamped(d)
		}
		want := amortization.MustParseDate(start)
		assert.Equal(t, want.Year()+1, d.Year(), start)
		assert.Equal(t, want.Month(), d.Month(), start)
		assert.Equal(t, want.Day(), d.Day(), start)
	}
}

// Known quirk: clamping is carried forward. A schedule anchored on the 31st
// drops to the 28th after February and never comes back, even in months
// that have 31 days.
func TestAddMonthClamped_MonthEndDriftDoesNotRecover(t *testing.T) {
	d := amortization.MustParseDate("2021-01-31")
	var days []int
	for i := 0; i < 12; i++ {
		d = amortization.AddMonthClamped(d)
		days = append(days, d.Day())
	}

	for i, day := range days {
		assert.Equal(t, 28, day, "step %d", i+1)
	}
	assert.Equal(t, "2022-01-28", d.String())
}

// =============================================================================
// PARSING AND DAY COUNT
// =============================================================================

func TestParseDate(t *testing.T) {
	d, err := amortization.ParseDate("2020-06-25")
	require.NoError(t, err)
	assert.Equal(t, amortization.NewDate(2020, time.June, 25), d)

	for _, bad := range []string{"", "2020-6-25", "25/06/2020", "2021-02-30", "2020-13-01", "not a date"} {
		_, err := amortization.ParseDate(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, amortization.ErrInvalidDate), bad)

		var dateErr *amortization.DateError
		require.True(t, errors.As(err, &dateErr), bad)
		assert.Equal(t, bad, dateErr.Input)
	}
}

func TestDate_TextRoundTrip(t *testing.T) {
	var d amortization.Date
	require.NoError(t, d.UnmarshalText([]byte("2024-02-29")))

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", string(b))

	assert.ErrorIs(t, d.UnmarshalText([]byte("2023-02-29")), amortization.ErrInvalidDate)
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2020-06-25", "2020-07-25", 30},
		{"2020-07-25", "2020-08-25", 31},
		{"2021-02-25", "2021-03-25", 28},
		{"2020-02-25", "2020-03-25", 29},
		{"2020-12-31", "2021-12-31", 365},
	}
	for _, tt := range tests {
		got := amortization.DaysBetween(amortization.MustParseDate(tt.from), amortization.MustParseDate(tt.to))
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, amortization.DaysInMonth(2020, time.February))
	assert.Equal(t, 28, amortization.DaysInMonth(2021, time.February))
	assert.Equal(t, 31, amortization.DaysInMonth(2021, time.December))
	assert.Equal(t, 30, amortization.DaysInMonth(2021, time.April))
}
