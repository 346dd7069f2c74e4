package amortization

import "time"

// =============================================================================
// DATE - Calendar day abstraction (payment dates have no time of day)
// =============================================================================

// DateLayout is the wire format for dates: YYYY-MM-DD.
const DateLayout = "2006-01-02"

// Date is a calendar day in UTC.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses a YYYY-MM-DD string. Out-of-range days (2021-02-30) are
// rejected rather than normalized.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &DateError{Input: s, Err: err}
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// MustParseDate is ParseDate for literals in tests and presets.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }

func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// MONTH STEPPING
// =============================================================================

// AddMonthClamped moves d forward one calendar month. When the target month
// is shorter than d's day, the day is clamped to the month end:
//
//	2021-01-31 -> 2021-02-28
//	2020-01-31 -> 2020-02-29
//	2021-12-15 -> 2022-01-15
//
// The clamped day is carried forward, so a schedule anchored on the 31st
// drifts to the 28th after February and never returns to the 31st.
func AddMonthClamped(d Date) Date {
	month := int(d.Month())
	year := d.Year() + month/12
	next := time.Month(month%12 + 1)
	day := min(d.Day(), DaysInMonth(year, next))
	return NewDate(year, next, day)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the number of calendar days from -> to.
func DaysBetween(from, to Date) int { return int(to.Time.Sub(from.Time).Hours() / 24) }

func DaysInMonth(year int, month time.Month) int { return EndOfMonth(year, month).Day() }

func EndOfMonth(year int, month time.Month) Date {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return Date{Time: t}
}
