/*
Package calendar provides day-granular calendar arithmetic.

PURPOSE:
  Drug expiry is computed in whole days: production date + shelf life
  = expiry date, and "remaining days" is the signed distance from today.
  This package owns date parsing, day arithmetic, and the timestamp
  format used by the sales log.

VALIDATION:
  Parse is strict. A production date must be exactly "YYYY-MM-DD" with
  a real month and a real day for that month (Gregorian leap rule for
  February). Callers treat a parse failure as a recoverable, per-record
  condition: skip the record, warn, keep going.

GRANULARITY:
  All Dates are normalized to midnight UTC. There is exactly one Date
  per calendar day, so comparisons and differences are whole days with
  no timezone or DST edge cases.
*/
package calendar

import "time"

// =============================================================================
// DATE - One calendar day
// =============================================================================

// Date is a calendar day. The zero value is the zero date (IsZero).
type Date struct {
	t time.Time // always midnight UTC
}

// NewDate builds a Date from components. Out-of-range components are
// normalized by time.Date; use Parse for validated input.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day (local clock, day precision).
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Parse validates and parses a strict "YYYY-MM-DD" string.
// It fails on length mismatch, non-digit characters, month outside
// [1,12], or a day invalid for the month (February 29 only in leap
// years). ok=false is a recoverable condition, never a panic.
func Parse(s string) (Date, bool) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, false
	}
	for _, i := range []int{0, 1, 2, 3, 5, 6, 8, 9} {
		if s[i] < '0' || s[i] > '9' {
			return Date{}, false
		}
	}
	year := int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
	month := int(s[5]-'0')*10 + int(s[6]-'0')
	day := int(s[8]-'0')*10 + int(s[9]-'0')

	if month < 1 || month > 12 {
		return Date{}, false
	}
	if day < 1 || day > daysInMonth(year, month) {
		return Date{}, false
	}
	return NewDate(year, time.Month(month), day), true
}

// MustParse is Parse for trusted literals. It panics on invalid input
// and exists for tests and fixtures only.
func MustParse(s string) Date {
	d, ok := Parse(s)
	if !ok {
		panic("calendar: invalid date " + s)
	}
	return d
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default: // February
		if isLeap(year) {
			return 29
		}
		return 28
	}
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Properties
func (d Date) Year() int        { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int         { return d.t.Day() }

// String renders the date back to "YYYY-MM-DD"; Parse(d.String())
// round-trips to the same day.
func (d Date) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns the signed whole-day difference to-from.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// DaysUntil returns the signed number of whole days from today until d.
// Negative means d is in the past.
func DaysUntil(d Date) int { return DaysBetween(Today(), d) }

// =============================================================================
// TIMESTAMPS - Sales log clock format
// =============================================================================

// TimestampLayout is the local-clock stamp written to the sales log.
const TimestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp renders a time in the sales log format.
func FormatTimestamp(t time.Time) string { return t.Format(TimestampLayout) }

// MonthOf returns the "YYYY-MM" bucket of a sales log timestamp, or ""
// when the timestamp is too short to carry one.
func MonthOf(timestamp string) string {
	if len(timestamp) < 7 {
		return ""
	}
	return timestamp[:7]
}
