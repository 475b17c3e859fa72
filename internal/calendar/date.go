// Package calendar matches dated records against calendar days.
//
// Days are plain year/month/day triples. Nothing in this package converts a
// stored date into an instant, so a record always lands on the day written in
// its date string whatever the zone of the caller.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing overflowing values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return fromUTC(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar fields of t as seen in t's own location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a stored date string (plain or ISO-8601 datetime) into a Date.
func ParseDate(raw string) (Date, bool) {
	key, ok := NormalizeDate(raw)
	if !ok {
		return Date{}, false
	}
	parsed, err := time.Parse(dateLayout, key)
	if err != nil {
		return Date{}, false
	}
	return DateOf(parsed), true
}

// Format renders the day as YYYY-MM-DD.
func (d Date) Format() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// String implements fmt.Stringer.
func (d Date) String() string {
	return d.Format()
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the day n days after d. Negative n moves backwards.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.utcNoon().Weekday()
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.utcNoon().Before(other.utcNoon())
}

// In returns the instant at the given wall clock time of d in loc.
func (d Date) In(loc *time.Location, hour, minute int) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

// WeekStart returns the Monday of the week containing d.
func WeekStart(d Date) Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// NormalizeDate extracts the YYYY-MM-DD comparison key from a stored date.
//
// A plain date is used verbatim. Otherwise the part before the first "T" is
// used. Anything that does not yield a YYYY-MM-DD key reports false.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if isDateKey(raw) {
		return raw, true
	}
	left, _, found := strings.Cut(raw, "T")
	if !found || !isDateKey(left) {
		return "", false
	}
	return left, true
}

func isDateKey(s string) bool {
	if len(s) != len(dateLayout) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch i {
		case 4, 7:
			if c != '-' {
				return false
			}
		default:
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

// utcNoon anchors arithmetic at noon UTC so that day math never crosses a
// daylight saving boundary.
func (d Date) utcNoon() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

func fromUTC(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}
