package calendar

import "time"

// Dated is implemented by records that carry a calendar date and an optional
// active flag.
type Dated interface {
	CalendarDate() string
	ActiveFlag() *bool
}

// HasRecordOn reports whether at least one active record falls on day.
// A missing active flag counts as active; only an explicit false suppresses
// the record.
func HasRecordOn[R Dated](records []R, day Date) bool {
	key := day.Format()
	for _, rec := range records {
		if isExplicitlyInactive(rec) {
			continue
		}
		if matchesKey(rec, key) {
			return true
		}
	}
	return false
}

// RecordsOn returns every record that falls on day in input order.
//
// Inactive records are included: the day detail lists everything stored for
// the day while only the calendar indicator honours the active flag.
func RecordsOn[R Dated](records []R, day Date) []R {
	key := day.Format()
	out := make([]R, 0)
	for _, rec := range records {
		if matchesKey(rec, key) {
			out = append(out, rec)
		}
	}
	return out
}

// DayIndicator is a grid cell annotated with the presence of active records.
type DayIndicator struct {
	Cell
	HasRecord bool
}

// MonthIndicators builds the month grid and marks the days that have at least
// one active record, using the same rule as HasRecordOn.
func MonthIndicators[R Dated](records []R, year int, month time.Month) []DayIndicator {
	active := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if isExplicitlyInactive(rec) {
			continue
		}
		if key, ok := NormalizeDate(rec.CalendarDate()); ok {
			active[key] = struct{}{}
		}
	}

	grid := BuildMonthGrid(year, month)
	out := make([]DayIndicator, len(grid))
	for i, cell := range grid {
		_, ok := active[cell.Date.Format()]
		out[i] = DayIndicator{Cell: cell, HasRecord: ok}
	}
	return out
}

func matchesKey[R Dated](rec R, key string) bool {
	normalized, ok := NormalizeDate(rec.CalendarDate())
	return ok && normalized == key
}

func isExplicitlyInactive[R Dated](rec R) bool {
	flag := rec.ActiveFlag()
	return flag != nil && !*flag
}
