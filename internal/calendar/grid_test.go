package calendar

import (
	"testing"
	"time"
)

func TestBuildMonthGrid_Shape(t *testing.T) {
	t.Parallel()

	for year := 2023; year <= 2026; year++ {
		for month := time.January; month <= time.December; month++ {
			grid := BuildMonthGrid(year, month)
			if len(grid) != GridSize {
				t.Fatalf("%d-%02d: expected %d cells, got %d", year, month, GridSize, len(grid))
			}
			if grid[0].Date.Weekday() != time.Monday || grid[7].Date.Weekday() != time.Monday {
				t.Fatalf("%d-%02d: rows must start on Monday", year, month)
			}

			seenCurrent := false
			for i, cell := range grid {
				if i > 0 && cell.Date != grid[i-1].Date.AddDays(1) {
					t.Fatalf("%d-%02d: cells %d and %d are not consecutive", year, month, i-1, i)
				}
				if cell.Date.Day == 1 && cell.Date.Month == month {
					seenCurrent = true
				}
				if !seenCurrent && cell.IsCurrentMonth {
					t.Fatalf("%d-%02d: cell %s before the first is flagged current", year, month, cell.Date)
				}
				inMonth := cell.Date.Month == month && cell.Date.Year == year
				if cell.IsCurrentMonth != inMonth {
					t.Fatalf("%d-%02d: wrong IsCurrentMonth for %s", year, month, cell.Date)
				}
			}
		}
	}
}

func TestBuildMonthGrid_Padding(t *testing.T) {
	t.Parallel()

	// March 2024 starts on a Friday.
	grid := BuildMonthGrid(2024, time.March)
	if got := grid[0].Date.Format(); got != "2024-02-26" {
		t.Fatalf("expected grid to start on 2024-02-26, got %s", got)
	}
	if grid[3].IsCurrentMonth || !grid[4].IsCurrentMonth {
		t.Fatalf("expected the first current-month cell at index 4")
	}
	if got := grid[GridSize-1].Date.Format(); got != "2024-04-07" {
		t.Fatalf("expected grid to end on 2024-04-07, got %s", got)
	}

	// April 2024 starts on a Monday, so no leading padding is needed.
	april := BuildMonthGrid(2024, time.April)
	if got := april[0].Date.Format(); got != "2024-04-01" || !april[0].IsCurrentMonth {
		t.Fatalf("expected April grid to open on 2024-04-01, got %s", got)
	}
}

func TestBuildMonthGrid_IsDeterministic(t *testing.T) {
	t.Parallel()

	first := BuildMonthGrid(2025, time.December)
	second := BuildMonthGrid(2025, time.December)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("grid differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBuildMonthGrid_NormalizesMonth(t *testing.T) {
	t.Parallel()

	overflow := BuildMonthGrid(2024, 13)
	january := BuildMonthGrid(2025, time.January)
	if overflow[0] != january[0] || overflow[GridSize-1] != january[GridSize-1] {
		t.Fatalf("month 13 of 2024 should equal January 2025")
	}
}

func TestWeekStartAndParseDate(t *testing.T) {
	t.Parallel()

	day, ok := ParseDate("2024-03-07T21:00:00-05:00")
	if !ok {
		t.Fatalf("ParseDate rejected a valid datetime")
	}
	if day != (Date{Year: 2024, Month: time.March, Day: 7}) {
		t.Fatalf("unexpected parsed day %s", day)
	}
	if got := WeekStart(day).Format(); got != "2024-03-04" {
		t.Fatalf("expected week to start on 2024-03-04, got %s", got)
	}
	if _, ok := ParseDate("2024-02-30"); ok {
		t.Fatalf("ParseDate accepted an impossible day")
	}
}
