package calendar

import "time"

// GridSize is the number of cells in a month view: six Monday-first weeks.
const GridSize = 42

// Cell is one day of the month grid.
type Cell struct {
	Date           Date
	IsCurrentMonth bool
}

// BuildMonthGrid returns the 42 days shown for a month, starting on the Monday
// on or before the first of the month. Days outside the month pad the grid on
// both ends. Out-of-range months are normalized like time.Date does.
func BuildMonthGrid(year int, month time.Month) []Cell {
	first := NewDate(year, month, 1)
	start := WeekStart(first)

	cells := make([]Cell, GridSize)
	day := start
	for i := range cells {
		cells[i] = Cell{
			Date:           day,
			IsCurrentMonth: day.Year == first.Year && day.Month == first.Month,
		}
		day = day.AddDays(1)
	}
	return cells
}
