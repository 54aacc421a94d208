package scheduling

import (
	"fmt"
	"time"

	"github.com/derslik/derslik-api/internal/models"
)

// Granularity selects the calendar view a grid is generated for.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// CalendarCell is one renderable day of a calendar view. Padding cells that
// belong to a neighboring month carry InReferencePeriod = false. Cells are
// produced fresh per call and never persisted.
type CalendarCell struct {
	Date              time.Time       `json:"date"`
	InReferencePeriod bool            `json:"in_reference_period"`
	Lessons           []models.Lesson `json:"lessons"`
}

// GenerateCells produces the ordered day cells the UI iterates to place
// lessons.
//
// Weeks start on Monday. Month views are padded on both sides to complete
// weeks so the cell count is always a multiple of seven. The year view is
// twelve concatenated month grids with the same padding, so month and year
// views render month boundaries identically.
//
// Each cell's lesson list is the subsequence of the input whose start falls
// on the cell's date, in input order; the input is never re-sorted.
func GenerateCells(referenceDate time.Time, granularity Granularity, lessons []models.Lesson) ([]CalendarCell, error) {
	switch granularity {
	case GranularityDay:
		return []CalendarCell{newCell(referenceDate, true, lessons)}, nil
	case GranularityWeek:
		return weekCells(referenceDate, lessons), nil
	case GranularityMonth:
		return monthCells(referenceDate, lessons), nil
	case GranularityYear:
		var cells []CalendarCell
		for month := time.January; month <= time.December; month++ {
			ref := time.Date(referenceDate.Year(), month, 1, 0, 0, 0, 0, referenceDate.Location())
			cells = append(cells, monthCells(ref, lessons)...)
		}
		return cells, nil
	default:
		return nil, fmt.Errorf("scheduling: unknown granularity %q", granularity)
	}
}

func weekCells(ref time.Time, lessons []models.Lesson) []CalendarCell {
	start := startOfWeek(ref)
	cells := make([]CalendarCell, 0, 7)
	for i := 0; i < 7; i++ {
		cells = append(cells, newCell(start.AddDate(0, 0, i), true, lessons))
	}
	return cells
}

func monthCells(ref time.Time, lessons []models.Lesson) []CalendarCell {
	firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	gridStart := startOfWeek(firstOfMonth)
	gridEnd := startOfWeek(lastOfMonth).AddDate(0, 0, 6)

	var cells []CalendarCell
	for d := gridStart; !d.After(gridEnd); d = d.AddDate(0, 0, 1) {
		cells = append(cells, newCell(d, d.Month() == ref.Month(), lessons))
	}
	return cells
}

func newCell(date time.Time, inPeriod bool, lessons []models.Lesson) CalendarCell {
	cell := CalendarCell{Date: startOfDay(date), InReferencePeriod: inPeriod}
	for _, l := range lessons {
		if SameDate(l.StartTime, date) {
			cell.Lessons = append(cell.Lessons, l)
		}
	}
	return cell
}

// startOfWeek returns the Monday on or before t, at midnight.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
