package scheduling

import (
	"time"

	"github.com/derslik/derslik-api/internal/models"
)

// DenialReason is a stable, matchable tag describing why a slot was refused.
type DenialReason string

const (
	DenialDayDisabled         DenialReason = "day_disabled"
	DenialOutsideWorkingHours DenialReason = "outside_working_hours"
	DenialHoliday             DenialReason = "holiday"
	DenialConflict            DenialReason = "conflict"
)

// Denial carries the reason a placement was refused plus the structured
// context the UI needs to build its message. The engine never formats
// user-facing strings itself.
type Denial struct {
	Reason              DenialReason `json:"reason"`
	HolidayName         string       `json:"holiday_name,omitempty"`
	ConflictLessonID    string       `json:"conflict_lesson_id,omitempty"`
	ConflictLessonTitle string       `json:"conflict_lesson_title,omitempty"`
}

// CheckDayAvailability answers whether any lesson may sit on the date at all,
// ignoring the hour. Used for whole-day queries such as disabling month-view
// cells.
func CheckDayAvailability(hours WeeklyWorkingHours, date time.Time, allowWorkOnHolidays bool, custom []models.CustomHoliday) *Denial {
	return checkAvailability(hours, date, nil, allowWorkOnHolidays, custom)
}

// CheckAvailability answers whether a lesson may start at the given clock
// time on the date.
func CheckAvailability(hours WeeklyWorkingHours, date time.Time, hour ClockTime, allowWorkOnHolidays bool, custom []models.CustomHoliday) *Denial {
	return checkAvailability(hours, date, &hour, allowWorkOnHolidays, custom)
}

// The check order is deliberate: a disabled day is reported as such even when
// the date is also a holiday, because "day closed" is the more actionable
// fact for the user. The first failing check wins.
func checkAvailability(hours WeeklyWorkingHours, date time.Time, hour *ClockTime, allowWorkOnHolidays bool, custom []models.CustomHoliday) *Denial {
	if !hours.DayEnabled(date) {
		return &Denial{Reason: DenialDayDisabled}
	}

	if info := ClassifyHoliday(date, custom); info.IsHoliday && !allowWorkOnHolidays {
		return &Denial{Reason: DenialHoliday, HolidayName: info.Name}
	}

	if hour != nil && !hours.HourWithin(date, *hour) {
		return &Denial{Reason: DenialOutsideWorkingHours}
	}

	return nil
}
