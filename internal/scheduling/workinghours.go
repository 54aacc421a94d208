package scheduling

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a naive wall-clock time of day. It marshals as "15:04" so the
// weekly working hours stay readable in the settings store.
type ClockTime struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns minutes since midnight.
func (c ClockTime) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is earlier than other.
func (c ClockTime) Before(other ClockTime) bool {
	return c.MinuteOfDay() < other.MinuteOfDay()
}

// String renders the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalJSON implements json.Marshaler.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler accepting "HH:MM".
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		return fmt.Errorf("parse clock time %q: %w", raw, err)
	}
	c.Hour = parsed.Hour()
	c.Minute = parsed.Minute()
	return nil
}

// ClockTimeOf extracts the wall-clock component of an instant.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// WeekdaySettings holds one weekday's bookable window.
type WeekdaySettings struct {
	StartOfDay ClockTime `json:"start_of_day"`
	EndOfDay   ClockTime `json:"end_of_day"`
	Enabled    bool      `json:"enabled"`
}

// WeeklyWorkingHours maps every weekday to its settings. All seven days are
// always present; the array is indexed by time.Weekday (Sunday = 0).
type WeeklyWorkingHours [7]WeekdaySettings

// ForDate returns the settings governing the given date's weekday.
func (w WeeklyWorkingHours) ForDate(date time.Time) WeekdaySettings {
	return w[date.Weekday()]
}

// DayEnabled reports whether the date's weekday is a working day.
func (w WeeklyWorkingHours) DayEnabled(date time.Time) bool {
	return w.ForDate(date).Enabled
}

// HourWithin reports whether the clock time is a bookable start time on the
// date's weekday. The closing time itself is not bookable: the window is
// half-open [StartOfDay, EndOfDay).
func (w WeeklyWorkingHours) HourWithin(date time.Time, hour ClockTime) bool {
	day := w.ForDate(date)
	return !hour.Before(day.StartOfDay) && hour.Before(day.EndOfDay)
}

// DefaultWorkingHours returns the factory configuration: Monday through
// Friday 09:00-19:00, Saturday 10:00-16:00, Sunday off.
func DefaultWorkingHours() WeeklyWorkingHours {
	var w WeeklyWorkingHours
	weekday := WeekdaySettings{
		StartOfDay: ClockTime{Hour: 9},
		EndOfDay:   ClockTime{Hour: 19},
		Enabled:    true,
	}
	for d := time.Monday; d <= time.Friday; d++ {
		w[d] = weekday
	}
	w[time.Saturday] = WeekdaySettings{
		StartOfDay: ClockTime{Hour: 10},
		EndOfDay:   ClockTime{Hour: 16},
		Enabled:    true,
	}
	w[time.Sunday] = WeekdaySettings{
		StartOfDay: ClockTime{Hour: 9},
		EndOfDay:   ClockTime{Hour: 19},
	}
	return w
}
