package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleSettings is the single-row planner configuration: weekly working
// hours (stored as JSONB), the holiday override and the default lesson length.
type ScheduleSettings struct {
	ID                   int16          `db:"id" json:"-"`
	WorkingHours         types.JSONText `db:"working_hours" json:"working_hours"`
	AllowWorkOnHolidays  bool           `db:"allow_work_on_holidays" json:"allow_work_on_holidays"`
	DefaultLessonMinutes int            `db:"default_lesson_minutes" json:"default_lesson_minutes"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// CustomHoliday is a user-defined non-working date.
type CustomHoliday struct {
	ID          int64     `db:"id" json:"id"`
	Date        time.Time `db:"holiday_date" json:"date"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
