package models

import "time"

// CreateLessonRequest is the payload for scheduling a single lesson.
type CreateLessonRequest struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Description     *string   `json:"description,omitempty"`
	StudentID       *string   `json:"student_id,omitempty"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,gt=0"`
}

// UpdateLessonRequest is the payload for editing a lesson in place.
type UpdateLessonRequest struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Description     *string   `json:"description,omitempty"`
	StudentID       *string   `json:"student_id,omitempty"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,gt=0"`
}

// MoveLessonRequest relocates an existing lesson onto a new calendar slot.
// It mirrors the drop gesture: the target is a date plus an hour slot, and
// the minute offset of the original start survives unless the caller asks
// for a snap to the full hour.
type MoveLessonRequest struct {
	Date                 time.Time `json:"date" validate:"required"`
	Hour                 int       `json:"hour" validate:"min=0,max=23"`
	PreserveMinuteOffset bool      `json:"preserve_minute_offset"`
}

// RecurrenceRequest describes how a series repeats.
type RecurrenceRequest struct {
	Frequency string     `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Interval  int        `json:"interval" validate:"required,gt=0"`
	Until     *time.Time `json:"until,omitempty"`
	Count     int        `json:"count" validate:"omitempty,gt=0"`
}

// CreateSeriesRequest is the payload for scheduling a recurring series.
type CreateSeriesRequest struct {
	Title           string            `json:"title" validate:"required,max=200"`
	Description     *string           `json:"description,omitempty"`
	StudentID       *string           `json:"student_id,omitempty"`
	StartTime       time.Time         `json:"start_time" validate:"required"`
	DurationMinutes int               `json:"duration_minutes" validate:"omitempty,gt=0"`
	Recurrence      RecurrenceRequest `json:"recurrence" validate:"required"`
	// SkipUnavailable drops instances that land on closed days, holidays or
	// conflicting slots instead of rejecting the whole series.
	SkipUnavailable bool `json:"skip_unavailable"`
}

// CreateSeriesResponse reports what the expansion produced.
type CreateSeriesResponse struct {
	SeriesID string            `json:"series_id"`
	Created  []Lesson          `json:"created"`
	Skipped  []SkippedInstance `json:"skipped,omitempty"`
}

// SkippedInstance names a series instance dropped by the skip policy.
type SkippedInstance struct {
	StartTime time.Time       `json:"start_time"`
	Denial    PlacementDenial `json:"denial"`
}

// PlacementRequest is the payload for resolving a calendar gesture.
type PlacementRequest struct {
	Kind                 string    `json:"kind" validate:"required,oneof=click drop"`
	Date                 time.Time `json:"date" validate:"required"`
	Hour                 int       `json:"hour" validate:"min=0,max=23"`
	DraggedLessonID      string    `json:"dragged_lesson_id,omitempty"`
	PreserveMinuteOffset bool      `json:"preserve_minute_offset"`
}

// PlacementDenial is the wire form of a rejected placement.
type PlacementDenial struct {
	Reason              string `json:"reason"`
	HolidayName         string `json:"holiday_name,omitempty"`
	ConflictLessonID    string `json:"conflict_lesson_id,omitempty"`
	ConflictLessonTitle string `json:"conflict_lesson_title,omitempty"`
}

// PlacementResult is the outcome of a placement resolution: either an
// approved slot or a structured denial, never both.
type PlacementResult struct {
	Allowed   bool             `json:"allowed"`
	StartTime *time.Time       `json:"start_time,omitempty"`
	EndTime   *time.Time       `json:"end_time,omitempty"`
	Denial    *PlacementDenial `json:"denial,omitempty"`
}
