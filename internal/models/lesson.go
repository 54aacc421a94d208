package models

import "time"

// Lesson represents a single tutoring lesson occupying a half-open
// [StartTime, EndTime) slot on the calendar.
type Lesson struct {
	ID             string     `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Description    *string    `db:"description" json:"description,omitempty"`
	StudentID      *string    `db:"student_id" json:"student_id,omitempty"`
	StartTime      time.Time  `db:"start_time" json:"start_time"`
	EndTime        time.Time  `db:"end_time" json:"end_time"`
	SeriesID       *string    `db:"series_id" json:"series_id,omitempty"`
	SequenceNumber int        `db:"sequence_number" json:"sequence_number"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// IsRecurring reports whether the lesson belongs to a series.
func (l Lesson) IsRecurring() bool {
	return l.SeriesID != nil && *l.SeriesID != ""
}

// Duration returns the lesson length.
func (l Lesson) Duration() time.Duration {
	return l.EndTime.Sub(l.StartTime)
}

// LessonFilter narrows down lesson listings.
type LessonFilter struct {
	From      *time.Time
	To        *time.Time
	StudentID string
	SeriesID  string
	Page      int
	PageSize  int
}

// LessonDetail contains a lesson joined with its student's name for
// listings and exports.
type LessonDetail struct {
	Lesson
	StudentName *string `db:"student_name" json:"student_name,omitempty"`
}
