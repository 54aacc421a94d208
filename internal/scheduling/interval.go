package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/derslik/derslik-api/internal/models"
)

// ErrInvalidInterval indicates an interval whose end does not follow its start.
var ErrInvalidInterval = errors.New("scheduling: interval end must be after start")

// TimeInterval is a half-open [Start, End) slot on the calendar. A lesson
// ending at 10:00 does not collide with one starting at 10:00.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeInterval validates and builds an interval.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if !end.After(start) {
		return TimeInterval{}, fmt.Errorf("%w: start=%s end=%s", ErrInvalidInterval, start, end)
	}
	return TimeInterval{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open intervals intersect.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether t falls inside the interval.
func (i TimeInterval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Duration returns the interval length.
func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// LessonInterval adapts a lesson's slot to a TimeInterval.
func LessonInterval(l models.Lesson) TimeInterval {
	return TimeInterval{Start: l.StartTime, End: l.EndTime}
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
