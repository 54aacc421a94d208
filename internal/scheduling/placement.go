package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/derslik/derslik-api/internal/models"
)

// GestureKind identifies how the user asked for a slot.
type GestureKind string

const (
	// GestureClick is a click on an empty grid cell: a new lesson of the
	// default duration starting on the hour.
	GestureClick GestureKind = "click"
	// GestureDrop is a drag-and-drop of an existing lesson onto a new cell.
	GestureDrop GestureKind = "drop"
)

var (
	// ErrUnknownGesture indicates an unsupported gesture kind.
	ErrUnknownGesture = errors.New("scheduling: unknown gesture kind")
	// ErrDraggedLessonNotFound indicates the drop references a lesson missing
	// from the snapshot.
	ErrDraggedLessonNotFound = errors.New("scheduling: dragged lesson not found in snapshot")
	// ErrNonPositiveDuration indicates a candidate with no usable duration.
	ErrNonPositiveDuration = errors.New("scheduling: candidate duration must be positive")
)

// PlacementInput is a user gesture translated to grid coordinates by the
// view adapters.
type PlacementInput struct {
	Kind GestureKind `json:"kind"`
	// Date carries the target day; only its date component is used.
	Date time.Time `json:"date"`
	// Hour is the grid row the gesture landed on.
	Hour int `json:"hour"`
	// DraggedLessonID names the lesson being moved (drop), or the lesson
	// being edited whose duration a click should reuse. Empty for new
	// lessons.
	DraggedLessonID string `json:"dragged_lesson_id,omitempty"`
	// PreserveMinuteOffset keeps the dragged lesson's original start minute
	// when snapping to the hour grid (week/day views). Month-view drops snap
	// to the plain hour.
	PreserveMinuteOffset bool `json:"preserve_minute_offset,omitempty"`
	// DefaultDuration sizes new lessons created by a click.
	DefaultDuration time.Duration `json:"-"`
}

// PlacementContext is the read-only snapshot a placement decision runs
// against. The caller refreshes it between calls; the engine never reaches
// for ambient state.
type PlacementContext struct {
	Lessons             []models.Lesson
	WorkingHours        WeeklyWorkingHours
	CustomHolidays      []models.CustomHoliday
	AllowWorkOnHolidays bool
}

// ResolvePlacement turns a gesture into an approved candidate interval or a
// structured denial. Availability runs before the conflict scan, so a denied
// slot always reports a single, primary reason. The resolver has no side
// effects; applying the approved interval is the caller's job.
//
// A non-nil error marks malformed input (unknown gesture, missing dragged
// lesson, unusable duration), not a domain denial.
func ResolvePlacement(in PlacementInput, pctx PlacementContext) (TimeInterval, *Denial, error) {
	var dragged *models.Lesson
	if in.DraggedLessonID != "" {
		for i := range pctx.Lessons {
			if pctx.Lessons[i].ID == in.DraggedLessonID {
				dragged = &pctx.Lessons[i]
				break
			}
		}
		if dragged == nil {
			return TimeInterval{}, nil, fmt.Errorf("%w: %s", ErrDraggedLessonNotFound, in.DraggedLessonID)
		}
	}

	minute := 0
	duration := in.DefaultDuration

	switch in.Kind {
	case GestureClick:
		if dragged != nil {
			duration = dragged.Duration()
		}
	case GestureDrop:
		if dragged == nil {
			return TimeInterval{}, nil, fmt.Errorf("%w: drop requires dragged_lesson_id", ErrDraggedLessonNotFound)
		}
		duration = dragged.Duration()
		if in.PreserveMinuteOffset {
			minute = dragged.StartTime.Minute()
		}
	default:
		return TimeInterval{}, nil, fmt.Errorf("%w: %q", ErrUnknownGesture, in.Kind)
	}

	if duration <= 0 {
		return TimeInterval{}, nil, ErrNonPositiveDuration
	}

	y, m, d := in.Date.Date()
	start := time.Date(y, m, d, in.Hour, minute, 0, 0, in.Date.Location())
	candidate := TimeInterval{Start: start, End: start.Add(duration)}

	if denial := CheckAvailability(pctx.WorkingHours, start, ClockTimeOf(start), pctx.AllowWorkOnHolidays, pctx.CustomHolidays); denial != nil {
		return TimeInterval{}, denial, nil
	}

	if clash := FindConflict(candidate, pctx.Lessons, in.DraggedLessonID); clash != nil {
		return TimeInterval{}, &Denial{
			Reason:              DenialConflict,
			ConflictLessonID:    clash.ID,
			ConflictLessonTitle: clash.Title,
		}, nil
	}

	return candidate, nil, nil
}
