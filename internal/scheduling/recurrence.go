package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/derslik/derslik-api/internal/models"
)

// Frequency enumerates supported recurrence step units.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// MaxSeriesInstances is the hard ceiling on series expansion. Ten years of
// weekly lessons; anything larger is a malformed request, not a schedule.
const MaxSeriesInstances = 520

var (
	// ErrInvalidFrequency indicates an unsupported frequency value.
	ErrInvalidFrequency = errors.New("scheduling: invalid recurrence frequency")
	// ErrInvalidRecurrenceInterval indicates a non-positive step multiplier.
	ErrInvalidRecurrenceInterval = errors.New("scheduling: recurrence interval must be positive")
	// ErrAmbiguousEnd indicates both an until date and a count were supplied.
	ErrAmbiguousEnd = errors.New("scheduling: recurrence pattern may set until or count, not both")
	// ErrUnboundedPattern indicates a never-ending pattern expanded without a cap.
	ErrUnboundedPattern = errors.New("scheduling: unbounded recurrence requires an explicit instance cap")
	// ErrSeriesTooLarge indicates the expansion would exceed the hard ceiling.
	ErrSeriesTooLarge = fmt.Errorf("scheduling: series would exceed %d instances", MaxSeriesInstances)
)

// RecurrencePattern describes how a base lesson repeats. At most one end
// condition is active: Until (last admissible start date), Count (exact
// number of instances), or neither for a never-ending pattern that the
// caller must cap at expansion time.
type RecurrencePattern struct {
	Frequency Frequency  `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Interval  int        `json:"interval" validate:"required,min=1"`
	Until     *time.Time `json:"until,omitempty"`
	Count     int        `json:"count,omitempty" validate:"omitempty,min=1"`
}

// Unbounded reports whether the pattern has no end condition of its own.
func (p RecurrencePattern) Unbounded() bool {
	return p.Until == nil && p.Count == 0
}

// Validate rejects malformed patterns. A bad pattern is a programmer error
// upstream, not a domain denial.
func (p RecurrencePattern) Validate() error {
	switch p.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, p.Frequency)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRecurrenceInterval, p.Interval)
	}
	if p.Until != nil && p.Count > 0 {
		return ErrAmbiguousEnd
	}
	return nil
}

// ExpandSeries materializes the ordered lesson instances of a recurring
// series starting at the base lesson's slot.
//
// Every instance, the head included, carries the shared series id, which
// equals the head instance's own id; sequence numbers start at 1. Instance
// i's start advances by i*Interval frequency units from the base start, and
// its end is recomputed as start plus the base duration so the lesson length
// never drifts across month-length changes. Monthly steps follow AddDate
// normalization (Jan 31 + 1 month lands in early March).
//
// maxInstances caps the expansion; zero or negative means "no caller cap",
// which is only legal for patterns carrying their own end condition. The
// hard MaxSeriesInstances ceiling applies regardless and is enforced by
// rejection, never by silent truncation.
func ExpandSeries(base models.Lesson, pattern RecurrencePattern, maxInstances int) ([]models.Lesson, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	duration := base.Duration()
	if duration <= 0 {
		return nil, fmt.Errorf("%w: start=%s end=%s", ErrInvalidInterval, base.StartTime, base.EndTime)
	}

	limit := MaxSeriesInstances
	if maxInstances > 0 && maxInstances < limit {
		limit = maxInstances
	}
	if pattern.Unbounded() && maxInstances <= 0 {
		return nil, ErrUnboundedPattern
	}
	if pattern.Count > limit {
		return nil, ErrSeriesTooLarge
	}

	headID := base.ID
	if headID == "" {
		headID = uuid.NewString()
	}
	var untilDate time.Time
	if pattern.Until != nil {
		untilDate = startOfDay(*pattern.Until)
	}

	var instances []models.Lesson
	for i := 0; ; i++ {
		if pattern.Count > 0 && i == pattern.Count {
			break
		}
		if pattern.Unbounded() && i == limit {
			break
		}

		start := advance(base.StartTime, pattern.Frequency, pattern.Interval*i)
		if pattern.Until != nil && startOfDay(start).After(untilDate) {
			break
		}
		if i == limit {
			return nil, ErrSeriesTooLarge
		}

		instance := base
		instance.ID = headID
		if i > 0 {
			instance.ID = uuid.NewString()
		}
		instance.StartTime = start
		instance.EndTime = start.Add(duration)
		instance.SeriesID = &headID
		instance.SequenceNumber = i + 1
		instances = append(instances, instance)
	}

	return instances, nil
}

func advance(t time.Time, freq Frequency, steps int) time.Time {
	switch freq {
	case FrequencyDaily:
		return t.AddDate(0, 0, steps)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7*steps)
	default:
		return t.AddDate(0, steps, 0)
	}
}
