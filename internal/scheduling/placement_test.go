package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derslik/derslik-api/internal/models"
)

func weekdayContext(lessons ...models.Lesson) PlacementContext {
	var hours WeeklyWorkingHours
	for d := time.Monday; d <= time.Friday; d++ {
		hours[d] = WeekdaySettings{StartOfDay: ClockTime{Hour: 9}, EndOfDay: ClockTime{Hour: 17}, Enabled: true}
	}
	return PlacementContext{Lessons: lessons, WorkingHours: hours}
}

func TestResolvePlacementClickApproved(t *testing.T) {
	in := PlacementInput{
		Kind:            GestureClick,
		Date:            at(2024, 3, 4, 0, 0),
		Hour:            10,
		DefaultDuration: time.Hour,
	}

	interval, denial, err := ResolvePlacement(in, weekdayContext())
	require.NoError(t, err)
	require.Nil(t, denial)
	assert.Equal(t, at(2024, 3, 4, 10, 0), interval.Start)
	assert.Equal(t, at(2024, 3, 4, 11, 0), interval.End)
}

func TestResolvePlacementClickConflict(t *testing.T) {
	existing := models.Lesson{
		ID:        "l1",
		Title:     "Ali - Math",
		StartTime: at(2024, 3, 4, 10, 0),
		EndTime:   at(2024, 3, 4, 11, 0),
	}
	in := PlacementInput{
		Kind:            GestureClick,
		Date:            at(2024, 3, 4, 0, 0),
		Hour:            10,
		DefaultDuration: time.Hour,
	}
	// Half past collides with [10:00, 11:00).
	in.Hour = 10
	ctx := weekdayContext(existing)

	_, denial, err := ResolvePlacement(in, ctx)
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, DenialConflict, denial.Reason)
	assert.Equal(t, "l1", denial.ConflictLessonID)
	assert.Equal(t, "Ali - Math", denial.ConflictLessonTitle)
}

func TestResolvePlacementClickOnDisabledSunday(t *testing.T) {
	in := PlacementInput{
		Kind:            GestureClick,
		Date:            at(2024, 3, 10, 0, 0), // Sunday
		Hour:            11,
		DefaultDuration: time.Hour,
	}

	_, denial, err := ResolvePlacement(in, weekdayContext())
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, DenialDayDisabled, denial.Reason)
}

func TestResolvePlacementClickOnHoliday(t *testing.T) {
	in := PlacementInput{
		Kind:            GestureClick,
		Date:            at(2024, 4, 23, 0, 0), // Tuesday, national holiday
		Hour:            10,
		DefaultDuration: time.Hour,
	}

	_, denial, err := ResolvePlacement(in, weekdayContext())
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, DenialHoliday, denial.Reason)
	assert.Equal(t, "Ulusal Egemenlik ve Çocuk Bayramı", denial.HolidayName)
}

func TestResolvePlacementAvailabilityShortCircuitsConflict(t *testing.T) {
	// The target Sunday also holds an existing lesson; availability is the
	// cheaper check and must produce the single reported reason.
	existing := models.Lesson{
		ID:        "l1",
		Title:     "Sunday lesson",
		StartTime: at(2024, 3, 10, 11, 0),
		EndTime:   at(2024, 3, 10, 12, 0),
	}
	in := PlacementInput{
		Kind:            GestureClick,
		Date:            at(2024, 3, 10, 0, 0),
		Hour:            11,
		DefaultDuration: time.Hour,
	}

	_, denial, err := ResolvePlacement(in, weekdayContext(existing))
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, DenialDayDisabled, denial.Reason)
}

func TestResolvePlacementDropPreservesMinuteOffset(t *testing.T) {
	dragged := models.Lesson{
		ID:        "l1",
		Title:     "Ali - Math",
		StartTime: at(2024, 3, 4, 10, 30),
		EndTime:   at(2024, 3, 4, 11, 15),
	}
	in := PlacementInput{
		Kind:                 GestureDrop,
		Date:                 at(2024, 3, 6, 0, 0),
		Hour:                 14,
		DraggedLessonID:      "l1",
		PreserveMinuteOffset: true,
	}

	interval, denial, err := ResolvePlacement(in, weekdayContext(dragged))
	require.NoError(t, err)
	require.Nil(t, denial)
	assert.Equal(t, at(2024, 3, 6, 14, 30), interval.Start, "week-view drops keep the original minute")
	assert.Equal(t, at(2024, 3, 6, 15, 15), interval.End, "dragged duration is preserved")
}

func TestResolvePlacementDropSnapsToHour(t *testing.T) {
	dragged := models.Lesson{
		ID:        "l1",
		Title:     "Ali - Math",
		StartTime: at(2024, 3, 4, 10, 30),
		EndTime:   at(2024, 3, 4, 11, 30),
	}
	in := PlacementInput{
		Kind:            GestureDrop,
		Date:            at(2024, 3, 6, 0, 0),
		Hour:            14,
		DraggedLessonID: "l1",
	}

	interval, denial, err := ResolvePlacement(in, weekdayContext(dragged))
	require.NoError(t, err)
	require.Nil(t, denial)
	assert.Equal(t, at(2024, 3, 6, 14, 0), interval.Start, "month-view drops snap to the plain hour")
}

func TestResolvePlacementDropIgnoresOwnSlot(t *testing.T) {
	dragged := models.Lesson{
		ID:        "l1",
		Title:     "Ali - Math",
		StartTime: at(2024, 3, 4, 10, 0),
		EndTime:   at(2024, 3, 4, 11, 0),
	}
	in := PlacementInput{
		Kind:            GestureDrop,
		Date:            at(2024, 3, 4, 0, 0),
		Hour:            10,
		DraggedLessonID: "l1",
	}

	// Dropping a lesson back onto its own slot is not a conflict.
	interval, denial, err := ResolvePlacement(in, weekdayContext(dragged))
	require.NoError(t, err)
	require.Nil(t, denial)
	assert.Equal(t, dragged.StartTime, interval.Start)
}

func TestResolvePlacementClickReusesEditedLessonDuration(t *testing.T) {
	edited := models.Lesson{
		ID:        "l1",
		Title:     "Ali - Math",
		StartTime: at(2024, 3, 4, 10, 0),
		EndTime:   at(2024, 3, 4, 12, 0),
	}
	in := PlacementInput{
		Kind:            GestureClick,
		Date:            at(2024, 3, 5, 0, 0),
		Hour:            9,
		DraggedLessonID: "l1",
		DefaultDuration: time.Hour,
	}

	interval, denial, err := ResolvePlacement(in, weekdayContext(edited))
	require.NoError(t, err)
	require.Nil(t, denial)
	assert.Equal(t, 2*time.Hour, interval.Duration(), "edits keep the lesson's own duration over the default")
}

func TestResolvePlacementMalformedInput(t *testing.T) {
	t.Run("drop without dragged lesson", func(t *testing.T) {
		in := PlacementInput{Kind: GestureDrop, Date: at(2024, 3, 4, 0, 0), Hour: 10}
		_, _, err := ResolvePlacement(in, weekdayContext())
		require.ErrorIs(t, err, ErrDraggedLessonNotFound)
	})

	t.Run("dragged lesson missing from snapshot", func(t *testing.T) {
		in := PlacementInput{Kind: GestureDrop, Date: at(2024, 3, 4, 0, 0), Hour: 10, DraggedLessonID: "ghost"}
		_, _, err := ResolvePlacement(in, weekdayContext())
		require.ErrorIs(t, err, ErrDraggedLessonNotFound)
	})

	t.Run("unknown gesture", func(t *testing.T) {
		in := PlacementInput{Kind: GestureKind("hover"), Date: at(2024, 3, 4, 0, 0), Hour: 10, DefaultDuration: time.Hour}
		_, _, err := ResolvePlacement(in, weekdayContext())
		require.ErrorIs(t, err, ErrUnknownGesture)
	})

	t.Run("click without duration", func(t *testing.T) {
		in := PlacementInput{Kind: GestureClick, Date: at(2024, 3, 4, 0, 0), Hour: 10}
		_, _, err := ResolvePlacement(in, weekdayContext())
		require.ErrorIs(t, err, ErrNonPositiveDuration)
	})
}
