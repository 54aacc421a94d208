package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derslik/derslik-api/internal/models"
)

func baseLesson() models.Lesson {
	return models.Lesson{
		ID:        "head",
		Title:     "Ali - Math",
		StartTime: at(2024, 1, 1, 9, 0),
		EndTime:   at(2024, 1, 1, 10, 0),
	}
}

func TestExpandSeriesCountLaw(t *testing.T) {
	pattern := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, Count: 5}

	instances, err := ExpandSeries(baseLesson(), pattern, 0)
	require.NoError(t, err)
	require.Len(t, instances, 5)

	for i, inst := range instances {
		assert.Equal(t, at(2024, 1, 1, 9, 0).AddDate(0, 0, 7*i), inst.StartTime, "instance %d", i)
	}
}

func TestExpandSeriesBiweeklyScenario(t *testing.T) {
	pattern := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 2, Count: 4}

	instances, err := ExpandSeries(baseLesson(), pattern, 0)
	require.NoError(t, err)
	require.Len(t, instances, 4)

	wantStarts := []time.Time{
		at(2024, 1, 1, 9, 0),
		at(2024, 1, 15, 9, 0),
		at(2024, 1, 29, 9, 0),
		at(2024, 2, 12, 9, 0),
	}
	for i, inst := range instances {
		assert.Equal(t, wantStarts[i], inst.StartTime)
		assert.Equal(t, wantStarts[i].Add(time.Hour), inst.EndTime)
	}
}

func TestExpandSeriesDurationInvariant(t *testing.T) {
	base := baseLesson()
	base.EndTime = base.StartTime.Add(90 * time.Minute)
	pattern := RecurrencePattern{Frequency: FrequencyMonthly, Interval: 1, Count: 12}

	instances, err := ExpandSeries(base, pattern, 0)
	require.NoError(t, err)
	require.Len(t, instances, 12)
	for _, inst := range instances {
		assert.Equal(t, 90*time.Minute, inst.Duration(), "duration must survive month-length changes")
	}
}

func TestExpandSeriesMonthlyNormalization(t *testing.T) {
	base := baseLesson()
	base.StartTime = at(2024, 1, 31, 9, 0)
	base.EndTime = at(2024, 1, 31, 10, 0)
	pattern := RecurrencePattern{Frequency: FrequencyMonthly, Interval: 1, Count: 3}

	instances, err := ExpandSeries(base, pattern, 0)
	require.NoError(t, err)
	require.Len(t, instances, 3)
	// Jan 31 + 1 month normalizes past February's end (2024 is a leap year).
	assert.Equal(t, at(2024, 3, 2, 9, 0), instances[1].StartTime)
	assert.Equal(t, at(2024, 3, 31, 9, 0), instances[2].StartTime)
}

func TestExpandSeriesDaily(t *testing.T) {
	pattern := RecurrencePattern{Frequency: FrequencyDaily, Interval: 3, Count: 3}

	instances, err := ExpandSeries(baseLesson(), pattern, 0)
	require.NoError(t, err)
	assert.Equal(t, at(2024, 1, 4, 9, 0), instances[1].StartTime)
	assert.Equal(t, at(2024, 1, 7, 9, 0), instances[2].StartTime)
}

func TestExpandSeriesUntilDate(t *testing.T) {
	until := at(2024, 1, 22, 0, 0)
	pattern := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, Until: &until}

	instances, err := ExpandSeries(baseLesson(), pattern, 0)
	require.NoError(t, err)
	// Jan 1, 8, 15, 22 qualify; Jan 29 exceeds the until date.
	require.Len(t, instances, 4)
	assert.Equal(t, at(2024, 1, 22, 9, 0), instances[3].StartTime)
}

func TestExpandSeriesUntilDateInclusiveOfBoundary(t *testing.T) {
	// An until date equal to an instance's start date keeps that instance,
	// whatever its start time.
	until := at(2024, 1, 8, 0, 0)
	pattern := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, Until: &until}

	instances, err := ExpandSeries(baseLesson(), pattern, 0)
	require.NoError(t, err)
	require.Len(t, instances, 2)
}

func TestExpandSeriesSeriesIdentity(t *testing.T) {
	pattern := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, Count: 3}

	instances, err := ExpandSeries(baseLesson(), pattern, 0)
	require.NoError(t, err)
	require.Len(t, instances, 3)

	head := instances[0]
	assert.Equal(t, "head", head.ID)
	require.NotNil(t, head.SeriesID)
	assert.Equal(t, head.ID, *head.SeriesID, "the head carries its own id as the series id")
	assert.Equal(t, 1, head.SequenceNumber)

	for i, inst := range instances[1:] {
		require.NotNil(t, inst.SeriesID)
		assert.Equal(t, head.ID, *inst.SeriesID, "tail instances share the head's id")
		assert.NotEqual(t, head.ID, inst.ID)
		assert.Equal(t, i+2, inst.SequenceNumber)
	}
}

func TestExpandSeriesGeneratesHeadID(t *testing.T) {
	base := baseLesson()
	base.ID = ""
	pattern := RecurrencePattern{Frequency: FrequencyDaily, Interval: 1, Count: 2}

	instances, err := ExpandSeries(base, pattern, 0)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.NotEmpty(t, instances[0].ID)
	assert.Equal(t, instances[0].ID, *instances[0].SeriesID)
	assert.Equal(t, instances[0].ID, *instances[1].SeriesID)
}

func TestExpandSeriesUnboundedRequiresCap(t *testing.T) {
	pattern := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1}

	_, err := ExpandSeries(baseLesson(), pattern, 0)
	require.ErrorIs(t, err, ErrUnboundedPattern)

	instances, err := ExpandSeries(baseLesson(), pattern, 10)
	require.NoError(t, err)
	assert.Len(t, instances, 10, "a capped never-ending pattern yields exactly the cap")
}

func TestExpandSeriesRejectsOversizedCount(t *testing.T) {
	pattern := RecurrencePattern{Frequency: FrequencyDaily, Interval: 1, Count: MaxSeriesInstances + 1}

	_, err := ExpandSeries(baseLesson(), pattern, 0)
	require.ErrorIs(t, err, ErrSeriesTooLarge)
}

func TestExpandSeriesRejectsOversizedUntil(t *testing.T) {
	until := at(2100, 1, 1, 0, 0)
	pattern := RecurrencePattern{Frequency: FrequencyDaily, Interval: 1, Until: &until}

	_, err := ExpandSeries(baseLesson(), pattern, 0)
	require.ErrorIs(t, err, ErrSeriesTooLarge)
}

func TestExpandSeriesMalformedPatterns(t *testing.T) {
	until := at(2024, 6, 1, 0, 0)
	cases := []struct {
		name    string
		pattern RecurrencePattern
		wantErr error
	}{
		{"zero interval", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 0, Count: 3}, ErrInvalidRecurrenceInterval},
		{"negative interval", RecurrencePattern{Frequency: FrequencyWeekly, Interval: -1, Count: 3}, ErrInvalidRecurrenceInterval},
		{"unknown frequency", RecurrencePattern{Frequency: "yearly", Interval: 1, Count: 3}, ErrInvalidFrequency},
		{"both end conditions", RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, Count: 3, Until: &until}, ErrAmbiguousEnd},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExpandSeries(baseLesson(), tc.pattern, 0)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestExpandSeriesRejectsZeroDurationBase(t *testing.T) {
	base := baseLesson()
	base.EndTime = base.StartTime
	pattern := RecurrencePattern{Frequency: FrequencyWeekly, Interval: 1, Count: 2}

	_, err := ExpandSeries(base, pattern, 0)
	require.ErrorIs(t, err, ErrInvalidInterval)
}
