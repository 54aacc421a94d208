package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derslik/derslik-api/internal/models"
)

func seriesLessons(starts []time.Time) []models.Lesson {
	seriesID := "series-1"
	lessons := make([]models.Lesson, 0, len(starts))
	for i, start := range starts {
		id := "l1"
		if i > 0 {
			id = "l" + string(rune('1'+i))
		}
		lessons = append(lessons, models.Lesson{
			ID:             id,
			Title:          "Ali - Math",
			StartTime:      start,
			EndTime:        start.Add(time.Hour),
			SeriesID:       &seriesID,
			SequenceNumber: i + 1,
		})
	}
	return lessons
}

func TestFeedCollapsesRegularWeeklySeries(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	lessons := seriesLessons([]time.Time{base, base.AddDate(0, 0, 14), base.AddDate(0, 0, 28)})

	payload, err := NewICSExporter().Feed(lessons, "Lessons")
	require.NoError(t, err)

	body := string(payload)
	assert.Contains(t, body, "RRULE:FREQ=WEEKLY;INTERVAL=2;COUNT=3")
	assert.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "SUMMARY:Ali - Math")
	assert.Contains(t, body, "X-WR-CALNAME:Lessons")
}

func TestFeedFallsBackWhenInstanceMoved(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	lessons := seriesLessons([]time.Time{base, base.AddDate(0, 0, 7), base.AddDate(0, 0, 15)})

	payload, err := NewICSExporter().Feed(lessons, "")
	require.NoError(t, err)

	body := string(payload)
	assert.Equal(t, 3, strings.Count(body, "BEGIN:VEVENT"))
	assert.NotContains(t, body, "RRULE")
}

func TestFeedSingleLessons(t *testing.T) {
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	desc := "Algebra prep"
	lessons := []models.Lesson{{ID: "l1", Title: "Deniz - Physics", Description: &desc, StartTime: start, EndTime: start.Add(90 * time.Minute)}}

	payload, err := NewICSExporter().Feed(lessons, "Lessons")
	require.NoError(t, err)

	body := string(payload)
	assert.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "DESCRIPTION:Algebra prep")
	assert.NotContains(t, body, "RRULE")
}

func TestFeedCollapsesMonthlySeries(t *testing.T) {
	base := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	lessons := seriesLessons([]time.Time{base, base.AddDate(0, 1, 0), base.AddDate(0, 2, 0)})

	payload, err := NewICSExporter().Feed(lessons, "Lessons")
	require.NoError(t, err)

	assert.Contains(t, string(payload), "RRULE:FREQ=MONTHLY;INTERVAL=1;COUNT=3")
}
