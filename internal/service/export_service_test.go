package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derslik/derslik-api/internal/models"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
)

func TestExportScheduleCSV(t *testing.T) {
	seriesID := "series-1"
	student := "Ayse"
	repo := &upcomingRepoStub{lessons: []models.LessonDetail{
		{
			Lesson: models.Lesson{
				ID:             "l1",
				Title:          "Physics",
				StartTime:      time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
				EndTime:        time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC),
				SeriesID:       &seriesID,
				SequenceNumber: 2,
			},
			StudentName: &student,
		},
		{
			Lesson: models.Lesson{
				ID:        "l2",
				Title:     "Maths",
				StartTime: time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
				EndTime:   time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
			},
		},
	}}
	svc := NewExportService(repo, nil, nil, nil)

	result, err := svc.Schedule(context.Background(), ExportFormatCSV,
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "schedule_"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Start,End,Title,Student,Series", lines[0])
	assert.Equal(t, "2024-03-04,10:00,11:00,Physics,Ayse,series-1 #2", lines[1])
	assert.Equal(t, "2024-03-05,09:30,10:30,Maths,,", lines[2])
}

func TestExportSchedulePDF(t *testing.T) {
	repo := &upcomingRepoStub{lessons: []models.LessonDetail{
		{Lesson: models.Lesson{
			ID:        "l1",
			Title:     "Physics",
			StartTime: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC),
		}},
	}}
	svc := NewExportService(repo, nil, nil, nil)

	result, err := svc.Schedule(context.Background(), ExportFormatPDF,
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportScheduleRejectsInvertedRange(t *testing.T) {
	svc := NewExportService(&upcomingRepoStub{}, nil, nil, nil)

	from := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	_, err := svc.Schedule(context.Background(), ExportFormatCSV, from, from)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))
}

func TestExportScheduleUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&upcomingRepoStub{}, nil, nil, nil)

	_, err := svc.Schedule(context.Background(), ExportFormat("xlsx"),
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))
}
