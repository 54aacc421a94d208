package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derslik/derslik-api/internal/models"
)

func newLessonMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func lessonRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "student_id", "start_time", "end_time", "series_id", "sequence_number", "created_at", "updated_at"})
}

func TestLessonRepositoryListRange(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	rows := lessonRows().
		AddRow("l1", "Math", nil, nil, from.Add(9*time.Hour), from.Add(10*time.Hour), nil, 0, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, title, description, student_id, start_time, end_time, series_id, sequence_number, created_at, updated_at\nFROM lessons WHERE end_time > \\$1 AND start_time < \\$2").
		WithArgs(from, to).
		WillReturnRows(rows)

	lessons, err := repo.ListRange(context.Background(), from, to)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
	assert.Equal(t, "Math", lessons[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListFiltersBySeries(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "description", "student_id", "start_time", "end_time", "series_id", "sequence_number", "created_at", "updated_at", "student_name"}).
		AddRow("l1", "Math", nil, "st1", time.Now(), time.Now(), "series-1", 1, time.Now(), time.Now(), "Ali")
	mock.ExpectQuery("SELECT l.id, .* FROM lessons l LEFT JOIN students s ON s.id = l.student_id").
		WithArgs("series-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lessons l")).
		WithArgs("series-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.LessonFilter{SeriesID: "series-1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	lesson := &models.Lesson{Title: "Math", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}
	err := repo.Create(context.Background(), lesson)
	require.NoError(t, err)
	assert.NotEmpty(t, lesson.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryBulkCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	lessons := []models.Lesson{
		{Title: "Math", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)},
		{Title: "Math", StartTime: time.Now().AddDate(0, 0, 7), EndTime: time.Now().AddDate(0, 0, 7).Add(time.Hour)},
	}
	err := repo.BulkCreate(context.Background(), lessons)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryBulkCreateCommits(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO lessons").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	lessons := []models.Lesson{
		{Title: "Math", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)},
		{Title: "Math", StartTime: time.Now().AddDate(0, 0, 7), EndTime: time.Now().AddDate(0, 0, 7).Add(time.Hour)},
	}
	require.NoError(t, repo.BulkCreate(context.Background(), lessons))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryDeleteSeries(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("DELETE FROM lessons WHERE series_id").
		WithArgs("series-1").
		WillReturnResult(sqlmock.NewResult(0, 8))

	count, err := repo.DeleteSeries(context.Background(), "series-1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
