package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derslik/derslik-api/internal/models"
)

func newSettingsMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	rows := sqlmock.NewRows([]string{"id", "working_hours", "allow_work_on_holidays", "default_lesson_minutes", "updated_at"}).
		AddRow(int16(1), []byte(`[]`), false, 60, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, working_hours, allow_work_on_holidays, default_lesson_minutes, updated_at FROM schedule_settings WHERE id = 1")).
		WillReturnRows(rows)

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 60, settings.DefaultLessonMinutes)
	assert.False(t, settings.AllowWorkOnHolidays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryGetNoRow(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("SELECT id, working_hours").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSettingsRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("INSERT INTO schedule_settings").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	settings := &models.ScheduleSettings{WorkingHours: types.JSONText(`[]`), DefaultLessonMinutes: 90}
	require.NoError(t, repo.Upsert(context.Background(), settings))
	assert.Equal(t, int16(1), settings.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryCustomHolidays(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	rows := sqlmock.NewRows([]string{"id", "holiday_date", "description", "created_at"}).
		AddRow(int64(1), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), "Tatil", time.Now())
	mock.ExpectQuery("SELECT id, holiday_date, description, created_at FROM custom_holidays ORDER BY holiday_date").
		WillReturnRows(rows)

	holidays, err := repo.ListCustomHolidays(context.Background())
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Tatil", holidays[0].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryDeleteCustomHolidayMissing(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("DELETE FROM custom_holidays").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteCustomHoliday(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
