package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derslik/derslik-api/internal/models"
	"github.com/derslik/derslik-api/internal/scheduling"
)

type settingsRepoStub struct {
	settings *models.ScheduleSettings
	holidays []models.CustomHoliday
	nextID   int64
}

func (s *settingsRepoStub) Get(ctx context.Context) (*models.ScheduleSettings, error) {
	if s.settings == nil {
		return nil, sql.ErrNoRows
	}
	copy := *s.settings
	return &copy, nil
}

func (s *settingsRepoStub) Upsert(ctx context.Context, settings *models.ScheduleSettings) error {
	copy := *settings
	s.settings = &copy
	return nil
}

func (s *settingsRepoStub) ListCustomHolidays(ctx context.Context) ([]models.CustomHoliday, error) {
	return s.holidays, nil
}

func (s *settingsRepoStub) CreateCustomHoliday(ctx context.Context, holiday *models.CustomHoliday) error {
	s.nextID++
	holiday.ID = s.nextID
	s.holidays = append(s.holidays, *holiday)
	return nil
}

func (s *settingsRepoStub) DeleteCustomHoliday(ctx context.Context, id int64) error {
	for i, h := range s.holidays {
		if h.ID == id {
			s.holidays = append(s.holidays[:i], s.holidays[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func TestSettingsServiceGetFallsBackToDefaults(t *testing.T) {
	svc := NewSettingsService(&settingsRepoStub{}, nil, nil, nil)

	view, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 60, view.DefaultLessonMinutes)
	assert.False(t, view.AllowWorkOnHolidays)
	assert.True(t, view.WorkingHours[time.Monday].Enabled)
	assert.False(t, view.WorkingHours[time.Sunday].Enabled)
}

func TestSettingsServiceUpdateWorkingHoursRoundTrip(t *testing.T) {
	repo := &settingsRepoStub{}
	svc := NewSettingsService(repo, nil, nil, nil)

	hours := scheduling.DefaultWorkingHours()
	hours[time.Saturday].Enabled = false
	hours[time.Monday].EndOfDay = scheduling.ClockTime{Hour: 20}

	view, err := svc.UpdateWorkingHours(context.Background(), WorkingHoursUpdate{WorkingHours: hours})
	require.NoError(t, err)
	assert.False(t, view.WorkingHours[time.Saturday].Enabled)
	assert.Equal(t, 20, view.WorkingHours[time.Monday].EndOfDay.Hour)

	// the persisted JSON decodes back to the same shape
	var stored scheduling.WeeklyWorkingHours
	require.NoError(t, json.Unmarshal(repo.settings.WorkingHours, &stored))
	assert.Equal(t, hours, stored)
}

func TestSettingsServiceUpdateWorkingHoursRejectsInvertedDay(t *testing.T) {
	svc := NewSettingsService(&settingsRepoStub{}, nil, nil, nil)

	hours := scheduling.DefaultWorkingHours()
	hours[time.Monday].StartOfDay = scheduling.ClockTime{Hour: 18}
	hours[time.Monday].EndOfDay = scheduling.ClockTime{Hour: 9}

	_, err := svc.UpdateWorkingHours(context.Background(), WorkingHoursUpdate{WorkingHours: hours})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Monday")
}

func TestSettingsServiceUpdatePreferences(t *testing.T) {
	repo := &settingsRepoStub{}
	svc := NewSettingsService(repo, nil, nil, nil)

	view, err := svc.UpdatePreferences(context.Background(), PreferencesUpdate{AllowWorkOnHolidays: true, DefaultLessonMinutes: 90})
	require.NoError(t, err)
	assert.True(t, view.AllowWorkOnHolidays)
	assert.Equal(t, 90, view.DefaultLessonMinutes)

	allow, err := svc.AllowWorkOnHolidays(context.Background())
	require.NoError(t, err)
	assert.True(t, allow)

	duration, err := svc.DefaultLessonDuration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, duration)
}

func TestSettingsServiceUpdatePreferencesRejectsZeroDuration(t *testing.T) {
	svc := NewSettingsService(&settingsRepoStub{}, nil, nil, nil)

	_, err := svc.UpdatePreferences(context.Background(), PreferencesUpdate{DefaultLessonMinutes: 0})
	require.Error(t, err)
}

func TestSettingsServiceCustomHolidayLifecycle(t *testing.T) {
	repo := &settingsRepoStub{}
	svc := NewSettingsService(repo, nil, nil, nil)

	created, err := svc.CreateCustomHoliday(context.Background(), CustomHolidayRequest{
		Date:        time.Date(2024, 7, 1, 15, 30, 0, 0, time.UTC),
		Description: "Yaz tatili",
	})
	require.NoError(t, err)
	// the time component is dropped
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), created.Date)

	holidays, err := svc.ListCustomHolidays(context.Background())
	require.NoError(t, err)
	require.Len(t, holidays, 1)

	require.NoError(t, svc.DeleteCustomHoliday(context.Background(), created.ID))
	err = svc.DeleteCustomHoliday(context.Background(), created.ID)
	require.Error(t, err)
}

func TestSettingsServiceWorkingHoursTolerateCorruptRowAsError(t *testing.T) {
	repo := &settingsRepoStub{settings: &models.ScheduleSettings{WorkingHours: types.JSONText(`{broken`), DefaultLessonMinutes: 60}}
	svc := NewSettingsService(repo, nil, nil, nil)

	_, err := svc.Get(context.Background())
	require.Error(t, err)
}

func TestSettingsServiceWritesInvalidateCalendarCache(t *testing.T) {
	invalidator := &invalidatorStub{}
	svc := NewSettingsService(&settingsRepoStub{}, invalidator, nil, nil)

	_, err := svc.UpdatePreferences(context.Background(), PreferencesUpdate{DefaultLessonMinutes: 45})
	require.NoError(t, err)

	holiday, err := svc.CreateCustomHoliday(context.Background(), CustomHolidayRequest{
		Date:        time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Description: "Tatil",
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCustomHoliday(context.Background(), holiday.ID))

	assert.Equal(t, 3, invalidator.calls)
}

func TestSettingsServiceNationalHolidays(t *testing.T) {
	svc := NewSettingsService(&settingsRepoStub{}, nil, nil, nil)

	holidays := svc.NationalHolidays(2024)
	assert.Len(t, holidays, 14)

	// a year outside the movable table still yields the fixed dates
	assert.Len(t, svc.NationalHolidays(2035), 7)
}
