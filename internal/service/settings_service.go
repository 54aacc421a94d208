package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/derslik/derslik-api/internal/models"
	"github.com/derslik/derslik-api/internal/scheduling"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.ScheduleSettings, error)
	Upsert(ctx context.Context, settings *models.ScheduleSettings) error
	ListCustomHolidays(ctx context.Context) ([]models.CustomHoliday, error)
	CreateCustomHoliday(ctx context.Context, holiday *models.CustomHoliday) error
	DeleteCustomHoliday(ctx context.Context, id int64) error
}

// WorkingHoursUpdate is the payload for replacing the weekly working hours.
type WorkingHoursUpdate struct {
	WorkingHours scheduling.WeeklyWorkingHours `json:"working_hours"`
}

// PreferencesUpdate is the payload for the scalar planner preferences.
type PreferencesUpdate struct {
	AllowWorkOnHolidays  bool `json:"allow_work_on_holidays"`
	DefaultLessonMinutes int  `json:"default_lesson_minutes" validate:"required,gt=0,lte=720"`
}

// CustomHolidayRequest creates a user-defined non-working date.
type CustomHolidayRequest struct {
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description" validate:"required,max=200"`
}

// ScheduleSettingsView is the decoded settings shape returned to clients.
type ScheduleSettingsView struct {
	WorkingHours         scheduling.WeeklyWorkingHours `json:"working_hours"`
	AllowWorkOnHolidays  bool                          `json:"allow_work_on_holidays"`
	DefaultLessonMinutes int                           `json:"default_lesson_minutes"`
	UpdatedAt            time.Time                     `json:"updated_at"`
}

// SettingsService owns the planner configuration: weekly working hours, the
// holiday override, the default lesson length and custom holidays. It also
// feeds the placement checks, falling back to defaults until the first save.
type SettingsService struct {
	repo        settingsRepository
	invalidator calendarInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSettingsService constructs a SettingsService. The invalidator is called
// after every settings write because cached calendar views embed availability.
func NewSettingsService(repo settingsRepository, invalidator calendarInvalidator, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SettingsService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// AttachCalendarInvalidator wires the calendar cache invalidation after both
// services exist. Settings feed the calendar and the calendar cache depends
// on settings, so one side is attached late.
func (s *SettingsService) AttachCalendarInvalidator(invalidator calendarInvalidator) {
	s.invalidator = invalidator
}

// Get returns the decoded settings, defaults included when nothing was saved
// yet.
func (s *SettingsService) Get(ctx context.Context) (*ScheduleSettingsView, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	hours, err := decodeWorkingHours(stored.WorkingHours)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored working hours are corrupt")
	}

	return &ScheduleSettingsView{
		WorkingHours:         hours,
		AllowWorkOnHolidays:  stored.AllowWorkOnHolidays,
		DefaultLessonMinutes: stored.DefaultLessonMinutes,
		UpdatedAt:            stored.UpdatedAt,
	}, nil
}

// UpdateWorkingHours replaces the weekly working hours. Each enabled day must
// close after it opens.
func (s *SettingsService) UpdateWorkingHours(ctx context.Context, req WorkingHoursUpdate) (*ScheduleSettingsView, error) {
	for i, day := range req.WorkingHours {
		if day.Enabled && !day.StartOfDay.Before(day.EndOfDay) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "working hours must end after they start on "+time.Weekday(i).String())
		}
	}

	stored, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(req.WorkingHours)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode working hours")
	}
	stored.WorkingHours = types.JSONText(encoded)

	if err := s.repo.Upsert(ctx, stored); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save working hours")
	}
	s.invalidate(ctx)
	return s.Get(ctx)
}

// UpdatePreferences replaces the scalar preferences.
func (s *SettingsService) UpdatePreferences(ctx context.Context, req PreferencesUpdate) (*ScheduleSettingsView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferences payload")
	}

	stored, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	stored.AllowWorkOnHolidays = req.AllowWorkOnHolidays
	stored.DefaultLessonMinutes = req.DefaultLessonMinutes

	if err := s.repo.Upsert(ctx, stored); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save preferences")
	}
	s.invalidate(ctx)
	return s.Get(ctx)
}

// ListCustomHolidays returns the user-defined holidays.
func (s *SettingsService) ListCustomHolidays(ctx context.Context) ([]models.CustomHoliday, error) {
	holidays, err := s.repo.ListCustomHolidays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list custom holidays")
	}
	return holidays, nil
}

// CreateCustomHoliday adds a user-defined holiday.
func (s *SettingsService) CreateCustomHoliday(ctx context.Context, req CustomHolidayRequest) (*models.CustomHoliday, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday payload")
	}

	holiday := &models.CustomHoliday{
		Date:        time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location()),
		Description: req.Description,
	}
	if err := s.repo.CreateCustomHoliday(ctx, holiday); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create custom holiday")
	}
	s.invalidate(ctx)
	return holiday, nil
}

// DeleteCustomHoliday removes a user-defined holiday.
func (s *SettingsService) DeleteCustomHoliday(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCustomHoliday(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "custom holiday not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete custom holiday")
	}
	s.invalidate(ctx)
	return nil
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateCalendar(ctx); err != nil {
		s.logger.Warn("failed to invalidate calendar cache", zap.Error(err))
	}
}

// NationalHolidays returns the precomputed national holidays for a year.
func (s *SettingsService) NationalHolidays(year int) []scheduling.DatedHoliday {
	return scheduling.NationalHolidaysForYear(year)
}

// WorkingHours implements the schedule context used by placements.
func (s *SettingsService) WorkingHours(ctx context.Context) (scheduling.WeeklyWorkingHours, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return scheduling.WeeklyWorkingHours{}, err
	}
	return decodeWorkingHours(stored.WorkingHours)
}

// AllowWorkOnHolidays implements the schedule context used by placements.
func (s *SettingsService) AllowWorkOnHolidays(ctx context.Context) (bool, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return stored.AllowWorkOnHolidays, nil
}

// DefaultLessonDuration implements the schedule context used by placements.
func (s *SettingsService) DefaultLessonDuration(ctx context.Context) (time.Duration, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return time.Duration(stored.DefaultLessonMinutes) * time.Minute, nil
}

// CustomHolidays implements the schedule context used by placements.
func (s *SettingsService) CustomHolidays(ctx context.Context) ([]models.CustomHoliday, error) {
	return s.repo.ListCustomHolidays(ctx)
}

func (s *SettingsService) load(ctx context.Context) (*models.ScheduleSettings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultSettings(), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return stored, nil
}

func decodeWorkingHours(raw types.JSONText) (scheduling.WeeklyWorkingHours, error) {
	if len(raw) == 0 {
		return scheduling.DefaultWorkingHours(), nil
	}
	var hours scheduling.WeeklyWorkingHours
	if err := json.Unmarshal(raw, &hours); err != nil {
		return scheduling.WeeklyWorkingHours{}, err
	}
	return hours, nil
}

func defaultSettings() *models.ScheduleSettings {
	encoded, _ := json.Marshal(scheduling.DefaultWorkingHours())
	return &models.ScheduleSettings{
		WorkingHours:         types.JSONText(encoded),
		AllowWorkOnHolidays:  false,
		DefaultLessonMinutes: 60,
	}
}
