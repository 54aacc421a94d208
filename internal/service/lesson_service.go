package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/derslik/derslik-api/internal/models"
	"github.com/derslik/derslik-api/internal/scheduling"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
)

type lessonRepository interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, int, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.Lesson, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	ListBySeries(ctx context.Context, seriesID string) ([]models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	BulkCreate(ctx context.Context, lessons []models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
	DeleteSeries(ctx context.Context, seriesID string) (int64, error)
}

// scheduleContextProvider supplies the planner settings a placement decision
// needs. Implemented by SettingsService.
type scheduleContextProvider interface {
	WorkingHours(ctx context.Context) (scheduling.WeeklyWorkingHours, error)
	AllowWorkOnHolidays(ctx context.Context) (bool, error)
	DefaultLessonDuration(ctx context.Context) (time.Duration, error)
	CustomHolidays(ctx context.Context) ([]models.CustomHoliday, error)
}

// calendarInvalidator drops cached calendar payloads after lesson mutations.
type calendarInvalidator interface {
	InvalidateCalendar(ctx context.Context) error
}

// placementObserver records placement outcomes for metrics.
type placementObserver interface {
	ObservePlacementDenial(reason string)
}

// LessonService owns lesson scheduling: single lessons, recurring series,
// moves and gesture resolution. Every write runs through the availability
// and conflict checks before it touches the database.
type LessonService struct {
	repo               lessonRepository
	settings           scheduleContextProvider
	invalidator        calendarInvalidator
	observer           placementObserver
	validator          *validator.Validate
	logger             *zap.Logger
	maxSeriesInstances int
}

// NewLessonService constructs a LessonService.
func NewLessonService(repo lessonRepository, settings scheduleContextProvider, invalidator calendarInvalidator, observer placementObserver, validate *validator.Validate, logger *zap.Logger, maxSeriesInstances int) *LessonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if maxSeriesInstances <= 0 || maxSeriesInstances > scheduling.MaxSeriesInstances {
		maxSeriesInstances = scheduling.MaxSeriesInstances
	}
	return &LessonService{
		repo:               repo,
		settings:           settings,
		invalidator:        invalidator,
		observer:           observer,
		validator:          validate,
		logger:             logger,
		maxSeriesInstances: maxSeriesInstances,
	}
}

// List returns lessons with pagination metadata.
func (s *LessonService) List(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, *models.Pagination, error) {
	lessons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	return lessons, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one lesson.
func (s *LessonService) Get(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

// Create schedules a single lesson after running the placement checks
// against the stored settings and the surrounding lesson snapshot.
func (s *LessonService) Create(ctx context.Context, req models.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	duration, err := s.resolveDuration(ctx, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		Title:       req.Title,
		Description: req.Description,
		StudentID:   req.StudentID,
		StartTime:   req.StartTime,
		EndTime:     req.StartTime.Add(duration),
	}

	if err := s.checkSlot(ctx, lesson.StartTime, lesson.EndTime, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist lesson")
	}
	s.invalidateCalendar(ctx)
	return lesson, nil
}

// Update edits a lesson in place, re-running the placement checks with the
// lesson itself excluded from the conflict scan.
func (s *LessonService) Update(ctx context.Context, id string, req models.UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	lesson, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	duration := lesson.Duration()
	if req.DurationMinutes > 0 {
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}

	lesson.Title = req.Title
	lesson.Description = req.Description
	lesson.StudentID = req.StudentID
	lesson.StartTime = req.StartTime
	lesson.EndTime = req.StartTime.Add(duration)

	if err := s.checkSlot(ctx, lesson.StartTime, lesson.EndTime, lesson.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}
	s.invalidateCalendar(ctx)
	return lesson, nil
}

// Move relocates a lesson onto a new calendar slot using the drop gesture
// rules: the lesson keeps its duration, and its start minute survives when
// the caller asks for it.
func (s *LessonService) Move(ctx context.Context, id string, req models.MoveLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	lesson, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pctx, err := s.placementContext(ctx, req.Date, lesson)
	if err != nil {
		return nil, err
	}

	interval, denial, err := scheduling.ResolvePlacement(scheduling.PlacementInput{
		Kind:                 scheduling.GestureDrop,
		Date:                 req.Date,
		Hour:                 req.Hour,
		DraggedLessonID:      lesson.ID,
		PreserveMinuteOffset: req.PreserveMinuteOffset,
	}, pctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement input")
	}
	if denial != nil {
		s.observeDenial(denial)
		return nil, denialError(denial)
	}

	lesson.StartTime = interval.Start
	lesson.EndTime = interval.End
	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move lesson")
	}
	s.invalidateCalendar(ctx)
	return lesson, nil
}

// ResolvePlacement answers a calendar gesture without writing anything. The
// frontend calls it to paint a slot as allowed or denied before committing.
func (s *LessonService) ResolvePlacement(ctx context.Context, req models.PlacementRequest) (*models.PlacementResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}

	var dragged *models.Lesson
	if req.DraggedLessonID != "" {
		lesson, err := s.Get(ctx, req.DraggedLessonID)
		if err != nil {
			return nil, err
		}
		dragged = lesson
	}

	pctx, err := s.placementContext(ctx, req.Date, dragged)
	if err != nil {
		return nil, err
	}

	defaultDuration, err := s.settings.DefaultLessonDuration(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}

	interval, denial, err := scheduling.ResolvePlacement(scheduling.PlacementInput{
		Kind:                 scheduling.GestureKind(req.Kind),
		Date:                 req.Date,
		Hour:                 req.Hour,
		DraggedLessonID:      req.DraggedLessonID,
		PreserveMinuteOffset: req.PreserveMinuteOffset,
		DefaultDuration:      defaultDuration,
	}, pctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement input")
	}
	if denial != nil {
		s.observeDenial(denial)
		dto := denialDTO(denial)
		return &models.PlacementResult{Allowed: false, Denial: &dto}, nil
	}
	return &models.PlacementResult{Allowed: true, StartTime: &interval.Start, EndTime: &interval.End}, nil
}

// CreateSeries expands a recurrence pattern into lesson instances, checks
// each one, and persists the approved set in a single transaction. With
// skip_unavailable the denied instances are dropped and reported back;
// without it the first denial rejects the whole series.
func (s *LessonService) CreateSeries(ctx context.Context, req models.CreateSeriesRequest) (*models.CreateSeriesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid series payload")
	}

	duration, err := s.resolveDuration(ctx, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	base := models.Lesson{
		Title:       req.Title,
		Description: req.Description,
		StudentID:   req.StudentID,
		StartTime:   req.StartTime,
		EndTime:     req.StartTime.Add(duration),
	}
	pattern := scheduling.RecurrencePattern{
		Frequency: scheduling.Frequency(req.Recurrence.Frequency),
		Interval:  req.Recurrence.Interval,
		Until:     req.Recurrence.Until,
		Count:     req.Recurrence.Count,
	}

	instances, err := scheduling.ExpandSeries(base, pattern, s.maxSeriesInstances)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence pattern")
	}

	hours, allowHolidays, custom, err := s.loadScheduleContext(ctx)
	if err != nil {
		return nil, err
	}

	first := instances[0].StartTime
	last := instances[len(instances)-1].EndTime
	existing, err := s.repo.ListRange(ctx, first.AddDate(0, 0, -1), last.AddDate(0, 0, 1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson snapshot")
	}

	var created []models.Lesson
	var skipped []models.SkippedInstance
	for _, instance := range instances {
		denial := scheduling.CheckAvailability(hours, instance.StartTime, scheduling.ClockTimeOf(instance.StartTime), allowHolidays, custom)
		if denial == nil {
			candidate := scheduling.LessonInterval(instance)
			if clash := scheduling.FindConflict(candidate, existing, ""); clash != nil {
				denial = &scheduling.Denial{
					Reason:              scheduling.DenialConflict,
					ConflictLessonID:    clash.ID,
					ConflictLessonTitle: clash.Title,
				}
			} else if clash := scheduling.FindConflict(candidate, created, ""); clash != nil {
				denial = &scheduling.Denial{
					Reason:              scheduling.DenialConflict,
					ConflictLessonID:    clash.ID,
					ConflictLessonTitle: clash.Title,
				}
			}
		}
		if denial != nil {
			s.observeDenial(denial)
			if !req.SkipUnavailable {
				return nil, denialError(denial)
			}
			skipped = append(skipped, models.SkippedInstance{StartTime: instance.StartTime, Denial: denialDTO(denial)})
			continue
		}
		created = append(created, instance)
	}

	if len(created) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "every series instance was unavailable")
	}

	if err := s.repo.BulkCreate(ctx, created); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist series")
	}
	s.invalidateCalendar(ctx)

	return &models.CreateSeriesResponse{
		SeriesID: *created[0].SeriesID,
		Created:  created,
		Skipped:  skipped,
	}, nil
}

// ListSeries returns every instance of a series.
func (s *LessonService) ListSeries(ctx context.Context, seriesID string) ([]models.Lesson, error) {
	lessons, err := s.repo.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list series")
	}
	if len(lessons) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "series not found")
	}
	return lessons, nil
}

// Delete removes a single lesson.
func (s *LessonService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}
	s.invalidateCalendar(ctx)
	return nil
}

// DeleteSeries removes every instance of a series.
func (s *LessonService) DeleteSeries(ctx context.Context, seriesID string) (int64, error) {
	count, err := s.repo.DeleteSeries(ctx, seriesID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete series")
	}
	if count == 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "series not found")
	}
	s.invalidateCalendar(ctx)
	return count, nil
}

// checkSlot runs availability and conflict checks for an explicit interval.
func (s *LessonService) checkSlot(ctx context.Context, start, end time.Time, ignoreID string) error {
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrValidation, "lesson must end after it starts")
	}

	hours, allowHolidays, custom, err := s.loadScheduleContext(ctx)
	if err != nil {
		return err
	}

	if denial := scheduling.CheckAvailability(hours, start, scheduling.ClockTimeOf(start), allowHolidays, custom); denial != nil {
		s.observeDenial(denial)
		return denialError(denial)
	}

	existing, err := s.repo.ListRange(ctx, start.AddDate(0, 0, -1), end.AddDate(0, 0, 1))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson snapshot")
	}
	if clash := scheduling.FindConflict(scheduling.TimeInterval{Start: start, End: end}, existing, ignoreID); clash != nil {
		denial := &scheduling.Denial{
			Reason:              scheduling.DenialConflict,
			ConflictLessonID:    clash.ID,
			ConflictLessonTitle: clash.Title,
		}
		s.observeDenial(denial)
		return denialError(denial)
	}
	return nil
}

// placementContext builds the engine snapshot around the target date. The
// dragged lesson may live outside the window, so it is appended when absent.
func (s *LessonService) placementContext(ctx context.Context, date time.Time, dragged *models.Lesson) (scheduling.PlacementContext, error) {
	hours, allowHolidays, custom, err := s.loadScheduleContext(ctx)
	if err != nil {
		return scheduling.PlacementContext{}, err
	}

	lessons, err := s.repo.ListRange(ctx, date.AddDate(0, 0, -1), date.AddDate(0, 0, 2))
	if err != nil {
		return scheduling.PlacementContext{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson snapshot")
	}
	if dragged != nil {
		found := false
		for i := range lessons {
			if lessons[i].ID == dragged.ID {
				found = true
				break
			}
		}
		if !found {
			lessons = append(lessons, *dragged)
		}
	}

	return scheduling.PlacementContext{
		Lessons:             lessons,
		WorkingHours:        hours,
		CustomHolidays:      custom,
		AllowWorkOnHolidays: allowHolidays,
	}, nil
}

func (s *LessonService) loadScheduleContext(ctx context.Context) (scheduling.WeeklyWorkingHours, bool, []models.CustomHoliday, error) {
	hours, err := s.settings.WorkingHours(ctx)
	if err != nil {
		return scheduling.WeeklyWorkingHours{}, false, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours")
	}
	allowHolidays, err := s.settings.AllowWorkOnHolidays(ctx)
	if err != nil {
		return scheduling.WeeklyWorkingHours{}, false, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	custom, err := s.settings.CustomHolidays(ctx)
	if err != nil {
		return scheduling.WeeklyWorkingHours{}, false, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load custom holidays")
	}
	return hours, allowHolidays, custom, nil
}

func (s *LessonService) resolveDuration(ctx context.Context, minutes int) (time.Duration, error) {
	if minutes > 0 {
		return time.Duration(minutes) * time.Minute, nil
	}
	duration, err := s.settings.DefaultLessonDuration(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return duration, nil
}

func (s *LessonService) invalidateCalendar(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateCalendar(ctx); err != nil {
		s.logger.Warn("failed to invalidate calendar cache", zap.Error(err))
	}
}

func (s *LessonService) observeDenial(denial *scheduling.Denial) {
	if s.observer != nil {
		s.observer.ObservePlacementDenial(string(denial.Reason))
	}
}

// denialError maps a structured denial onto the API error vocabulary so
// non-gesture endpoints reject with the right status and message.
func denialError(denial *scheduling.Denial) error {
	switch denial.Reason {
	case scheduling.DenialDayDisabled:
		return appErrors.Clone(appErrors.ErrDayDisabled, "that day is closed for lessons")
	case scheduling.DenialHoliday:
		if denial.HolidayName != "" {
			return appErrors.Clone(appErrors.ErrHoliday, fmt.Sprintf("that date is a holiday: %s", denial.HolidayName))
		}
		return appErrors.Clone(appErrors.ErrHoliday, "that date is a holiday")
	case scheduling.DenialOutsideWorkingHours:
		return appErrors.Clone(appErrors.ErrOutsideHours, "that time is outside working hours")
	case scheduling.DenialConflict:
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("slot conflicts with %q", denial.ConflictLessonTitle))
	default:
		return appErrors.Clone(appErrors.ErrValidation, "placement denied")
	}
}

func denialDTO(denial *scheduling.Denial) models.PlacementDenial {
	return models.PlacementDenial{
		Reason:              string(denial.Reason),
		HolidayName:         denial.HolidayName,
		ConflictLessonID:    denial.ConflictLessonID,
		ConflictLessonTitle: denial.ConflictLessonTitle,
	}
}
