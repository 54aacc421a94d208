package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/derslik/derslik-api/internal/models"
	"github.com/derslik/derslik-api/internal/scheduling"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
)

type calendarLessonRepository interface {
	ListRange(ctx context.Context, from, to time.Time) ([]models.Lesson, error)
}

type calendarExporter interface {
	Feed(lessons []models.Lesson, name string) ([]byte, error)
}

// CalendarCellView is one grid cell enriched with the day-level availability
// verdict so the frontend can paint closed days without extra roundtrips.
type CalendarCellView struct {
	Date              time.Time               `json:"date"`
	InReferencePeriod bool                    `json:"in_reference_period"`
	Available         bool                    `json:"available"`
	Denial            *models.PlacementDenial `json:"denial,omitempty"`
	Lessons           []models.Lesson         `json:"lessons"`
}

// CalendarView is a complete grid for one granularity and reference date.
type CalendarView struct {
	Granularity   string             `json:"granularity"`
	ReferenceDate time.Time          `json:"reference_date"`
	Cells         []CalendarCellView `json:"cells"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// CalendarService builds the day, week, month and year grids, caches them in
// Redis, and renders the read-only ICS feed.
type CalendarService struct {
	repo     calendarLessonRepository
	settings scheduleContextProvider
	cache    *CacheService
	exporter calendarExporter
	logger   *zap.Logger
	cacheTTL time.Duration
	feedName string
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(repo calendarLessonRepository, settings scheduleContextProvider, cache *CacheService, exporter calendarExporter, logger *zap.Logger, cacheTTL time.Duration, feedName string) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if feedName == "" {
		feedName = "Lessons"
	}
	return &CalendarService{repo: repo, settings: settings, cache: cache, exporter: exporter, logger: logger, cacheTTL: cacheTTL, feedName: feedName}
}

// View returns the grid for the granularity around the reference date.
func (s *CalendarService) View(ctx context.Context, granularity string, referenceDate time.Time) (*CalendarView, error) {
	key := fmt.Sprintf("calendar:view:%s:%s", granularity, referenceDate.Format("2006-01-02"))
	var cached CalendarView
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	from, to := viewRange(granularity, referenceDate)
	lessons, err := s.repo.ListRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}

	cells, err := scheduling.GenerateCells(referenceDate, scheduling.Granularity(granularity), lessons)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown calendar granularity")
	}

	hours, err := s.settings.WorkingHours(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours")
	}
	allowHolidays, err := s.settings.AllowWorkOnHolidays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	custom, err := s.settings.CustomHolidays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load custom holidays")
	}

	view := &CalendarView{
		Granularity:   granularity,
		ReferenceDate: referenceDate,
		Cells:         make([]CalendarCellView, 0, len(cells)),
		GeneratedAt:   time.Now().UTC(),
	}
	for _, cell := range cells {
		cv := CalendarCellView{
			Date:              cell.Date,
			InReferencePeriod: cell.InReferencePeriod,
			Available:         true,
			Lessons:           cell.Lessons,
		}
		if cv.Lessons == nil {
			cv.Lessons = []models.Lesson{}
		}
		if denial := scheduling.CheckDayAvailability(hours, cell.Date, allowHolidays, custom); denial != nil {
			cv.Available = false
			dto := denialDTO(denial)
			cv.Denial = &dto
		}
		view.Cells = append(view.Cells, cv)
	}

	if err := s.cache.Set(ctx, key, view, s.cacheTTL); err != nil {
		s.logger.Debug("calendar view cache write failed", zap.Error(err))
	}
	return view, nil
}

// Feed renders the ICS calendar feed covering one year back and one ahead.
func (s *CalendarService) Feed(ctx context.Context) ([]byte, error) {
	now := time.Now()
	lessons, err := s.repo.ListRange(ctx, now.AddDate(-1, 0, 0), now.AddDate(1, 0, 0))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}
	payload, err := s.exporter.Feed(lessons, s.feedName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar feed")
	}
	return payload, nil
}

// InvalidateCalendar drops every cached calendar payload. Called by the
// lesson and settings services after writes.
func (s *CalendarService) InvalidateCalendar(ctx context.Context) error {
	return s.cache.Invalidate(ctx, "calendar:*")
}

// viewRange over-fetches by a week on both sides so padded grid cells get
// their lessons too.
func viewRange(granularity string, reference time.Time) (time.Time, time.Time) {
	y, m, d := reference.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, reference.Location())
	switch scheduling.Granularity(granularity) {
	case scheduling.GranularityWeek:
		return day.AddDate(0, 0, -14), day.AddDate(0, 0, 14)
	case scheduling.GranularityMonth:
		first := time.Date(y, m, 1, 0, 0, 0, 0, reference.Location())
		return first.AddDate(0, 0, -7), first.AddDate(0, 1, 7)
	case scheduling.GranularityYear:
		first := time.Date(y, 1, 1, 0, 0, 0, 0, reference.Location())
		return first.AddDate(0, 0, -7), first.AddDate(1, 0, 7)
	default:
		return day.AddDate(0, 0, -1), day.AddDate(0, 0, 2)
	}
}
