package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/derslik/derslik-api/internal/models"
	"github.com/derslik/derslik-api/pkg/jobs"
	"github.com/derslik/derslik-api/pkg/mailer"
)

type reminderLessonRepository interface {
	ListUpcoming(ctx context.Context, from, to time.Time) ([]models.LessonDetail, error)
}

type reminderQueue interface {
	Enqueue(job jobs.Job) error
}

// ReminderConfig tunes the reminder pipeline.
type ReminderConfig struct {
	Lookahead time.Duration
	To        string
}

// ReminderService scans for lessons starting soon and pushes one reminder
// email per lesson through the job queue. The cron scheduler calls Run on a
// fixed cadence; a Redis SETNX key per lesson keeps repeated scans from
// sending duplicates.
type ReminderService struct {
	repo    reminderLessonRepository
	queue   reminderQueue
	cache   *CacheService
	mailer  mailer.Mailer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ReminderConfig
}

// NewReminderService constructs a ReminderService.
func NewReminderService(repo reminderLessonRepository, queue reminderQueue, cache *CacheService, m mailer.Mailer, metrics *MetricsService, logger *zap.Logger, cfg ReminderConfig) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = 24 * time.Hour
	}
	return &ReminderService{repo: repo, queue: queue, cache: cache, mailer: m, metrics: metrics, logger: logger, cfg: cfg}
}

// Run scans the lookahead window and enqueues reminders for lessons that
// have not been reminded yet. It returns how many reminders were enqueued.
func (s *ReminderService) Run(ctx context.Context) (int, error) {
	now := time.Now()
	lessons, err := s.repo.ListUpcoming(ctx, now, now.Add(s.cfg.Lookahead))
	if err != nil {
		return 0, fmt.Errorf("scan upcoming lessons: %w", err)
	}

	enqueued := 0
	for _, lesson := range lessons {
		key := fmt.Sprintf("reminder:sent:%s", lesson.ID)
		fresh, err := s.cache.SetNX(ctx, key, lesson.StartTime, s.cfg.Lookahead*2)
		if err != nil {
			s.logger.Warn("reminder dedupe check failed", zap.String("lesson_id", lesson.ID), zap.Error(err))
			continue
		}
		if !fresh {
			continue
		}
		if err := s.queue.Enqueue(jobs.Job{ID: lesson.ID, Type: "lesson_reminder", Payload: lesson}); err != nil {
			s.logger.Warn("failed to enqueue reminder", zap.String("lesson_id", lesson.ID), zap.Error(err))
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		s.logger.Info("reminders enqueued", zap.Int("count", enqueued))
	}
	return enqueued, nil
}

// HandleJob is the queue handler that delivers one reminder email.
func (s *ReminderService) HandleJob(ctx context.Context, job jobs.Job) error {
	lesson, ok := job.Payload.(models.LessonDetail)
	if !ok {
		return fmt.Errorf("reminder job %s carries unexpected payload %T", job.ID, job.Payload)
	}

	subject := fmt.Sprintf("Upcoming lesson: %s at %s", lesson.Title, lesson.StartTime.Format("15:04"))
	if _, err := s.mailer.Send(ctx, mailer.Message{
		To:      []string{s.cfg.To},
		Subject: subject,
		HTML:    reminderBody(lesson),
	}); err != nil {
		s.metrics.ObserveReminder(false)
		return err
	}
	s.metrics.ObserveReminder(true)
	return nil
}

func reminderBody(lesson models.LessonDetail) string {
	student := ""
	if lesson.StudentName != nil {
		student = fmt.Sprintf("<p>Student: %s</p>", *lesson.StudentName)
	}
	return fmt.Sprintf("<h3>%s</h3><p>%s, %s - %s</p>%s",
		lesson.Title,
		lesson.StartTime.Format("Monday, 2 January 2006"),
		lesson.StartTime.Format("15:04"),
		lesson.EndTime.Format("15:04"),
		student,
	)
}
