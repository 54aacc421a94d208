package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/derslik/derslik-api/internal/models"
)

// LessonRepository persists lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

const lessonColumns = `l.id, l.title, l.description, l.student_id, l.start_time, l.end_time, l.series_id, l.sequence_number, l.created_at, l.updated_at`

// List returns lessons joined with student names, filtered and paginated.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, int, error) {
	where := "1=1"
	args := []interface{}{}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND l.start_time >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND l.start_time < $%d", len(args))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		where += fmt.Sprintf(" AND l.student_id = $%d", len(args))
	}
	if filter.SeriesID != "" {
		args = append(args, filter.SeriesID)
		where += fmt.Sprintf(" AND l.series_id = $%d", len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, s.full_name AS student_name
FROM lessons l LEFT JOIN students s ON s.id = l.student_id
WHERE %s ORDER BY l.start_time ASC LIMIT %d OFFSET %d`, lessonColumns, where, size, offset)
	var lessons []models.LessonDetail
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM lessons l WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}
	return lessons, total, nil
}

// ListRange returns the bare lesson snapshot overlapping [from, to), ordered
// by start time. This is the snapshot the placement engine runs against.
func (r *LessonRepository) ListRange(ctx context.Context, from, to time.Time) ([]models.Lesson, error) {
	const query = `SELECT id, title, description, student_id, start_time, end_time, series_id, sequence_number, created_at, updated_at
FROM lessons WHERE end_time > $1 AND start_time < $2 ORDER BY start_time ASC`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, from, to); err != nil {
		return nil, fmt.Errorf("list lessons in range: %w", err)
	}
	return lessons, nil
}

// FindByID fetches one lesson.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `SELECT id, title, description, student_id, start_time, end_time, series_id, sequence_number, created_at, updated_at
FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListBySeries returns every instance sharing a series id, ordered by
// sequence number.
func (r *LessonRepository) ListBySeries(ctx context.Context, seriesID string) ([]models.Lesson, error) {
	const query = `SELECT id, title, description, student_id, start_time, end_time, series_id, sequence_number, created_at, updated_at
FROM lessons WHERE series_id = $1 ORDER BY sequence_number ASC`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, seriesID); err != nil {
		return nil, fmt.Errorf("list series lessons: %w", err)
	}
	return lessons, nil
}

// Create inserts a lesson.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now
	const query = `INSERT INTO lessons (id, title, description, student_id, start_time, end_time, series_id, sequence_number, created_at, updated_at)
VALUES (:id, :title, :description, :student_id, :start_time, :end_time, :series_id, :sequence_number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// BulkCreate inserts a batch of lessons inside one transaction. Used for
// recurring series so a failed insert leaves no partial series behind.
func (r *LessonRepository) BulkCreate(ctx context.Context, lessons []models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const query = `INSERT INTO lessons (id, title, description, student_id, start_time, end_time, series_id, sequence_number, created_at, updated_at)
VALUES (:id, :title, :description, :student_id, :start_time, :end_time, :series_id, :sequence_number, :created_at, :updated_at)`
	for i := range lessons {
		if lessons[i].ID == "" {
			lessons[i].ID = uuid.NewString()
		}
		if lessons[i].CreatedAt.IsZero() {
			lessons[i].CreatedAt = now
		}
		lessons[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, lessons[i]); err != nil {
			return fmt.Errorf("bulk create lesson %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create: %w", err)
	}
	return nil
}

// Update modifies a lesson.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lessons SET title = :title, description = :description, student_id = :student_id,
start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// Delete removes one lesson.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM lessons WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}

// DeleteSeries removes every instance of a series and reports how many rows
// went away.
func (r *LessonRepository) DeleteSeries(ctx context.Context, seriesID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM lessons WHERE series_id = $1", seriesID)
	if err != nil {
		return 0, fmt.Errorf("delete series: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete series rows affected: %w", err)
	}
	return count, nil
}

// ListUpcoming returns lessons starting inside [from, to), joined with
// student names, for the reminder pipeline.
func (r *LessonRepository) ListUpcoming(ctx context.Context, from, to time.Time) ([]models.LessonDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.full_name AS student_name
FROM lessons l LEFT JOIN students s ON s.id = l.student_id
WHERE l.start_time >= $1 AND l.start_time < $2 ORDER BY l.start_time ASC`, lessonColumns)
	var lessons []models.LessonDetail
	if err := r.db.SelectContext(ctx, &lessons, query, from, to); err != nil {
		return nil, fmt.Errorf("list upcoming lessons: %w", err)
	}
	return lessons, nil
}
