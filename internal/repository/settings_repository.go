package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/derslik/derslik-api/internal/models"
)

// SettingsRepository persists the single schedule settings row and the custom
// holiday list.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a settings repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get fetches the settings row. Callers fall back to defaults when no row
// exists yet.
func (r *SettingsRepository) Get(ctx context.Context) (*models.ScheduleSettings, error) {
	const query = "SELECT id, working_hours, allow_work_on_holidays, default_lesson_minutes, updated_at FROM schedule_settings WHERE id = 1"
	var settings models.ScheduleSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert writes the settings row, inserting it on first save.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.ScheduleSettings) error {
	settings.ID = 1
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO schedule_settings (id, working_hours, allow_work_on_holidays, default_lesson_minutes, updated_at)
VALUES (:id, :working_hours, :allow_work_on_holidays, :default_lesson_minutes, :updated_at)
ON CONFLICT (id) DO UPDATE SET working_hours = EXCLUDED.working_hours,
allow_work_on_holidays = EXCLUDED.allow_work_on_holidays,
default_lesson_minutes = EXCLUDED.default_lesson_minutes,
updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert schedule settings: %w", err)
	}
	return nil
}

// ListCustomHolidays returns every custom holiday ordered by date.
func (r *SettingsRepository) ListCustomHolidays(ctx context.Context) ([]models.CustomHoliday, error) {
	const query = "SELECT id, holiday_date, description, created_at FROM custom_holidays ORDER BY holiday_date ASC"
	var holidays []models.CustomHoliday
	if err := r.db.SelectContext(ctx, &holidays, query); err != nil {
		return nil, fmt.Errorf("list custom holidays: %w", err)
	}
	return holidays, nil
}

// ListCustomHolidaysRange returns custom holidays with dates in [from, to).
func (r *SettingsRepository) ListCustomHolidaysRange(ctx context.Context, from, to time.Time) ([]models.CustomHoliday, error) {
	const query = "SELECT id, holiday_date, description, created_at FROM custom_holidays WHERE holiday_date >= $1 AND holiday_date < $2 ORDER BY holiday_date ASC"
	var holidays []models.CustomHoliday
	if err := r.db.SelectContext(ctx, &holidays, query, from, to); err != nil {
		return nil, fmt.Errorf("list custom holidays in range: %w", err)
	}
	return holidays, nil
}

// CreateCustomHoliday inserts a custom holiday.
func (r *SettingsRepository) CreateCustomHoliday(ctx context.Context, holiday *models.CustomHoliday) error {
	holiday.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO custom_holidays (holiday_date, description, created_at)
VALUES (:holiday_date, :description, :created_at) RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, holiday)
	if err != nil {
		return fmt.Errorf("create custom holiday: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&holiday.ID); err != nil {
			return fmt.Errorf("scan custom holiday id: %w", err)
		}
	}
	return nil
}

// DeleteCustomHoliday removes a custom holiday.
func (r *SettingsRepository) DeleteCustomHoliday(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM custom_holidays WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete custom holiday: %w", err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return sql.ErrNoRows
	}
	return nil
}
