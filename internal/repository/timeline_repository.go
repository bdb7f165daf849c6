package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

const timelineColumns = `id, teacher_id, lesson_type, start_at, end_at, capacity, allow_overlap, allow_besides_working_hours, created_at, updated_at`

// TimelineRepository provides persistence for calendar entries.
type TimelineRepository struct {
	db *sqlx.DB
}

// NewTimelineRepository creates a new timeline repository.
func NewTimelineRepository(db *sqlx.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// FindByID loads an entry by id.
func (r *TimelineRepository) FindByID(ctx context.Context, id string) (*models.TimelineEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM timeline_entries WHERE id = $1`, timelineColumns)
	var entry models.TimelineEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByTeacherAndRange returns a teacher's entries overlapping [from, to),
// ordered chronologically.
func (r *TimelineRepository) ListByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]models.TimelineEntry, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM timeline_entries
WHERE teacher_id = $1 AND start_at < $3 AND end_at > $2
ORDER BY start_at ASC`, timelineColumns)
	var entries []models.TimelineEntry
	if err := r.db.SelectContext(ctx, &entries, query, teacherID, from, to); err != nil {
		return nil, fmt.Errorf("list timeline entries: %w", err)
	}
	return entries, nil
}

// CountAttached returns how many classes currently reference the entry.
func (r *TimelineRepository) CountAttached(ctx context.Context, entryID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM classes WHERE entry_id = $1`, entryID); err != nil {
		return 0, fmt.Errorf("count attached classes: %w", err)
	}
	return count, nil
}

// CreateWithTx stores a new entry inside the caller's transaction.
func (r *TimelineRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, entry *models.TimelineEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Capacity <= 0 {
		entry.Capacity = 1
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `
INSERT INTO timeline_entries (id, teacher_id, lesson_type, start_at, end_at, capacity, allow_overlap, allow_besides_working_hours, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := tx.ExecContext(ctx, query,
		entry.ID, entry.TeacherID, entry.LessonType, entry.Start, entry.End,
		entry.Capacity, entry.AllowOverlap, entry.AllowBesidesWorkingHours,
		entry.CreatedAt, entry.UpdatedAt); err != nil {
		return fmt.Errorf("insert timeline entry: %w", err)
	}
	return nil
}

// TouchWithTx bumps the entry's updated_at inside the caller's transaction.
// Detaching a class does not delete the entry; other classes may still
// reference it.
func (r *TimelineRepository) TouchWithTx(ctx context.Context, tx *sqlx.Tx, entryID string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE timeline_entries SET updated_at = $2 WHERE id = $1`, entryID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch timeline entry: %w", err)
	}
	return nil
}

// ListByTeacherAndRangeWithTx mirrors ListByTeacherAndRange inside a
// transaction so overlap checks observe the locked calendar state.
func (r *TimelineRepository) ListByTeacherAndRangeWithTx(ctx context.Context, tx *sqlx.Tx, teacherID string, from, to time.Time) ([]models.TimelineEntry, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM timeline_entries
WHERE teacher_id = $1 AND start_at < $3 AND end_at > $2
ORDER BY start_at ASC`, timelineColumns)
	var entries []models.TimelineEntry
	if err := tx.SelectContext(ctx, &entries, query, teacherID, from, to); err != nil {
		return nil, fmt.Errorf("list timeline entries: %w", err)
	}
	return entries, nil
}

// CountAttachedWithTx mirrors CountAttached inside a transaction.
func (r *TimelineRepository) CountAttachedWithTx(ctx context.Context, tx *sqlx.Tx, entryID string) (int, error) {
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM classes WHERE entry_id = $1`, entryID); err != nil {
		return 0, fmt.Errorf("count attached classes: %w", err)
	}
	return count, nil
}
