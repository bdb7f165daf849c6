package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

// TeacherRepository provides persistence for teachers and their
// working-hours templates.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID loads a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, email, full_name, phone, active, created_at, updated_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListWithWorkingHours returns active teachers that own at least one
// working-hours template, ordered by name.
func (r *TeacherRepository) ListWithWorkingHours(ctx context.Context) ([]models.Teacher, error) {
	const query = `
SELECT DISTINCT t.id, t.email, t.full_name, t.phone, t.active, t.created_at, t.updated_at
FROM teachers t
JOIN working_hours wh ON wh.teacher_id = t.id
WHERE t.active = TRUE
ORDER BY t.full_name ASC, t.id ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers with working hours: %w", err)
	}
	return teachers, nil
}

// FindWorkingHours returns the template matching the weekday for the teacher.
// When several templates share a weekday the one with the lowest id wins,
// keeping resolution deterministic. A missing template yields (nil, nil).
func (r *TeacherRepository) FindWorkingHours(ctx context.Context, teacherID string, weekday int) (*models.WorkingHours, error) {
	const query = `
SELECT id, teacher_id, weekday, start_time, end_time, created_at
FROM working_hours
WHERE teacher_id = $1 AND weekday = $2
ORDER BY id ASC
LIMIT 1`
	var hours models.WorkingHours
	if err := r.db.GetContext(ctx, &hours, query, teacherID, weekday); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find working hours: %w", err)
	}
	return &hours, nil
}

// ListWorkingHours returns all templates for a teacher ordered by weekday.
func (r *TeacherRepository) ListWorkingHours(ctx context.Context, teacherID string) ([]models.WorkingHours, error) {
	const query = `
SELECT id, teacher_id, weekday, start_time, end_time, created_at
FROM working_hours
WHERE teacher_id = $1
ORDER BY weekday ASC, id ASC`
	var hours []models.WorkingHours
	if err := r.db.SelectContext(ctx, &hours, query, teacherID); err != nil {
		return nil, fmt.Errorf("list working hours: %w", err)
	}
	return hours, nil
}

// ReplaceWorkingHours swaps a teacher's full template set atomically.
func (r *TeacherRepository) ReplaceWorkingHours(ctx context.Context, teacherID string, hours []models.WorkingHours) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin working hours transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM working_hours WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("clear working hours: %w", err)
	}

	const insert = `
INSERT INTO working_hours (id, teacher_id, weekday, start_time, end_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	now := time.Now().UTC()
	for i := range hours {
		if hours[i].ID == "" {
			hours[i].ID = uuid.NewString()
		}
		hours[i].TeacherID = teacherID
		hours[i].CreatedAt = now
		if _, err = tx.ExecContext(ctx, insert,
			hours[i].ID, teacherID, hours[i].Weekday, hours[i].Start, hours[i].End, now); err != nil {
			return fmt.Errorf("insert working hours: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit working hours: %w", err)
	}
	return nil
}

// LockWithTx takes a row lock on the teacher, serialising scheduling
// against the same calendar.
func (r *TeacherRepository) LockWithTx(ctx context.Context, tx *sqlx.Tx, teacherID string) error {
	var id string
	if err := tx.GetContext(ctx, &id, `SELECT id FROM teachers WHERE id = $1 FOR UPDATE`, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock teacher: %w", err)
	}
	return nil
}
