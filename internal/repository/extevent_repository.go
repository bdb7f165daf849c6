package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

const externalEventColumns = `id, source_id, teacher_id, parent_id, start_at, end_at, description, created_at`

// ExternalEventRepository provides persistence for imported calendar events
// and their sources.
type ExternalEventRepository struct {
	db *sqlx.DB
}

// NewExternalEventRepository creates a new external event repository.
func NewExternalEventRepository(db *sqlx.DB) *ExternalEventRepository {
	return &ExternalEventRepository{db: db}
}

// ListSources returns all registered event sources.
func (r *ExternalEventRepository) ListSources(ctx context.Context) ([]models.EventSource, error) {
	const query = `SELECT id, teacher_id, name, url, created_at FROM event_sources ORDER BY created_at ASC, id ASC`
	var sources []models.EventSource
	if err := r.db.SelectContext(ctx, &sources, query); err != nil {
		return nil, fmt.Errorf("list event sources: %w", err)
	}
	return sources, nil
}

// FindSource loads one event source by id.
func (r *ExternalEventRepository) FindSource(ctx context.Context, id string) (*models.EventSource, error) {
	const query = `SELECT id, teacher_id, name, url, created_at FROM event_sources WHERE id = $1`
	var source models.EventSource
	if err := r.db.GetContext(ctx, &source, query, id); err != nil {
		return nil, err
	}
	return &source, nil
}

// ListBySource returns the stored events for a source, ordered by start.
func (r *ExternalEventRepository) ListBySource(ctx context.Context, sourceID string) ([]models.ExternalEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM external_events WHERE source_id = $1 ORDER BY start_at ASC, id ASC`, externalEventColumns)
	var events []models.ExternalEvent
	if err := r.db.SelectContext(ctx, &events, query, sourceID); err != nil {
		return nil, fmt.Errorf("list external events: %w", err)
	}
	return events, nil
}

// ReplaceForSource swaps the stored batch for a source atomically. The
// caller is expected to have vetted the replacement beforehand.
func (r *ExternalEventRepository) ReplaceForSource(ctx context.Context, sourceID string, events []models.ExternalEvent) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin event replacement: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM external_events WHERE source_id = $1`, sourceID); err != nil {
		return fmt.Errorf("clear external events: %w", err)
	}

	const insert = `
INSERT INTO external_events (id, source_id, teacher_id, parent_id, start_at, end_at, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now().UTC()
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.NewString()
		}
		events[i].SourceID = sourceID
		events[i].CreatedAt = now
		if _, err = tx.ExecContext(ctx, insert,
			events[i].ID, sourceID, events[i].TeacherID, events[i].ParentID,
			events[i].Start, events[i].End, events[i].Description, now); err != nil {
			return fmt.Errorf("insert external event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit event replacement: %w", err)
	}
	return nil
}
