package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

const classColumns = `id, customer_id, lesson_type, buy_price, buy_source, subscription_id, entry_id, active, is_scheduled, created_at, updated_at`

// ClassRepository provides persistence for purchased lesson entitlements.
// Every write recomputes is_scheduled from entry presence so the derived
// flag can never drift from the association.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID loads a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE id = $1`, classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByIDWithTx loads a class inside the caller's transaction, locking the
// row so state transitions always run against committed state.
func (r *ClassRepository) FindByIDWithTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE id = $1 FOR UPDATE`, classColumns)
	var class models.Class
	if err := tx.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListByCustomer returns a customer's classes, newest purchases first.
func (r *ClassRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE customer_id = $1 ORDER BY created_at DESC, id ASC`, classColumns)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, customerID); err != nil {
		return nil, fmt.Errorf("list classes by customer: %w", err)
	}
	return classes, nil
}

// ListBySubscription returns all classes a subscription provisioned.
func (r *ClassRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE subscription_id = $1 ORDER BY created_at ASC, id ASC`, classColumns)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, subscriptionID); err != nil {
		return nil, fmt.Errorf("list classes by subscription: %w", err)
	}
	return classes, nil
}

// UnscheduledLessonTypes returns the distinct lesson types the customer
// still has unscheduled active classes for.
func (r *ClassRepository) UnscheduledLessonTypes(ctx context.Context, customerID string) ([]models.LessonType, error) {
	const query = `
SELECT DISTINCT lesson_type
FROM classes
WHERE customer_id = $1 AND entry_id IS NULL AND active = TRUE`
	var types []models.LessonType
	if err := r.db.SelectContext(ctx, &types, query, customerID); err != nil {
		return nil, fmt.Errorf("list unscheduled lesson types: %w", err)
	}
	return types, nil
}

// Create stores a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	prepare(class)
	const query = `
INSERT INTO classes (id, customer_id, lesson_type, buy_price, buy_source, subscription_id, entry_id, active, is_scheduled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query, classArgs(class)...); err != nil {
		return fmt.Errorf("insert class: %w", err)
	}
	return nil
}

// CreateWithTx stores a new class inside the caller's transaction.
func (r *ClassRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, class *models.Class) error {
	prepare(class)
	const query = `
INSERT INTO classes (id, customer_id, lesson_type, buy_price, buy_source, subscription_id, entry_id, active, is_scheduled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := tx.ExecContext(ctx, query, classArgs(class)...); err != nil {
		return fmt.Errorf("insert class: %w", err)
	}
	return nil
}

// UpdateWithTx persists entry attachment and activity changes inside the
// caller's transaction, recomputing is_scheduled.
func (r *ClassRepository) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, class *models.Class) error {
	class.IsScheduled = class.Scheduled()
	class.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE classes
SET entry_id = $2, active = $3, is_scheduled = $4, updated_at = $5
WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query,
		class.ID, class.EntryID, class.Active, class.IsScheduled, class.UpdatedAt); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// SetActiveBySubscriptionWithTx cascades a subscription's active flag onto
// every class it provisioned, and nothing else.
func (r *ClassRepository) SetActiveBySubscriptionWithTx(ctx context.Context, tx *sqlx.Tx, subscriptionID string, active bool) error {
	const query = `UPDATE classes SET active = $2, updated_at = $3 WHERE subscription_id = $1`
	if _, err := tx.ExecContext(ctx, query, subscriptionID, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("cascade subscription active flag: %w", err)
	}
	return nil
}

func prepare(class *models.Class) {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	class.IsScheduled = class.Scheduled()
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now
}

func classArgs(class *models.Class) []interface{} {
	return []interface{}{
		class.ID, class.CustomerID, class.LessonType, class.BuyPrice, class.BuySource,
		class.SubscriptionID, class.EntryID, class.Active, class.IsScheduled,
		class.CreatedAt, class.UpdatedAt,
	}
}
