package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

// SubscriptionRepository provides persistence for bundle purchases.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// FindByID loads a subscription by id.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*models.Subscription, error) {
	const query = `SELECT id, customer_id, product_id, buy_price, active, created_at, updated_at FROM subscriptions WHERE id = $1`
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByCustomer returns a customer's subscriptions, newest first.
func (r *SubscriptionRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Subscription, error) {
	const query = `SELECT id, customer_id, product_id, buy_price, active, created_at, updated_at FROM subscriptions WHERE customer_id = $1 ORDER BY created_at DESC, id ASC`
	var subs []models.Subscription
	if err := r.db.SelectContext(ctx, &subs, query, customerID); err != nil {
		return nil, fmt.Errorf("list subscriptions by customer: %w", err)
	}
	return subs, nil
}

// CreateWithTx stores a new subscription inside the caller's transaction so
// provisioning of its classes commits atomically with it.
func (r *SubscriptionRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	const query = `
INSERT INTO subscriptions (id, customer_id, product_id, buy_price, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, query,
		sub.ID, sub.CustomerID, sub.ProductID, sub.BuyPrice, sub.Active, sub.CreatedAt, sub.UpdatedAt); err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// SetActiveWithTx flips the stored active flag inside the caller's
// transaction.
func (r *SubscriptionRepository) SetActiveWithTx(ctx context.Context, tx *sqlx.Tx, id string, active bool) error {
	const query = `UPDATE subscriptions SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("update subscription active flag: %w", err)
	}
	return nil
}
