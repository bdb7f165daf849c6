package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

// CustomerRepository reads customer records. Account management is owned by
// another system; this repository only resolves references.
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository creates a new customer repository.
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// FindByID loads a customer by id.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*models.Customer, error) {
	const query = `SELECT id, email, first_name, last_name, current_level, created_at FROM customers WHERE id = $1`
	var customer models.Customer
	if err := r.db.GetContext(ctx, &customer, query, id); err != nil {
		return nil, err
	}
	return &customer, nil
}
