package models

import "time"

// Customer is a paying student. Account management lives in a separate
// system; only the fields the scheduling core references are kept here.
type Customer struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	CurrentLevel string    `db:"current_level" json:"current_level"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FullName joins the customer's names for display.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
