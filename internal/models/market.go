package models

import "time"

// BuySource distinguishes how a class entitlement entered the system.
type BuySource string

const (
	BuySourceSingle       BuySource = "single"
	BuySourceSubscription BuySource = "subscription"
)

// Class is a single purchased, consumable lesson entitlement. It is
// unscheduled until a timeline entry is attached; IsScheduled is derived
// from EntryID on every persist.
type Class struct {
	ID             string     `db:"id" json:"id"`
	CustomerID     string     `db:"customer_id" json:"customer_id"`
	LessonType     LessonType `db:"lesson_type" json:"lesson_type"`
	BuyPrice       float64    `db:"buy_price" json:"buy_price"`
	BuySource      BuySource  `db:"buy_source" json:"buy_source"`
	SubscriptionID *string    `db:"subscription_id" json:"subscription_id,omitempty"`
	EntryID        *string    `db:"entry_id" json:"entry_id,omitempty"`
	Active         bool       `db:"active" json:"active"`
	IsScheduled    bool       `db:"is_scheduled" json:"is_scheduled"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Scheduled reports whether a timeline entry is currently attached.
func (c *Class) Scheduled() bool {
	return c.EntryID != nil
}

// Subscription is a bundle purchase that provisions one Class per lesson
// unit of its product.
type Subscription struct {
	ID         string    `db:"id" json:"id"`
	CustomerID string    `db:"customer_id" json:"customer_id"`
	ProductID  string    `db:"product_id" json:"product_id"`
	BuyPrice   float64   `db:"buy_price" json:"buy_price"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// LessonGrant is one product line: how many classes of a lesson type a
// subscription provisions.
type LessonGrant struct {
	LessonType LessonType `json:"lesson_type"`
	Units      int        `json:"units"`
}

// Product describes a sellable bundle. The catalog itself is an external
// collaborator; only the shape the provisioning pipeline consumes lives here.
type Product struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Grants []LessonGrant `json:"grants"`
}
