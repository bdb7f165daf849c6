package models

import "time"

// EventSource identifies one external calendar feed attached to a teacher.
type EventSource struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Name      string    `db:"name" json:"name"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ExternalEvent is one imported calendar event. A non-nil ParentID marks the
// event as an instance of a recurring series; the parent row represents the
// recurrence rule itself.
type ExternalEvent struct {
	ID          string    `db:"id" json:"id"`
	SourceID    string    `db:"source_id" json:"source_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	ParentID    *string   `db:"parent_id" json:"parent_id,omitempty"`
	Start       time.Time `db:"start_at" json:"start"`
	End         time.Time `db:"end_at" json:"end"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Recurring reports whether the event belongs to a recurring series.
func (e *ExternalEvent) Recurring() bool {
	return e.ParentID != nil
}
