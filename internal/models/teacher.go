package models

import (
	"fmt"
	"time"
)

// Teacher represents a tutor whose calendar the back office manages.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WorkingHours is a recurring weekly availability window owned by a teacher.
// Weekday follows time.Weekday numbering (Sunday = 0). Times are stored as
// "HH:MM" strings; start must precede end.
type WorkingHours struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Weekday   int       `db:"weekday" json:"weekday"`
	Start     string    `db:"start_time" json:"start"`
	End       string    `db:"end_time" json:"end"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TimeWindow is a working-hours template resolved onto a concrete date.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowOn combines the template's times with the given calendar date.
// The date's location is preserved.
func (w *WorkingHours) WindowOn(date time.Time) (*TimeWindow, error) {
	start, err := combine(date, w.Start)
	if err != nil {
		return nil, fmt.Errorf("working hours start: %w", err)
	}
	end, err := combine(date, w.End)
	if err != nil {
		return nil, fmt.Errorf("working hours end: %w", err)
	}
	return &TimeWindow{Start: start, End: end}, nil
}

// Contains reports whether [start, end) fits fully inside the window.
func (w *TimeWindow) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

func combine(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}
