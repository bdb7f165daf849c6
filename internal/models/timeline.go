package models

import "time"

// TimelineEntry is a concrete booking on a teacher's calendar. One entry may
// hold several attached classes (group lessons); capacity bounds how many.
type TimelineEntry struct {
	ID                       string     `db:"id" json:"id"`
	TeacherID                string     `db:"teacher_id" json:"teacher_id"`
	LessonType               LessonType `db:"lesson_type" json:"lesson_type"`
	Start                    time.Time  `db:"start_at" json:"start"`
	End                      time.Time  `db:"end_at" json:"end"`
	Capacity                 int        `db:"capacity" json:"capacity"`
	AllowOverlap             bool       `db:"allow_overlap" json:"allow_overlap"`
	AllowBesidesWorkingHours bool       `db:"allow_besides_working_hours" json:"allow_besides_working_hours"`
	CreatedAt                time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at" json:"updated_at"`
}

// Overlaps applies the half-open interval test: entries that merely abut the
// given range do not overlap it.
func (e *TimelineEntry) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}

// HasRoom reports whether the entry can take one more attached class given
// how many are already attached.
func (e *TimelineEntry) HasRoom(attached int) bool {
	capacity := e.Capacity
	if capacity <= 0 {
		capacity = 1
	}
	return attached < capacity
}
