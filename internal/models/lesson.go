package models

import "time"

// LessonType identifies one of the known lesson kinds sold by the school.
type LessonType string

const (
	LessonTypeOrdinary    LessonType = "ordinary"
	LessonTypePaired      LessonType = "paired"
	LessonTypeHappyHour   LessonType = "happy_hour"
	LessonTypeMasterClass LessonType = "master_class"
)

// LessonDescriptor carries the per-type metadata the scheduling core needs:
// display naming, duration, whether scheduling requires a calendar entry and
// the position in customer-facing listings (nil hides the type).
type LessonDescriptor struct {
	Type          LessonType    `json:"type"`
	Name          string        `json:"name"`
	InternalName  string        `json:"internal_name"`
	Duration      time.Duration `json:"duration"`
	RequiresEntry bool          `json:"requires_entry"`
	SortOrder     *int          `json:"sort_order,omitempty"`
}

// Listed reports whether the lesson type appears in customer listings.
func (d LessonDescriptor) Listed() bool {
	return d.SortOrder != nil
}
