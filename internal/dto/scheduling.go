package dto

import "time"

// AssignClassRequest attaches an existing calendar entry to a class.
type AssignClassRequest struct {
	EntryID string `json:"entry_id" validate:"required"`
}

// ScheduleClassRequest places a class on a teacher's calendar without a
// pre-existing entry. AllowOverlap defaults to true when omitted.
type ScheduleClassRequest struct {
	TeacherID                string    `json:"teacher_id" validate:"required"`
	Start                    time.Time `json:"start" validate:"required"`
	AllowOverlap             *bool     `json:"allow_overlap"`
	AllowBesidesWorkingHours bool      `json:"allow_besides_working_hours"`
}

// CanBeScheduledResponse reports the pre-flight outcome for a placement.
type CanBeScheduledResponse struct {
	ClassID        string `json:"class_id"`
	EntryID        string `json:"entry_id"`
	CanBeScheduled bool   `json:"can_be_scheduled"`
}
