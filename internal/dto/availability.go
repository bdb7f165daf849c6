package dto

// WorkingHoursItem is one weekly template line. Weekday follows time.Weekday
// numbering (Sunday = 0); times are "HH:MM".
type WorkingHoursItem struct {
	Weekday int    `json:"weekday" validate:"min=0,max=6"`
	Start   string `json:"start" validate:"required"`
	End     string `json:"end" validate:"required"`
}

// ReplaceWorkingHoursRequest swaps a teacher's full weekly template set.
type ReplaceWorkingHoursRequest struct {
	Items []WorkingHoursItem `json:"items" validate:"required,min=1,dive"`
}

// FreeSlotsResponse lists the bookable start times for one teacher and date.
// Works distinguishes "does not work that day" from "fully booked".
type FreeSlotsResponse struct {
	TeacherID string   `json:"teacher_id"`
	Date      string   `json:"date"`
	Works     bool     `json:"works"`
	Slots     []string `json:"slots"`
}

// FreeTeacherItem is one teacher with availability on the requested date.
type FreeTeacherItem struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
