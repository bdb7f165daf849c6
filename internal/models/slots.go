package models

import "time"

// SlotList is an ordered sequence of bookable start times for one teacher
// and date. A nil SlotList means the teacher does not work that day; an
// empty one means the day is fully booked.
type SlotList []time.Time

// Clocks renders the slots as "HH:MM" strings, preserving order.
func (s SlotList) Clocks() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	for i, slot := range s {
		out[i] = slot.Format("15:04")
	}
	return out
}

// ByClock maps display time-of-day strings onto their slots.
func (s SlotList) ByClock() map[string]time.Time {
	if s == nil {
		return nil
	}
	out := make(map[string]time.Time, len(s))
	for _, slot := range s {
		out[slot.Format("15:04")] = slot
	}
	return out
}
