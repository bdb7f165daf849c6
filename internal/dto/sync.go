package dto

import "time"

// ExternalEventPayload is one event of a candidate replacement batch.
type ExternalEventPayload struct {
	ID          string    `json:"id"`
	ParentID    *string   `json:"parent_id"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
	Description string    `json:"description"`
}

// ReplaceEventsRequest carries the candidate batch for one event source. An
// empty batch is a legal request; the safety check decides whether it lands.
type ReplaceEventsRequest struct {
	Events []ExternalEventPayload `json:"events" validate:"dive"`
}

// SyncResultResponse reports whether a replacement batch was applied.
type SyncResultResponse struct {
	SourceID string `json:"source_id"`
	Applied  bool   `json:"applied"`
}
