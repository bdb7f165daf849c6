package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkurbatov/lessonhub-api/internal/dto"
	"github.com/mkurbatov/lessonhub-api/internal/models"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
	"github.com/mkurbatov/lessonhub-api/pkg/response"
)

type syncService interface {
	ReplaceEvents(ctx context.Context, sourceID string, candidate []models.ExternalEvent) (bool, error)
	SyncSource(ctx context.Context, sourceID string) (bool, error)
}

type eventSourceReader interface {
	ListSources(ctx context.Context) ([]models.EventSource, error)
	ListBySource(ctx context.Context, sourceID string) ([]models.ExternalEvent, error)
}

// SyncHandler exposes external-calendar synchronization endpoints.
type SyncHandler struct {
	service syncService
	sources eventSourceReader
}

// NewSyncHandler builds a new handler.
func NewSyncHandler(service syncService, sources eventSourceReader) *SyncHandler {
	return &SyncHandler{service: service, sources: sources}
}

// ListSources godoc
// @Summary List external event sources
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/sources [get]
func (h *SyncHandler) ListSources(c *gin.Context) {
	sources, err := h.sources.ListSources(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list event sources"))
		return
	}
	response.JSON(c, http.StatusOK, sources, nil)
}

// ListEvents godoc
// @Summary List the stored events of one source
// @Tags Sync
// @Produce json
// @Param id path string true "Event source ID"
// @Success 200 {object} response.Envelope
// @Router /sync/sources/{id}/events [get]
func (h *SyncHandler) ListEvents(c *gin.Context) {
	events, err := h.sources.ListBySource(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events"))
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// ReplaceEvents godoc
// @Summary Replace a source's stored events behind the safety check
// @Tags Sync
// @Accept json
// @Produce json
// @Param id path string true "Event source ID"
// @Param payload body dto.ReplaceEventsRequest true "Candidate event batch"
// @Success 200 {object} response.Envelope
// @Router /sync/sources/{id}/events [put]
func (h *SyncHandler) ReplaceEvents(c *gin.Context) {
	var req dto.ReplaceEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event batch payload"))
		return
	}

	sourceID := c.Param("id")
	events := make([]models.ExternalEvent, 0, len(req.Events))
	for _, e := range req.Events {
		events = append(events, models.ExternalEvent{
			ID:          e.ID,
			SourceID:    sourceID,
			ParentID:    e.ParentID,
			Start:       e.Start,
			End:         e.End,
			Description: e.Description,
		})
	}

	applied, err := h.service.ReplaceEvents(c.Request.Context(), sourceID, events)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SyncResultResponse{SourceID: sourceID, Applied: applied}, nil)
}

// SyncSource godoc
// @Summary Fetch a source's upstream batch and apply it behind the safety check
// @Tags Sync
// @Produce json
// @Param id path string true "Event source ID"
// @Success 200 {object} response.Envelope
// @Router /sync/sources/{id}/run [post]
func (h *SyncHandler) SyncSource(c *gin.Context) {
	sourceID := c.Param("id")
	applied, err := h.service.SyncSource(c.Request.Context(), sourceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SyncResultResponse{SourceID: sourceID, Applied: applied}, nil)
}
