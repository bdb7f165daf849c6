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

type schedulingService interface {
	CanBeScheduled(ctx context.Context, classID, entryID string) (bool, error)
	Assign(ctx context.Context, classID, entryID string) (*models.Class, error)
	Schedule(ctx context.Context, classID string, req dto.ScheduleClassRequest) (*models.Class, error)
	Unschedule(ctx context.Context, classID string) (*models.Class, error)
}

// SchedulingHandler exposes the class scheduling endpoints.
type SchedulingHandler struct {
	service schedulingService
}

// NewSchedulingHandler builds a new handler.
func NewSchedulingHandler(service schedulingService) *SchedulingHandler {
	return &SchedulingHandler{service: service}
}

// CanBeScheduled godoc
// @Summary Check whether a class can be attached to an entry
// @Tags Scheduling
// @Produce json
// @Param id path string true "Class ID"
// @Param entry_id query string true "Timeline entry ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/can-be-scheduled [get]
func (h *SchedulingHandler) CanBeScheduled(c *gin.Context) {
	entryID := c.Query("entry_id")
	if entryID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "entry_id query parameter is required"))
		return
	}
	classID := c.Param("id")
	ok, err := h.service.CanBeScheduled(c.Request.Context(), classID, entryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CanBeScheduledResponse{
		ClassID:        classID,
		EntryID:        entryID,
		CanBeScheduled: ok,
	}, nil)
}

// Assign godoc
// @Summary Attach an existing calendar entry to a class
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.AssignClassRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/assign [post]
func (h *SchedulingHandler) Assign(c *gin.Context) {
	var req dto.AssignClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	if req.EntryID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "entry_id is required"))
		return
	}
	class, err := h.service.Assign(c.Request.Context(), c.Param("id"), req.EntryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Schedule godoc
// @Summary Schedule a class without a pre-existing entry
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.ScheduleClassRequest true "Scheduling payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/schedule [post]
func (h *SchedulingHandler) Schedule(c *gin.Context) {
	var req dto.ScheduleClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scheduling payload"))
		return
	}
	class, err := h.service.Schedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Unschedule godoc
// @Summary Detach a class from its calendar entry
// @Tags Scheduling
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/unschedule [post]
func (h *SchedulingHandler) Unschedule(c *gin.Context) {
	class, err := h.service.Unschedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}
