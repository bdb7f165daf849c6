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

type workingHoursService interface {
	TeacherWorkingHours(ctx context.Context, teacherID string) ([]models.WorkingHours, error)
	ReplaceTeacherWorkingHours(ctx context.Context, teacherID string, req dto.ReplaceWorkingHoursRequest) error
}

// WorkingHoursHandler exposes weekly template endpoints.
type WorkingHoursHandler struct {
	service workingHoursService
}

// NewWorkingHoursHandler builds a new handler.
func NewWorkingHoursHandler(service workingHoursService) *WorkingHoursHandler {
	return &WorkingHoursHandler{service: service}
}

// List godoc
// @Summary List a teacher's weekly working hours
// @Tags WorkingHours
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/working-hours [get]
func (h *WorkingHoursHandler) List(c *gin.Context) {
	hours, err := h.service.TeacherWorkingHours(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hours, nil)
}

// Replace godoc
// @Summary Replace a teacher's weekly working hours
// @Tags WorkingHours
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.ReplaceWorkingHoursRequest true "Working hours payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/working-hours [put]
func (h *WorkingHoursHandler) Replace(c *gin.Context) {
	var req dto.ReplaceWorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid working hours payload"))
		return
	}
	teacherID := c.Param("id")
	if err := h.service.ReplaceTeacherWorkingHours(c.Request.Context(), teacherID, req); err != nil {
		response.Error(c, err)
		return
	}
	hours, err := h.service.TeacherWorkingHours(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hours, nil)
}
