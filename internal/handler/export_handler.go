package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkurbatov/lessonhub-api/internal/service"
	"github.com/mkurbatov/lessonhub-api/pkg/response"
)

type exportService interface {
	Timetable(ctx context.Context, teacherID string, date time.Time, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler serves timetable downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Timetable godoc
// @Summary Download a teacher's day timetable
// @Tags Export
// @Produce text/csv,application/pdf
// @Param id path string true "Teacher ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /teachers/{id}/timetable/export [get]
func (h *ExportHandler) Timetable(c *gin.Context) {
	date, err := dateParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.Timetable(c.Request.Context(), c.Param("id"), date, service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
