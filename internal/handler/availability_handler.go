package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkurbatov/lessonhub-api/internal/dto"
	"github.com/mkurbatov/lessonhub-api/internal/models"
	"github.com/mkurbatov/lessonhub-api/internal/service"
	"github.com/mkurbatov/lessonhub-api/pkg/response"
)

type availabilityService interface {
	FindFreeSlots(ctx context.Context, teacherID string, date time.Time, opts service.SlotOptions) (models.SlotList, error)
	FindFreeTeachers(ctx context.Context, date time.Time, lessonType models.LessonType) ([]models.Teacher, error)
	PlanningDates() []time.Time
}

// AvailabilityHandler exposes free-slot and free-teacher endpoints.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler builds a new handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// FreeSlots godoc
// @Summary List a teacher's free slots for a date
// @Tags Availability
// @Produce json
// @Param id path string true "Teacher ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param granularity query string false "Slot granularity, e.g. 30m"
// @Param lesson_type query string false "Lesson type filter"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/slots [get]
func (h *AvailabilityHandler) FreeSlots(c *gin.Context) {
	date, err := dateParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	granularity, err := granularityParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	teacherID := c.Param("id")
	slots, err := h.service.FindFreeSlots(c.Request.Context(), teacherID, date, service.SlotOptions{
		Granularity: granularity,
		LessonType:  models.LessonType(c.Query("lesson_type")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := dto.FreeSlotsResponse{
		TeacherID: teacherID,
		Date:      date.Format("2006-01-02"),
		Works:     slots != nil,
		Slots:     slots.Clocks(),
	}
	if payload.Works && payload.Slots == nil {
		payload.Slots = []string{}
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// FreeTeachers godoc
// @Summary List teachers with at least one free slot on a date
// @Tags Availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param lesson_type query string false "Lesson type filter"
// @Success 200 {object} response.Envelope
// @Router /availability/teachers [get]
func (h *AvailabilityHandler) FreeTeachers(c *gin.Context) {
	date, err := dateParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	teachers, err := h.service.FindFreeTeachers(c.Request.Context(), date, models.LessonType(c.Query("lesson_type")))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.FreeTeacherItem, 0, len(teachers))
	for _, t := range teachers {
		items = append(items, dto.FreeTeacherItem{ID: t.ID, FullName: t.FullName, Email: t.Email})
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// PlanningDates godoc
// @Summary List the dates of the scheduling horizon
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /availability/dates [get]
func (h *AvailabilityHandler) PlanningDates(c *gin.Context) {
	dates := h.service.PlanningDates()
	items := make([]string, 0, len(dates))
	for _, d := range dates {
		items = append(items, d.Format("2006-01-02"))
	}
	response.JSON(c, http.StatusOK, items, nil)
}
