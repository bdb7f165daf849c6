package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/lessonhub-api/internal/models"
	"github.com/mkurbatov/lessonhub-api/internal/service"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
)

type availabilityServiceMock struct {
	slots    models.SlotList
	slotsErr error
	teachers []models.Teacher
	dates    []time.Time

	gotTeacherID string
	gotDate      time.Time
	gotOpts      service.SlotOptions
}

func (m *availabilityServiceMock) FindFreeSlots(ctx context.Context, teacherID string, date time.Time, opts service.SlotOptions) (models.SlotList, error) {
	m.gotTeacherID = teacherID
	m.gotDate = date
	m.gotOpts = opts
	return m.slots, m.slotsErr
}

func (m *availabilityServiceMock) FindFreeTeachers(ctx context.Context, date time.Time, lessonType models.LessonType) ([]models.Teacher, error) {
	m.gotDate = date
	return m.teachers, nil
}

func (m *availabilityServiceMock) PlanningDates() []time.Time {
	return m.dates
}

func testContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestFreeSlotsHandler(t *testing.T) {
	day := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	mock := &availabilityServiceMock{slots: models.SlotList{day.Add(13 * time.Hour), day.Add(13*time.Hour + 30*time.Minute)}}
	h := NewAvailabilityHandler(mock)

	c, w := testContext(t, http.MethodGet, "/teachers/t-1/slots?date=2026-01-05&granularity=30m&lesson_type=ordinary")
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	h.FreeSlots(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-1", mock.gotTeacherID)
	assert.Equal(t, day, mock.gotDate)
	assert.Equal(t, 30*time.Minute, mock.gotOpts.Granularity)
	assert.Equal(t, models.LessonTypeOrdinary, mock.gotOpts.LessonType)

	var payload struct {
		TeacherID string   `json:"teacher_id"`
		Works     bool     `json:"works"`
		Slots     []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &payload))
	assert.True(t, payload.Works)
	assert.Equal(t, []string{"13:00", "13:30"}, payload.Slots)
}

func TestFreeSlotsHandlerNonWorkingDay(t *testing.T) {
	mock := &availabilityServiceMock{slots: nil}
	h := NewAvailabilityHandler(mock)

	c, w := testContext(t, http.MethodGet, "/teachers/t-1/slots?date=2026-01-06")
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	h.FreeSlots(c)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Works bool     `json:"works"`
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &payload))
	assert.False(t, payload.Works)
	assert.Nil(t, payload.Slots)
}

func TestFreeSlotsHandlerMissingDate(t *testing.T) {
	h := NewAvailabilityHandler(&availabilityServiceMock{})

	c, w := testContext(t, http.MethodGet, "/teachers/t-1/slots")
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	h.FreeSlots(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFreeSlotsHandlerBadGranularity(t *testing.T) {
	h := NewAvailabilityHandler(&availabilityServiceMock{})

	c, w := testContext(t, http.MethodGet, "/teachers/t-1/slots?date=2026-01-05&granularity=banana")
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	h.FreeSlots(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFreeSlotsHandlerServiceError(t *testing.T) {
	mock := &availabilityServiceMock{slotsErr: appErrors.Clone(appErrors.ErrNotFound, "teacher not found")}
	h := NewAvailabilityHandler(mock)

	c, w := testContext(t, http.MethodGet, "/teachers/missing/slots?date=2026-01-05")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	h.FreeSlots(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "teacher not found")
}

func TestFreeTeachersHandler(t *testing.T) {
	mock := &availabilityServiceMock{teachers: []models.Teacher{
		{ID: "t-1", FullName: "First Teacher", Email: "first@school.example"},
	}}
	h := NewAvailabilityHandler(mock)

	c, w := testContext(t, http.MethodGet, "/availability/teachers?date=2026-01-05")
	h.FreeTeachers(c)

	require.Equal(t, http.StatusOK, w.Code)
	var items []struct {
		ID       string `json:"id"`
		FullName string `json:"full_name"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &items))
	require.Len(t, items, 1)
	assert.Equal(t, "t-1", items[0].ID)
}

func TestPlanningDatesHandler(t *testing.T) {
	day := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	mock := &availabilityServiceMock{dates: []time.Time{day, day.AddDate(0, 0, 1)}}
	h := NewAvailabilityHandler(mock)

	c, w := testContext(t, http.MethodGet, "/availability/dates")
	h.PlanningDates(c)

	require.Equal(t, http.StatusOK, w.Code)
	var dates []string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &dates))
	assert.Equal(t, []string{"2026-01-05", "2026-01-06"}, dates)
}
