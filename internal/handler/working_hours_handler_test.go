package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/lessonhub-api/internal/dto"
	"github.com/mkurbatov/lessonhub-api/internal/models"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
)

type workingHoursServiceMock struct {
	hours      []models.WorkingHours
	replaceErr error
	gotTeacher string
	gotReq     dto.ReplaceWorkingHoursRequest
}

func (m *workingHoursServiceMock) TeacherWorkingHours(ctx context.Context, teacherID string) ([]models.WorkingHours, error) {
	m.gotTeacher = teacherID
	return m.hours, nil
}

func (m *workingHoursServiceMock) ReplaceTeacherWorkingHours(ctx context.Context, teacherID string, req dto.ReplaceWorkingHoursRequest) error {
	m.gotTeacher = teacherID
	m.gotReq = req
	return m.replaceErr
}

func TestWorkingHoursListHandler(t *testing.T) {
	mock := &workingHoursServiceMock{hours: []models.WorkingHours{
		{ID: "wh-1", TeacherID: "t-1", Weekday: 1, Start: "09:00", End: "17:00"},
	}}
	h := NewWorkingHoursHandler(mock)

	c, w := testContext(t, http.MethodGet, "/teachers/t-1/working-hours")
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-1", mock.gotTeacher)
	assert.Contains(t, w.Body.String(), "09:00")
}

func TestWorkingHoursReplaceHandler(t *testing.T) {
	mock := &workingHoursServiceMock{hours: []models.WorkingHours{
		{ID: "wh-1", TeacherID: "t-1", Weekday: 2, Start: "10:00", End: "14:00"},
	}}
	h := NewWorkingHoursHandler(mock)

	c, w := jsonContext(t, http.MethodPut, "/teachers/t-1/working-hours",
		`{"items":[{"weekday":2,"start":"10:00","end":"14:00"}]}`)
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	h.Replace(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mock.gotReq.Items, 1)
	assert.Equal(t, 2, mock.gotReq.Items[0].Weekday)
	assert.Contains(t, w.Body.String(), "10:00", "the response reflects the stored set")
}

func TestWorkingHoursReplaceHandlerValidationError(t *testing.T) {
	mock := &workingHoursServiceMock{replaceErr: appErrors.Clone(appErrors.ErrValidation, "start must precede end")}
	h := NewWorkingHoursHandler(mock)

	c, w := jsonContext(t, http.MethodPut, "/teachers/t-1/working-hours",
		`{"items":[{"weekday":2,"start":"15:00","end":"14:00"}]}`)
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	h.Replace(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start must precede end")
}
