package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

type syncServiceMock struct {
	applied   bool
	err       error
	gotSource string
	gotEvents []models.ExternalEvent
}

func (m *syncServiceMock) ReplaceEvents(ctx context.Context, sourceID string, candidate []models.ExternalEvent) (bool, error) {
	m.gotSource = sourceID
	m.gotEvents = candidate
	return m.applied, m.err
}

func (m *syncServiceMock) SyncSource(ctx context.Context, sourceID string) (bool, error) {
	m.gotSource = sourceID
	return m.applied, m.err
}

type eventSourceReaderMock struct {
	sources []models.EventSource
	events  []models.ExternalEvent
}

func (m *eventSourceReaderMock) ListSources(ctx context.Context) ([]models.EventSource, error) {
	return m.sources, nil
}

func (m *eventSourceReaderMock) ListBySource(ctx context.Context, sourceID string) ([]models.ExternalEvent, error) {
	return m.events, nil
}

func TestReplaceEventsHandler(t *testing.T) {
	mock := &syncServiceMock{applied: true}
	h := NewSyncHandler(mock, &eventSourceReaderMock{})

	c, w := jsonContext(t, http.MethodPut, "/sync/sources/src-1/events",
		`{"events":[{"id":"ev-1","start":"2026-01-05T14:00:00Z","end":"2026-01-05T15:00:00Z","description":"weekly call"}]}`)
	c.Params = gin.Params{{Key: "id", Value: "src-1"}}
	h.ReplaceEvents(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "src-1", mock.gotSource)
	require.Len(t, mock.gotEvents, 1)
	assert.Equal(t, "src-1", mock.gotEvents[0].SourceID, "the path id wins over any payload source")

	var payload struct {
		SourceID string `json:"source_id"`
		Applied  bool   `json:"applied"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &payload))
	assert.True(t, payload.Applied)
}

func TestReplaceEventsHandlerRejectedBatch(t *testing.T) {
	mock := &syncServiceMock{applied: false}
	h := NewSyncHandler(mock, &eventSourceReaderMock{})

	c, w := jsonContext(t, http.MethodPut, "/sync/sources/src-1/events", `{"events":[]}`)
	c.Params = gin.Params{{Key: "id", Value: "src-1"}}
	h.ReplaceEvents(c)

	require.Equal(t, http.StatusOK, w.Code, "a rejected batch is still a successful request")
	var payload struct {
		Applied bool `json:"applied"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &payload))
	assert.False(t, payload.Applied)
}

func TestSyncSourceHandler(t *testing.T) {
	mock := &syncServiceMock{applied: true}
	h := NewSyncHandler(mock, &eventSourceReaderMock{})

	c, w := testContext(t, http.MethodPost, "/sync/sources/src-1/run")
	c.Params = gin.Params{{Key: "id", Value: "src-1"}}
	h.SyncSource(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "src-1", mock.gotSource)
}

func TestListSourcesHandler(t *testing.T) {
	reader := &eventSourceReaderMock{sources: []models.EventSource{
		{ID: "src-1", Name: "Google Calendar", TeacherID: "t-1"},
	}}
	h := NewSyncHandler(&syncServiceMock{}, reader)

	c, w := testContext(t, http.MethodGet, "/sync/sources")
	h.ListSources(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Google Calendar")
}
