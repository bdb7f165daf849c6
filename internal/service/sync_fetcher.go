package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

// HTTPEventFetcher pulls a source's event batch from its feed URL. The feed
// is expected to answer with a JSON array of events.
type HTTPEventFetcher struct {
	client *http.Client
}

// NewHTTPEventFetcher constructs a fetcher with a sane request timeout.
func NewHTTPEventFetcher(client *http.Client) *HTTPEventFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPEventFetcher{client: client}
}

type feedEvent struct {
	ID          string    `json:"id"`
	ParentID    *string   `json:"parent_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
}

// FetchEvents downloads and decodes the source's current batch.
func (f *HTTPEventFetcher) FetchEvents(ctx context.Context, source models.EventSource) ([]models.ExternalEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", source.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s answered %d", source.URL, resp.StatusCode)
	}

	var raw []feedEvent
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", source.URL, err)
	}

	events := make([]models.ExternalEvent, 0, len(raw))
	for _, e := range raw {
		events = append(events, models.ExternalEvent{
			ID:          e.ID,
			SourceID:    source.ID,
			TeacherID:   source.TeacherID,
			ParentID:    e.ParentID,
			Start:       e.Start,
			End:         e.End,
			Description: e.Description,
		})
	}
	return events, nil
}
