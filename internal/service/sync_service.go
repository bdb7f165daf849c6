package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/mkurbatov/lessonhub-api/internal/models"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
)

// SafeToReplace is the sync circuit-breaker: it decides whether the candidate
// batch may replace the stored one without risking mass event loss.
//
// A batch at least as large as the stored one is always safe. An empty batch
// replacing a non-empty one is never safe. In between, the candidate must be
// at least half the size of the stored batch's non-recurring portion:
// instances of a recurring series are excluded from the denominator because
// one upstream rule change can legitimately collapse many instances into few.
func SafeToReplace(old, candidate []models.ExternalEvent) bool {
	if len(candidate) >= len(old) {
		return true
	}
	if len(candidate) == 0 {
		return false
	}
	nonRecurring := 0
	for i := range old {
		if !old[i].Recurring() {
			nonRecurring++
		}
	}
	return len(candidate)*2 >= nonRecurring
}

// Notifier receives the unsafe-update signal emitted when the breaker trips.
// Delivery is a collaborator concern; the sync path only emits.
type Notifier interface {
	UnsafeCalendarUpdate(ctx context.Context, source models.EventSource, oldCount, newCount int)
}

// LogNotifier is the default Notifier: it writes the signal to the log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// UnsafeCalendarUpdate logs the rejected replacement.
func (n *LogNotifier) UnsafeCalendarUpdate(_ context.Context, source models.EventSource, oldCount, newCount int) {
	n.logger.Warn("unsafe calendar update rejected",
		zap.String("source_id", source.ID),
		zap.String("source_name", source.Name),
		zap.String("teacher_id", source.TeacherID),
		zap.Int("stored_events", oldCount),
		zap.Int("candidate_events", newCount))
}

// EventFetcher pulls the current event batch from an upstream calendar feed.
// The concrete client is out of process scope; sync only consumes its output.
type EventFetcher interface {
	FetchEvents(ctx context.Context, source models.EventSource) ([]models.ExternalEvent, error)
}

// SyncEventRepository covers event-source persistence for sync.
type SyncEventRepository interface {
	ListSources(ctx context.Context) ([]models.EventSource, error)
	FindSource(ctx context.Context, id string) (*models.EventSource, error)
	ListBySource(ctx context.Context, sourceID string) ([]models.ExternalEvent, error)
	ReplaceForSource(ctx context.Context, sourceID string, events []models.ExternalEvent) error
}

// SyncService replaces stored external-event batches behind the safety
// circuit-breaker. An unsafe batch is skipped and signalled, never an error.
type SyncService struct {
	eventRepo    SyncEventRepository
	fetcher      EventFetcher
	notifier     Notifier
	availability *AvailabilityService
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewSyncService constructs a sync service.
func NewSyncService(
	eventRepo SyncEventRepository,
	fetcher EventFetcher,
	notifier Notifier,
	availability *AvailabilityService,
	metrics *MetricsService,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		eventRepo:    eventRepo,
		fetcher:      fetcher,
		notifier:     notifier,
		availability: availability,
		metrics:      metrics,
		logger:       logger,
	}
}

// ReplaceEvents applies the candidate batch for the source when the breaker
// allows it. The boolean reports whether the replacement was applied; a
// tripped breaker is a normal outcome, not an error.
func (s *SyncService) ReplaceEvents(ctx context.Context, sourceID string, candidate []models.ExternalEvent) (bool, error) {
	source, err := s.eventRepo.FindSource(ctx, sourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "event source not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event source")
	}

	old, err := s.eventRepo.ListBySource(ctx, sourceID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stored events")
	}

	if !SafeToReplace(old, candidate) {
		s.metrics.RecordUnsafeUpdate()
		s.notifier.UnsafeCalendarUpdate(ctx, *source, len(old), len(candidate))
		return false, nil
	}

	if err := s.eventRepo.ReplaceForSource(ctx, sourceID, candidate); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace events")
	}

	s.availability.InvalidateTeacher(ctx, source.TeacherID)
	s.logger.Info("calendar events replaced",
		zap.String("source_id", sourceID),
		zap.Int("stored_events", len(old)),
		zap.Int("new_events", len(candidate)))
	return true, nil
}

// SyncSource fetches the source's current upstream batch and runs it through
// ReplaceEvents.
func (s *SyncService) SyncSource(ctx context.Context, sourceID string) (bool, error) {
	source, err := s.eventRepo.FindSource(ctx, sourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "event source not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event source")
	}
	if s.fetcher == nil {
		return false, appErrors.Clone(appErrors.ErrInternal, "no event fetcher configured")
	}

	candidate, err := s.fetcher.FetchEvents(ctx, *source)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch upstream events")
	}
	return s.ReplaceEvents(ctx, sourceID, candidate)
}

// SyncAll walks every registered source. A failing source is logged and
// skipped so one bad feed cannot stall the rest.
func (s *SyncService) SyncAll(ctx context.Context) error {
	sources, err := s.eventRepo.ListSources(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list event sources")
	}
	for _, source := range sources {
		if _, err := s.SyncSource(ctx, source.ID); err != nil {
			s.logger.Error("source sync failed",
				zap.String("source_id", source.ID),
				zap.Error(err))
		}
	}
	return nil
}
