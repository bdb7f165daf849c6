package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mkurbatov/lessonhub-api/internal/catalog"
	"github.com/mkurbatov/lessonhub-api/internal/dto"
	"github.com/mkurbatov/lessonhub-api/internal/models"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
)

// AvailabilityTeacherRepository covers the teacher lookups the slot finder
// needs.
type AvailabilityTeacherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListWithWorkingHours(ctx context.Context) ([]models.Teacher, error)
	FindWorkingHours(ctx context.Context, teacherID string, weekday int) (*models.WorkingHours, error)
	ListWorkingHours(ctx context.Context, teacherID string) ([]models.WorkingHours, error)
	ReplaceWorkingHours(ctx context.Context, teacherID string, hours []models.WorkingHours) error
}

// AvailabilityTimelineRepository covers the calendar reads the slot finder
// needs.
type AvailabilityTimelineRepository interface {
	ListByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]models.TimelineEntry, error)
}

// SlotOptions tunes one free-slot computation. Zero values fall back to the
// service defaults.
type SlotOptions struct {
	Granularity time.Duration
	LessonType  models.LessonType
}

// AvailabilityService computes free slots and free teachers from weekly
// working-hours templates and existing calendar entries. Results are
// recomputed per call; the cache layer is an optional read-through on top.
type AvailabilityService struct {
	teacherRepo  AvailabilityTeacherRepository
	timelineRepo AvailabilityTimelineRepository
	registry     *catalog.Registry
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	granularity  time.Duration
	planningDays int
	now          func() time.Time
}

// NewAvailabilityService constructs an availability service.
func NewAvailabilityService(
	teacherRepo AvailabilityTeacherRepository,
	timelineRepo AvailabilityTimelineRepository,
	registry *catalog.Registry,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	granularity time.Duration,
	planningDays int,
) *AvailabilityService {
	if granularity <= 0 {
		granularity = 30 * time.Minute
	}
	if planningDays <= 0 {
		planningDays = 7
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AvailabilityService{
		teacherRepo:  teacherRepo,
		timelineRepo: timelineRepo,
		registry:     registry,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		granularity:  granularity,
		planningDays: planningDays,
		now:          time.Now,
	}
}

// WithClock overrides the time source. Slot generation itself is pure; the
// clock only feeds planning-horizon defaults.
func (s *AvailabilityService) WithClock(now func() time.Time) *AvailabilityService {
	s.now = now
	return s
}

// WorkingHoursFor resolves the teacher's template for the date's weekday onto
// concrete datetimes. (nil, nil) means the teacher does not work that day.
func (s *AvailabilityService) WorkingHoursFor(ctx context.Context, teacherID string, date time.Time) (*models.TimeWindow, error) {
	hours, err := s.teacherRepo.FindWorkingHours(ctx, teacherID, int(date.Weekday()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve working hours")
	}
	if hours == nil {
		return nil, nil
	}
	window, err := hours.WindowOn(date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid working hours template")
	}
	return window, nil
}

// cachedSlots distinguishes "no working hours" from "fully booked" in the
// cache payload.
type cachedSlots struct {
	Works bool        `json:"works"`
	Slots []time.Time `json:"slots"`
}

// FindFreeSlots returns the ordered bookable start times for the teacher on
// the given date. A nil result means the teacher does not work that day; an
// empty one means every slot is taken.
func (s *AvailabilityService) FindFreeSlots(ctx context.Context, teacherID string, date time.Time, opts SlotOptions) (models.SlotList, error) {
	if _, err := s.teacherRepo.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	key := s.slotsCacheKey(teacherID, date, opts)
	var cached cachedSlots
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		if !cached.Works {
			return nil, nil
		}
		if cached.Slots == nil {
			return models.SlotList{}, nil
		}
		return models.SlotList(cached.Slots), nil
	}

	slots, err := s.computeSlots(ctx, teacherID, date, opts)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, cachedSlots{Works: slots != nil, Slots: slots}, 0); err != nil && s.logger != nil {
		s.logger.Debug("caching slots failed", zap.String("teacher_id", teacherID), zap.Error(err))
	}
	return slots, nil
}

// computeSlots enumerates granularity-spaced starts inside the working-hours
// window and drops every start whose interval overlaps a blocking entry.
func (s *AvailabilityService) computeSlots(ctx context.Context, teacherID string, date time.Time, opts SlotOptions) (models.SlotList, error) {
	s.metrics.RecordSlotLookup()

	window, err := s.WorkingHoursFor(ctx, teacherID, date)
	if err != nil {
		return nil, err
	}
	if window == nil {
		return nil, nil
	}

	step := opts.Granularity
	if step <= 0 {
		step = s.granularity
	}
	duration := step
	if opts.LessonType != "" {
		duration = s.registry.Duration(opts.LessonType, step)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	entries, err := s.timelineRepo.ListByTeacherAndRange(ctx, teacherID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timeline entries")
	}

	blockers := entries
	if opts.LessonType != "" {
		filtered := make([]models.TimelineEntry, 0, len(entries))
		for _, entry := range entries {
			if entry.LessonType == opts.LessonType {
				filtered = append(filtered, entry)
			}
		}
		blockers = filtered
	}

	slots := models.SlotList{}
	for start := window.Start; start.Before(window.End); start = start.Add(step) {
		end := start.Add(duration)
		free := true
		for i := range blockers {
			if blockers[i].Overlaps(start, end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, start)
		}
	}
	return slots, nil
}

// FindFreeTeachers returns every teacher with at least one free slot on the
// date. Teachers who do not work that day or are fully booked are excluded.
func (s *AvailabilityService) FindFreeTeachers(ctx context.Context, date time.Time, lessonType models.LessonType) ([]models.Teacher, error) {
	teachers, err := s.teacherRepo.ListWithWorkingHours(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}

	free := make([]models.Teacher, 0, len(teachers))
	for _, teacher := range teachers {
		slots, err := s.computeSlots(ctx, teacher.ID, date, SlotOptions{LessonType: lessonType})
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			free = append(free, teacher)
		}
	}
	return free, nil
}

// PlanningDates returns the dates of the scheduling horizon starting today.
func (s *AvailabilityService) PlanningDates() []time.Time {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dates := make([]time.Time, s.planningDays)
	for i := range dates {
		dates[i] = today.AddDate(0, 0, i)
	}
	return dates
}

// TeacherWorkingHours lists the teacher's weekly templates.
func (s *AvailabilityService) TeacherWorkingHours(ctx context.Context, teacherID string) ([]models.WorkingHours, error) {
	if _, err := s.teacherRepo.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	hours, err := s.teacherRepo.ListWorkingHours(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list working hours")
	}
	return hours, nil
}

// ReplaceTeacherWorkingHours swaps the teacher's weekly template set and
// drops the teacher's cached availability.
func (s *AvailabilityService) ReplaceTeacherWorkingHours(ctx context.Context, teacherID string, req dto.ReplaceWorkingHoursRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid working hours payload")
	}
	if _, err := s.teacherRepo.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	hours := make([]models.WorkingHours, 0, len(req.Items))
	for _, item := range req.Items {
		h := models.WorkingHours{TeacherID: teacherID, Weekday: item.Weekday, Start: item.Start, End: item.End}
		if err := validateWorkingHours(h); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid working hours payload")
		}
		hours = append(hours, h)
	}
	if err := s.teacherRepo.ReplaceWorkingHours(ctx, teacherID, hours); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace working hours")
	}
	s.InvalidateTeacher(ctx, teacherID)
	return nil
}

// InvalidateTeacher drops the teacher's cached availability after a calendar
// change.
func (s *AvailabilityService) InvalidateTeacher(ctx context.Context, teacherID string) {
	if err := s.cache.Invalidate(ctx, availabilityCachePattern(teacherID)); err != nil && s.logger != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}

func (s *AvailabilityService) slotsCacheKey(teacherID string, date time.Time, opts SlotOptions) string {
	step := opts.Granularity
	if step <= 0 {
		step = s.granularity
	}
	return fmt.Sprintf("availability:%s:%s:%s:%s", teacherID, date.Format("2006-01-02"), step, opts.LessonType)
}

func availabilityCachePattern(teacherID string) string {
	return fmt.Sprintf("availability:%s:*", teacherID)
}

func validateWorkingHours(h models.WorkingHours) error {
	if h.Weekday < 0 || h.Weekday > 6 {
		return fmt.Errorf("weekday %d out of range", h.Weekday)
	}
	start, err := time.Parse("15:04", h.Start)
	if err != nil {
		return fmt.Errorf("start time %q: %w", h.Start, err)
	}
	end, err := time.Parse("15:04", h.End)
	if err != nil {
		return fmt.Errorf("end time %q: %w", h.End, err)
	}
	if !start.Before(end) {
		return fmt.Errorf("start %q must precede end %q", h.Start, h.End)
	}
	return nil
}
