package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mkurbatov/lessonhub-api/internal/catalog"
	"github.com/mkurbatov/lessonhub-api/internal/dto"
	"github.com/mkurbatov/lessonhub-api/internal/models"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
)

// txProvider starts the transactions that keep entitlement state and
// calendar state consistent.
type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// SchedulingClassRepository covers class persistence for scheduling.
type SchedulingClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindByIDWithTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error)
	UpdateWithTx(ctx context.Context, tx *sqlx.Tx, class *models.Class) error
}

// SchedulingTimelineRepository covers calendar persistence for scheduling.
type SchedulingTimelineRepository interface {
	FindByID(ctx context.Context, id string) (*models.TimelineEntry, error)
	CountAttached(ctx context.Context, entryID string) (int, error)
	CountAttachedWithTx(ctx context.Context, tx *sqlx.Tx, entryID string) (int, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, entry *models.TimelineEntry) error
	TouchWithTx(ctx context.Context, tx *sqlx.Tx, entryID string) error
	ListByTeacherAndRangeWithTx(ctx context.Context, tx *sqlx.Tx, teacherID string, from, to time.Time) ([]models.TimelineEntry, error)
}

// SchedulingTeacherRepository covers teacher lookups and locking for
// scheduling.
type SchedulingTeacherRepository interface {
	FindWorkingHours(ctx context.Context, teacherID string, weekday int) (*models.WorkingHours, error)
	LockWithTx(ctx context.Context, tx *sqlx.Tx, teacherID string) error
}

// SchedulingService is the state machine between an entitlement and a
// calendar entry. Every transition runs in one transaction under a
// per-teacher row lock so two entitlements can never race into overlapping
// entries.
type SchedulingService struct {
	db           txProvider
	classRepo    SchedulingClassRepository
	timelineRepo SchedulingTimelineRepository
	teacherRepo  SchedulingTeacherRepository
	registry     *catalog.Registry
	availability *AvailabilityService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewSchedulingService constructs a scheduling service.
func NewSchedulingService(
	db txProvider,
	classRepo SchedulingClassRepository,
	timelineRepo SchedulingTimelineRepository,
	teacherRepo SchedulingTeacherRepository,
	registry *catalog.Registry,
	availability *AvailabilityService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SchedulingService {
	if validate == nil {
		validate = validator.New()
	}
	return &SchedulingService{
		db:           db,
		classRepo:    classRepo,
		timelineRepo: timelineRepo,
		teacherRepo:  teacherRepo,
		registry:     registry,
		availability: availability,
		validator:    validate,
		logger:       logger,
	}
}

// CanBeScheduled is the read-only pre-flight for attaching the class to the
// entry. The same rules run again inside Assign's transaction; this exists so
// the UI can grey out impossible placements.
func (s *SchedulingService) CanBeScheduled(ctx context.Context, classID, entryID string) (bool, error) {
	class, err := s.findClass(ctx, classID)
	if err != nil {
		return false, err
	}
	entry, err := s.findEntry(ctx, entryID)
	if err != nil {
		return false, err
	}
	if class.Scheduled() || !class.Active {
		return false, nil
	}
	if class.LessonType != entry.LessonType {
		return false, nil
	}
	attached, err := s.timelineRepo.CountAttached(ctx, entry.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attached classes")
	}
	if !entry.HasRoom(attached) {
		return false, nil
	}
	fits, err := s.fitsWorkingHours(ctx, entry)
	if err != nil {
		return false, err
	}
	return fits, nil
}

// Assign attaches an existing calendar entry to the class.
func (s *SchedulingService) Assign(ctx context.Context, classID, entryID string) (class *models.Class, err error) {
	class, err = s.findClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	entry, err := s.findEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin scheduling transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.teacherRepo.LockWithTx(ctx, tx, entry.TeacherID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock teacher calendar")
	}

	// The rules run on a locked re-read, not the pre-transaction snapshot; a
	// concurrent transition that committed first is visible here.
	if class, err = s.findClassWithTx(ctx, tx, classID); err != nil {
		return nil, err
	}
	if class.Scheduled() || !class.Active {
		return nil, appErrors.ErrCannotBeScheduled
	}
	if class.LessonType != entry.LessonType {
		return nil, appErrors.Clone(appErrors.ErrCannotBeScheduled, "lesson type mismatch")
	}
	attached, countErr := s.timelineRepo.CountAttachedWithTx(ctx, tx, entry.ID)
	if countErr != nil {
		return nil, appErrors.Wrap(countErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attached classes")
	}
	if !entry.HasRoom(attached) {
		return nil, appErrors.Clone(appErrors.ErrCannotBeScheduled, "entry is full")
	}
	fits, fitErr := s.fitsWorkingHours(ctx, entry)
	if fitErr != nil {
		return nil, fitErr
	}
	if !fits {
		return nil, appErrors.Clone(appErrors.ErrCannotBeScheduled, "entry is outside working hours")
	}

	class.EntryID = &entry.ID
	if err = s.classRepo.UpdateWithTx(ctx, tx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	if err = s.timelineRepo.TouchWithTx(ctx, tx, entry.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timeline entry")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit scheduling")
	}

	s.availability.InvalidateTeacher(ctx, entry.TeacherID)
	s.logger.Info("class scheduled",
		zap.String("class_id", class.ID),
		zap.String("entry_id", entry.ID),
		zap.String("teacher_id", entry.TeacherID))
	return class, nil
}

// Schedule places the class on the teacher's calendar without a pre-existing
// entry. Only lesson types that do not demand a dedicated entry may take this
// path; the entry is constructed and persisted as part of the call.
func (s *SchedulingService) Schedule(ctx context.Context, classID string, req dto.ScheduleClassRequest) (class *models.Class, err error) {
	if err = s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling payload")
	}
	class, err = s.findClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	descriptor, ok := s.registry.ByType(class.LessonType)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lesson type")
	}
	if descriptor.RequiresEntry {
		return nil, appErrors.Clone(appErrors.ErrCannotBeScheduled, "lesson type requires an existing calendar entry")
	}

	allowOverlap := true
	if req.AllowOverlap != nil {
		allowOverlap = *req.AllowOverlap
	}
	entry := &models.TimelineEntry{
		TeacherID:                req.TeacherID,
		LessonType:               class.LessonType,
		Start:                    req.Start,
		End:                      req.Start.Add(descriptor.Duration),
		AllowOverlap:             allowOverlap,
		AllowBesidesWorkingHours: req.AllowBesidesWorkingHours,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin scheduling transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.teacherRepo.LockWithTx(ctx, tx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock teacher calendar")
	}

	if class, err = s.findClassWithTx(ctx, tx, classID); err != nil {
		return nil, err
	}
	if class.Scheduled() || !class.Active {
		return nil, appErrors.ErrCannotBeScheduled
	}
	fits, fitErr := s.fitsWorkingHours(ctx, entry)
	if fitErr != nil {
		return nil, fitErr
	}
	if !fits {
		return nil, appErrors.Clone(appErrors.ErrCannotBeScheduled, "slot is outside working hours")
	}
	if !entry.AllowOverlap {
		existing, listErr := s.timelineRepo.ListByTeacherAndRangeWithTx(ctx, tx, req.TeacherID, entry.Start, entry.End)
		if listErr != nil {
			return nil, appErrors.Wrap(listErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check calendar overlap")
		}
		if len(existing) > 0 {
			return nil, appErrors.Clone(appErrors.ErrCannotBeScheduled, "slot overlaps an existing entry")
		}
	}

	if err = s.timelineRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timeline entry")
	}
	class.EntryID = &entry.ID
	if err = s.classRepo.UpdateWithTx(ctx, tx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit scheduling")
	}

	s.availability.InvalidateTeacher(ctx, req.TeacherID)
	s.logger.Info("class scheduled without prior entry",
		zap.String("class_id", class.ID),
		zap.String("entry_id", entry.ID),
		zap.String("teacher_id", req.TeacherID),
		zap.Time("start", entry.Start))
	return class, nil
}

// Unschedule detaches the class from its calendar entry. The entry itself is
// kept; other classes attached to a group entry still reference it.
func (s *SchedulingService) Unschedule(ctx context.Context, classID string) (class *models.Class, err error) {
	class, err = s.findClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !class.Scheduled() {
		return nil, appErrors.ErrCannotBeUnscheduled
	}
	entry, err := s.findEntry(ctx, *class.EntryID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin scheduling transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.teacherRepo.LockWithTx(ctx, tx, entry.TeacherID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock teacher calendar")
	}

	if class, err = s.findClassWithTx(ctx, tx, classID); err != nil {
		return nil, err
	}
	if !class.Scheduled() {
		return nil, appErrors.ErrCannotBeUnscheduled
	}
	entryID := *class.EntryID

	class.EntryID = nil
	if err = s.classRepo.UpdateWithTx(ctx, tx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	if err = s.timelineRepo.TouchWithTx(ctx, tx, entryID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timeline entry")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit unscheduling")
	}

	s.availability.InvalidateTeacher(ctx, entry.TeacherID)
	s.logger.Info("class unscheduled",
		zap.String("class_id", class.ID),
		zap.String("entry_id", entryID))
	return class, nil
}

// fitsWorkingHours checks the entry against the teacher's template for its
// date, honouring the override flag.
func (s *SchedulingService) fitsWorkingHours(ctx context.Context, entry *models.TimelineEntry) (bool, error) {
	if entry.AllowBesidesWorkingHours {
		return true, nil
	}
	hours, err := s.teacherRepo.FindWorkingHours(ctx, entry.TeacherID, int(entry.Start.Weekday()))
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve working hours")
	}
	if hours == nil {
		return false, nil
	}
	window, err := hours.WindowOn(entry.Start)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid working hours template")
	}
	return window.Contains(entry.Start, entry.End), nil
}

func (s *SchedulingService) findClassWithTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error) {
	class, err := s.classRepo.FindByIDWithTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

func (s *SchedulingService) findClass(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

func (s *SchedulingService) findEntry(ctx context.Context, id string) (*models.TimelineEntry, error) {
	entry, err := s.timelineRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timeline entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeline entry")
	}
	return entry, nil
}
