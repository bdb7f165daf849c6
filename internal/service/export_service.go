package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkurbatov/lessonhub-api/internal/catalog"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
	"github.com/mkurbatov/lessonhub-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders a teacher's day timetable as a downloadable file.
type ExportService struct {
	teacherRepo  AvailabilityTeacherRepository
	timelineRepo AvailabilityTimelineRepository
	registry     *catalog.Registry
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(
	teacherRepo AvailabilityTeacherRepository,
	timelineRepo AvailabilityTimelineRepository,
	registry *catalog.Registry,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		teacherRepo:  teacherRepo,
		timelineRepo: timelineRepo,
		registry:     registry,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

var timetableHeaders = []string{"Start", "End", "Lesson", "Capacity", "Overlap allowed", "Outside working hours"}

// Timetable renders every calendar entry of the teacher's day.
func (s *ExportService) Timetable(ctx context.Context, teacherID string, date time.Time, format ExportFormat) (*ExportResult, error) {
	teacher, err := s.teacherRepo.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	entries, err := s.timelineRepo.ListByTeacherAndRange(ctx, teacherID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timeline entries")
	}

	dataset := export.Dataset{Headers: timetableHeaders, Rows: make([]map[string]string, 0, len(entries))}
	for _, entry := range entries {
		name := string(entry.LessonType)
		if d, ok := s.registry.ByType(entry.LessonType); ok {
			name = d.Name
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Start":                 entry.Start.Format("15:04"),
			"End":                   entry.End.Format("15:04"),
			"Lesson":                name,
			"Capacity":              fmt.Sprintf("%d", entry.Capacity),
			"Overlap allowed":       boolLabel(entry.AllowOverlap),
			"Outside working hours": boolLabel(entry.AllowBesidesWorkingHours),
		})
	}

	day := date.Format("2006-01-02")
	base := fmt.Sprintf("timetable-%s-%s", slug(teacher.FullName), day)

	switch format {
	case ExportFormatCSV, "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{FileName: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case ExportFormatPDF:
		title := fmt.Sprintf("%s / %s", teacher.FullName, day)
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{FileName: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func boolLabel(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}
