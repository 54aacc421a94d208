package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/derslik/derslik-api/internal/models"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
	"github.com/derslik/derslik-api/pkg/export"
)

type exportLessonRepository interface {
	ListUpcoming(ctx context.Context, from, to time.Time) ([]models.LessonDetail, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult is a rendered schedule export ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the lesson schedule over a date range into CSV or
// PDF for download.
type ExportService struct {
	repo   exportLessonRepository
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(repo exportLessonRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{repo: repo, csv: csv, pdf: pdf, logger: logger}
}

// Schedule renders the lessons starting inside [from, to).
func (s *ExportService) Schedule(ctx context.Context, format ExportFormat, from, to time.Time) (*ExportResult, error) {
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "export range must end after it starts")
	}

	lessons, err := s.repo.ListUpcoming(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}

	dataset := buildScheduleDataset(lessons)
	title := fmt.Sprintf("Lesson Schedule %s - %s", from.Format("2006-01-02"), to.AddDate(0, 0, -1).Format("2006-01-02"))
	stamp := time.Now().UTC().Format("20060102_150405")

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("schedule_%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("schedule_%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func buildScheduleDataset(lessons []models.LessonDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(lessons))
	for _, lesson := range lessons {
		student := ""
		if lesson.StudentName != nil {
			student = *lesson.StudentName
		}
		series := ""
		if lesson.IsRecurring() {
			series = fmt.Sprintf("%s #%d", *lesson.SeriesID, lesson.SequenceNumber)
		}
		rows = append(rows, map[string]string{
			"Date":    lesson.StartTime.Format("2006-01-02"),
			"Start":   lesson.StartTime.Format("15:04"),
			"End":     lesson.EndTime.Format("15:04"),
			"Title":   lesson.Title,
			"Student": student,
			"Series":  series,
		})
	}
	return export.Dataset{
		Headers: []string{"Date", "Start", "End", "Title", "Student", "Series"},
		Rows:    rows,
	}
}
