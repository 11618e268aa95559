package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
	"github.com/clinedu/clined-api/pkg/export"
)

// Export formats accepted by the schedule export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type exportRotationReader interface {
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.RotationDetail, error)
}

type exportAssignmentReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.AssignmentDetail, error)
}

// ExportResult carries rendered bytes plus HTTP metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders rotation schedules as CSV or PDF downloads.
type ExportService struct {
	rotations   exportRotationReader
	assignments exportAssignmentReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	maxRows     int
	logger      *zap.Logger
}

// NewExportService constructs ExportService. maxRows bounds one export; zero
// disables the bound.
func NewExportService(rotations exportRotationReader, assignments exportAssignmentReader, maxRows int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		rotations:   rotations,
		assignments: assignments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		maxRows:     maxRows,
		logger:      logger,
	}
}

// RotationSchedule renders the rotation schedule for one assignment.
func (s *ExportService) RotationSchedule(ctx context.Context, assignmentID, format string) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	assignment, err := s.assignments.FindDetailByID(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	rotations, err := s.rotations.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotations for export")
	}
	if s.maxRows > 0 && len(rotations) > s.maxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule exceeds the maximum exportable size")
	}

	dataset := scheduleDataset(rotations)
	title := fmt.Sprintf("%s rotation schedule (%s)", assignment.CohortName, assignment.Specialty)

	switch format {
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("rotation-schedule-%s.pdf", assignmentID),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("rotation-schedule-%s.csv", assignmentID),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	}
}

func scheduleDataset(rotations []models.RotationDetail) export.Dataset {
	headers := []string{"Student", "Specialty", "Site", "Start", "End", "Required Hours", "Status"}
	rows := make([]map[string]string, 0, len(rotations))
	for _, rotation := range rotations {
		site := ""
		if rotation.SiteName != nil {
			site = *rotation.SiteName
		}
		rows = append(rows, map[string]string{
			"Student":        rotation.StudentName,
			"Specialty":      rotation.Specialty,
			"Site":           site,
			"Start":          rotation.StartDate.Format(dateLayout),
			"End":            rotation.EndDate.Format(dateLayout),
			"Required Hours": fmt.Sprintf("%d", rotation.RequiredHours),
			"Status":         string(rotation.Status),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
