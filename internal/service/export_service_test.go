package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

type exportRotationsStub struct {
	rotations []models.RotationDetail
}

func (s *exportRotationsStub) ListByAssignment(ctx context.Context, assignmentID string) ([]models.RotationDetail, error) {
	return s.rotations, nil
}

type exportAssignmentStub struct {
	detail *models.AssignmentDetail
	err    error
}

func (s *exportAssignmentStub) FindDetailByID(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func exportFixture(rows int) *ExportService {
	site := "General Hospital"
	rotations := make([]models.RotationDetail, 0, rows)
	for i := 0; i < rows; i++ {
		rotations = append(rotations, models.RotationDetail{
			Rotation: models.Rotation{
				StudentID:     "student-1",
				StartDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
				EndDate:       time.Date(2026, 4, 24, 0, 0, 0, 0, time.UTC),
				RequiredHours: 160,
				Specialty:     "Cardiology",
				Status:        models.RotationStatusScheduled,
			},
			StudentName: "Dana Student",
			SiteName:    &site,
		})
	}
	assignments := &exportAssignmentStub{detail: &models.AssignmentDetail{
		CohortName: "Class of 2027",
		Specialty:  "Cardiology",
	}}
	return NewExportService(&exportRotationsStub{rotations: rotations}, assignments, 100, nil)
}

func TestExportScheduleCSV(t *testing.T) {
	svc := exportFixture(2)

	result, err := svc.RotationSchedule(context.Background(), "assignment-1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, result.FileName, ".csv")

	body := string(result.Content)
	assert.True(t, strings.HasPrefix(body, "Student,Specialty,Site,Start,End,Required Hours,Status"))
	assert.Contains(t, body, "Dana Student,Cardiology,General Hospital,2026-03-02,2026-04-24,160,SCHEDULED")
}

func TestExportSchedulePDF(t *testing.T) {
	svc := exportFixture(1)

	result, err := svc.RotationSchedule(context.Background(), "assignment-1", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportScheduleUnknownFormat(t *testing.T) {
	svc := exportFixture(1)

	_, err := svc.RotationSchedule(context.Background(), "assignment-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportScheduleRowBound(t *testing.T) {
	svc := exportFixture(101)

	_, err := svc.RotationSchedule(context.Background(), "assignment-1", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
