package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clinedu/clined-api/internal/dto"
	"github.com/clinedu/clined-api/internal/models"
	"github.com/clinedu/clined-api/internal/repository"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

type rosterReader interface {
	Roster(ctx context.Context, cohortID string) ([]models.CohortMember, error)
}

type rotationWriter interface {
	Create(ctx context.Context, rotation *models.Rotation) error
	ExistingStudentIDs(ctx context.Context, assignmentID string) (map[string]bool, error)
}

type generationMetrics interface {
	RecordGeneration(created, skipped, failed int)
}

// GeneratorService expands a cohort rotation assignment into individual
// student rotations. Runs are idempotent: students that already hold a
// rotation for the assignment are skipped, and re-running after a partial
// failure only fills the gaps.
type GeneratorService struct {
	assignments assignmentRepository
	cohorts     rosterReader
	templates   templateReader
	rotations   rotationWriter
	audit       auditRecorder
	metrics     generationMetrics
	validator   *validator.Validate
	logger      *zap.Logger

	maxRosterSize int
}

// NewGeneratorService constructs GeneratorService. maxRosterSize bounds a
// single run; zero disables the bound.
func NewGeneratorService(assignments assignmentRepository, cohorts rosterReader, templates templateReader, rotations rotationWriter, audit auditRecorder, metrics generationMetrics, validate *validator.Validate, logger *zap.Logger, maxRosterSize int) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorService{
		assignments:   assignments,
		cohorts:       cohorts,
		templates:     templates,
		rotations:     rotations,
		audit:         audit,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		maxRosterSize: maxRosterSize,
	}
}

// Generate creates one rotation per eligible cohort member for the given
// assignment. One student's failure never aborts the run; it is recorded in
// the summary and the loop continues. When at least one rotation is created
// for a DRAFT assignment, the assignment advances to PUBLISHED.
func (s *GeneratorService) Generate(ctx context.Context, req dto.GenerateRotationsRequest, actor *models.JWTClaims) (*dto.GenerationSummary, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	assignment, err := s.assignments.FindByID(ctx, req.CohortRotationAssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "cannot generate rotations for a completed or cancelled assignment")
	}

	template, err := s.templates.FindByID(ctx, assignment.RotationTemplateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rotation template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotation template")
	}

	roster, err := s.cohorts.Roster(ctx, assignment.CohortID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort roster")
	}
	if s.maxRosterSize > 0 && len(roster) > s.maxRosterSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cohort roster exceeds the maximum size for a single generation run")
	}
	// Capacity is allocated in enrollment order regardless of how the roster
	// arrived, so two runs over the same data place the same students.
	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].EnrolledAt.Equal(roster[j].EnrolledAt) {
			return roster[i].StudentID < roster[j].StudentID
		}
		return roster[i].EnrolledAt.Before(roster[j].EnrolledAt)
	})

	existing, err := s.rotations.ExistingStudentIDs(ctx, assignment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generated rotations")
	}

	summary := &dto.GenerationSummary{Errors: []dto.GenerationError{}}
	// Rotations that survived earlier runs count against the cap.
	allocated := len(existing)

	for _, member := range roster {
		if existing[member.StudentID] {
			summary.Skipped++
			s.logSkip(assignment.ID, member.StudentID, dto.SkipReasonAlreadyGenerated)
			continue
		}
		if assignment.MaxStudents != nil && allocated >= *assignment.MaxStudents {
			summary.Skipped++
			s.logSkip(assignment.ID, member.StudentID, dto.SkipReasonCapacityReached)
			continue
		}
		rotation := &models.Rotation{
			StudentID:                  member.StudentID,
			CohortRotationAssignmentID: assignment.ID,
			ClinicalSiteID:             assignment.ClinicalSiteID,
			StartDate:                  assignment.StartDate,
			EndDate:                    assignment.EndDate,
			RequiredHours:              assignment.RequiredHours,
			Specialty:                  template.Specialty,
			Status:                     models.RotationStatusScheduled,
		}
		if err := s.rotations.Create(ctx, rotation); err != nil {
			if errors.Is(err, repository.ErrDuplicateRotation) {
				// A concurrent run placed this student first.
				summary.Skipped++
				allocated++
				s.logSkip(assignment.ID, member.StudentID, dto.SkipReasonAlreadyGenerated)
				continue
			}
			s.logger.Warn("rotation generation failed for student",
				zap.String("assignment_id", assignment.ID),
				zap.String("student_id", member.StudentID),
				zap.Error(err))
			summary.Errors = append(summary.Errors, dto.GenerationError{
				StudentID: member.StudentID,
				Reason:    err.Error(),
			})
			continue
		}
		summary.Created++
		allocated++
	}

	if summary.Created > 0 && assignment.Status == models.AssignmentStatusDraft {
		// Best effort; a concurrent publish leaves the row already PUBLISHED.
		if _, err := s.assignments.UpdateStatusIf(ctx, assignment.ID, models.AssignmentStatusDraft, models.AssignmentStatusPublished); err != nil {
			s.logger.Warn("failed to publish assignment after generation",
				zap.String("assignment_id", assignment.ID),
				zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordGeneration(summary.Created, summary.Skipped, len(summary.Errors))
	}
	s.emitGenerationAudit(ctx, actor, assignment.ID, summary)
	s.logger.Info("rotation generation finished",
		zap.String("assignment_id", assignment.ID),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Errors)))
	return summary, nil
}

func (s *GeneratorService) logSkip(assignmentID, studentID, reason string) {
	s.logger.Debug("rotation generation skipped student",
		zap.String("assignment_id", assignmentID),
		zap.String("student_id", studentID),
		zap.String("reason", reason))
}

func (s *GeneratorService) emitGenerationAudit(ctx context.Context, actor *models.JWTClaims, assignmentID string, summary *dto.GenerationSummary) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionRotationGenerate,
		Resource:   "cohort_rotation_assignment",
		ResourceID: &assignmentID,
		NewValues:  mustJSON(summary),
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("audit log write failed", zap.String("action", models.AuditActionRotationGenerate), zap.Error(err))
	}
}
