package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clinedu/clined-api/internal/dto"
	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.CohortRotationAssignment) error
	FindByID(ctx context.Context, id string) (*models.CohortRotationAssignment, error)
	FindDetailByID(ctx context.Context, id string) (*models.AssignmentDetail, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error)
	Update(ctx context.Context, assignment *models.CohortRotationAssignment) error
	Delete(ctx context.Context, id string) error
	UpdateStatusIf(ctx context.Context, id string, from, to models.AssignmentStatus) (bool, error)
}

type cohortReader interface {
	FindByID(ctx context.Context, id string) (*models.Cohort, error)
}

type templateReader interface {
	FindByID(ctx context.Context, id string) (*models.RotationTemplate, error)
}

type siteReader interface {
	FindByID(ctx context.Context, id string) (*models.ClinicalSite, error)
}

type rotationCounter interface {
	CountByAssignment(ctx context.Context, assignmentID string) (int, error)
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AssignmentService orchestrates cohort rotation assignment lifecycles.
type AssignmentService struct {
	repo      assignmentRepository
	cohorts   cohortReader
	templates templateReader
	sites     siteReader
	rotations rotationCounter
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(repo assignmentRepository, cohorts cohortReader, templates templateReader, sites siteReader, rotations rotationCounter, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, cohorts: cohorts, templates: templates, sites: sites, rotations: rotations, audit: audit, validator: validate, logger: logger}
}

// List returns assignments with pagination metadata.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return assignments, pagination, nil
}

// Get returns one assignment with context.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return detail, nil
}

// Create binds a template to a cohort for a concrete date window. The new
// assignment always starts in DRAFT.
func (s *AssignmentService) Create(ctx context.Context, req dto.CreateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	start, end, err := parseDateWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	cohort, err := s.cohorts.FindByID(ctx, req.CohortID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cohort not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort")
	}
	template, err := s.templates.FindByID(ctx, req.RotationTemplateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rotation template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotation template")
	}
	if template.ProgramID != cohort.ProgramID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rotation template belongs to a different program than the cohort")
	}
	siteID := req.ClinicalSiteID
	if siteID == nil {
		siteID = template.DefaultClinicalSiteID
	}
	if siteID != nil {
		if err := s.ensureSite(ctx, *siteID); err != nil {
			return nil, err
		}
	}

	assignment := &models.CohortRotationAssignment{
		CohortID:           req.CohortID,
		RotationTemplateID: req.RotationTemplateID,
		ClinicalSiteID:     siteID,
		StartDate:          start,
		EndDate:            end,
		RequiredHours:      req.RequiredHours,
		MaxStudents:        req.MaxStudents,
		Status:             models.AssignmentStatusDraft,
		Notes:              req.Notes,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.emitAudit(ctx, actor, models.AuditActionAssignmentCreate, assignment.ID, assignment)
	return s.Get(ctx, assignment.ID)
}

// Update applies partial edits. Assignments in a terminal state reject edits.
func (s *AssignmentService) Update(ctx context.Context, req dto.UpdateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment, err := s.loadAssignment(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if assignment.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "assignment can no longer be edited")
	}

	if req.StartDate != nil {
		start, parseErr := time.Parse(dateLayout, *req.StartDate)
		if parseErr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
		}
		assignment.StartDate = start
	}
	if req.EndDate != nil {
		end, parseErr := time.Parse(dateLayout, *req.EndDate)
		if parseErr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
		}
		assignment.EndDate = end
	}
	if !assignment.StartDate.Before(assignment.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be before endDate")
	}
	if req.ClinicalSiteID != nil {
		if err := s.ensureSite(ctx, *req.ClinicalSiteID); err != nil {
			return nil, err
		}
		assignment.ClinicalSiteID = req.ClinicalSiteID
	}
	if req.RequiredHours != nil {
		assignment.RequiredHours = *req.RequiredHours
	}
	if req.MaxStudents != nil {
		// Existing rotations are untouched; the cap only gates future generation.
		assignment.MaxStudents = req.MaxStudents
	}
	if req.Notes != nil {
		assignment.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	s.emitAudit(ctx, actor, models.AuditActionAssignmentUpdate, assignment.ID, assignment)
	return s.Get(ctx, assignment.ID)
}

// Delete removes an assignment that has no generated rotations referencing it.
func (s *AssignmentService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.rotations.CountByAssignment(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check generated rotations")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "assignment has generated rotations and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.emitAudit(ctx, actor, models.AuditActionAssignmentDelete, assignment.ID, assignment)
	return nil
}

// Complete advances a published assignment to COMPLETED.
func (s *AssignmentService) Complete(ctx context.Context, id string, actor *models.JWTClaims) (*models.AssignmentDetail, error) {
	return s.transition(ctx, id, models.AssignmentStatusCompleted, models.AuditActionAssignmentComplete, actor)
}

// Cancel moves a draft or published assignment to CANCELLED.
func (s *AssignmentService) Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*models.AssignmentDetail, error) {
	return s.transition(ctx, id, models.AssignmentStatusCancelled, models.AuditActionAssignmentCancel, actor)
}

func (s *AssignmentService) transition(ctx context.Context, id string, to models.AssignmentStatus, action string, actor *models.JWTClaims) (*models.AssignmentDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(assignment.Status, to) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "transition not allowed from current status")
	}
	moved, err := s.repo.UpdateStatusIf(ctx, id, assignment.Status, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment status")
	}
	if !moved {
		// Lost the race against another administrator.
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "assignment status changed concurrently")
	}
	s.emitAudit(ctx, actor, action, id, map[string]interface{}{"from": assignment.Status, "to": to})
	return s.Get(ctx, id)
}

func (s *AssignmentService) loadAssignment(ctx context.Context, id string) (*models.CohortRotationAssignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

func (s *AssignmentService) ensureSite(ctx context.Context, siteID string) error {
	if s.sites == nil {
		return nil
	}
	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "clinical site not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clinical site")
	}
	if !site.Active {
		return appErrors.Clone(appErrors.ErrValidation, "clinical site is inactive")
	}
	return nil
}

func (s *AssignmentService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	values, _ := json.Marshal(payload)
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "cohort_rotation_assignment",
		ResourceID: &resourceID,
		NewValues:  values,
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}

func parseDateWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be before endDate")
	}
	return start, end, nil
}
