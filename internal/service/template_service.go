package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clinedu/clined-api/internal/dto"
	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

type templateRepository interface {
	FindByID(ctx context.Context, id string) (*models.RotationTemplate, error)
	ListByProgram(ctx context.Context, programID string) ([]models.RotationTemplate, error)
	Create(ctx context.Context, template *models.RotationTemplate) error
	Update(ctx context.Context, template *models.RotationTemplate) error
}

// TemplateService manages the rotation template catalog.
type TemplateService struct {
	repo      templateRepository
	programs  programReader
	sites     siteReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTemplateService constructs TemplateService.
func NewTemplateService(repo templateRepository, programs programReader, sites siteReader, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{repo: repo, programs: programs, sites: sites, validator: validate, logger: logger}
}

// Get returns one rotation template.
func (s *TemplateService) Get(ctx context.Context, id string) (*models.RotationTemplate, error) {
	template, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rotation template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotation template")
	}
	return template, nil
}

// ListByProgram returns the template catalog for one program.
func (s *TemplateService) ListByProgram(ctx context.Context, programID string) ([]models.RotationTemplate, error) {
	if programID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "programId is required")
	}
	templates, err := s.repo.ListByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rotation templates")
	}
	return templates, nil
}

// Create registers a new rotation template.
func (s *TemplateService) Create(ctx context.Context, req dto.CreateTemplateRequest) (*models.RotationTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}
	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	if req.DefaultClinicalSiteID != nil {
		if err := s.ensureSite(ctx, *req.DefaultClinicalSiteID); err != nil {
			return nil, err
		}
	}

	template := &models.RotationTemplate{
		ProgramID:             req.ProgramID,
		Specialty:             req.Specialty,
		DefaultDurationWeeks:  req.DefaultDurationWeeks,
		DefaultRequiredHours:  req.DefaultRequiredHours,
		DefaultClinicalSiteID: req.DefaultClinicalSiteID,
	}
	if err := s.repo.Create(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create rotation template")
	}
	return template, nil
}

// Update applies partial edits to a rotation template.
func (s *TemplateService) Update(ctx context.Context, id string, req dto.UpdateTemplateRequest) (*models.RotationTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}
	template, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Specialty != nil {
		template.Specialty = *req.Specialty
	}
	if req.DefaultDurationWeeks != nil {
		template.DefaultDurationWeeks = *req.DefaultDurationWeeks
	}
	if req.DefaultRequiredHours != nil {
		template.DefaultRequiredHours = *req.DefaultRequiredHours
	}
	if req.DefaultClinicalSiteID != nil {
		if err := s.ensureSite(ctx, *req.DefaultClinicalSiteID); err != nil {
			return nil, err
		}
		template.DefaultClinicalSiteID = req.DefaultClinicalSiteID
	}
	if err := s.repo.Update(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update rotation template")
	}
	return template, nil
}

func (s *TemplateService) ensureSite(ctx context.Context, siteID string) error {
	if s.sites == nil {
		return nil
	}
	if _, err := s.sites.FindByID(ctx, siteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "clinical site not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clinical site")
	}
	return nil
}
