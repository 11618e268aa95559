package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clinedu/clined-api/internal/dto"
	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

type cohortRepository interface {
	FindByID(ctx context.Context, id string) (*models.Cohort, error)
	List(ctx context.Context, filter models.CohortFilter) ([]models.Cohort, int, error)
	Create(ctx context.Context, cohort *models.Cohort) error
	Update(ctx context.Context, cohort *models.Cohort) error
	Roster(ctx context.Context, cohortID string) ([]models.CohortMember, error)
}

type programReader interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// CohortService manages cohorts and their rosters.
type CohortService struct {
	repo      cohortRepository
	programs  programReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCohortService constructs CohortService.
func NewCohortService(repo cohortRepository, programs programReader, validate *validator.Validate, logger *zap.Logger) *CohortService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CohortService{repo: repo, programs: programs, validator: validate, logger: logger}
}

// List returns cohorts with pagination metadata.
func (s *CohortService) List(ctx context.Context, filter models.CohortFilter) ([]models.Cohort, *models.Pagination, error) {
	cohorts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cohorts")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return cohorts, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one cohort.
func (s *CohortService) Get(ctx context.Context, id string) (*models.Cohort, error) {
	cohort, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cohort not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort")
	}
	return cohort, nil
}

// Roster returns the cohort membership in enrollment order.
func (s *CohortService) Roster(ctx context.Context, id string) ([]models.CohortMember, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	members, err := s.repo.Roster(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve cohort roster")
	}
	return members, nil
}

// Create registers a new cohort under an existing program.
func (s *CohortService) Create(ctx context.Context, req dto.CreateCohortRequest) (*models.Cohort, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cohort payload")
	}
	start, end, err := parseDateWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	cohort := &models.Cohort{
		ProgramID:      req.ProgramID,
		Name:           req.Name,
		GraduationYear: req.GraduationYear,
		StartDate:      start,
		EndDate:        end,
		Capacity:       req.Capacity,
	}
	if err := s.repo.Create(ctx, cohort); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create cohort")
	}
	return cohort, nil
}

// Update applies partial edits to a cohort.
func (s *CohortService) Update(ctx context.Context, id string, req dto.UpdateCohortRequest) (*models.Cohort, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cohort payload")
	}
	cohort, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		cohort.Name = *req.Name
	}
	if req.GraduationYear != nil {
		cohort.GraduationYear = req.GraduationYear
	}
	if req.Capacity != nil {
		cohort.Capacity = *req.Capacity
	}
	cohort.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, cohort); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update cohort")
	}
	return cohort, nil
}
