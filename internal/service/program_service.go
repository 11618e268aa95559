package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

type programRepository interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.Program, error)
}

// ProgramService exposes read access to the program catalog. Programs are
// reference data managed outside this API.
type ProgramService struct {
	repo   programRepository
	logger *zap.Logger
}

// NewProgramService constructs ProgramService.
func NewProgramService(repo programRepository, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, logger: logger}
}

// Get returns one program.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// ListBySchool returns the active programs of one school.
func (s *ProgramService) ListBySchool(ctx context.Context, schoolID string) ([]models.Program, error) {
	if schoolID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schoolId is required")
	}
	programs, err := s.repo.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}
