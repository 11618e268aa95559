package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

type rotationReader interface {
	List(ctx context.Context, filter models.RotationFilter) ([]models.RotationDetail, int, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.RotationDetail, error)
}

// RotationService exposes read access to generated rotations.
type RotationService struct {
	repo   rotationReader
	logger *zap.Logger
}

// NewRotationService constructs RotationService.
func NewRotationService(repo rotationReader, logger *zap.Logger) *RotationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RotationService{repo: repo, logger: logger}
}

// List returns rotations with pagination metadata.
func (s *RotationService) List(ctx context.Context, filter models.RotationFilter) ([]models.RotationDetail, *models.Pagination, error) {
	rotations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rotations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return rotations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListByAssignment returns every rotation generated from one assignment.
func (s *RotationService) ListByAssignment(ctx context.Context, assignmentID string) ([]models.RotationDetail, error) {
	if assignmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignmentId is required")
	}
	rotations, err := s.repo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignment rotations")
	}
	return rotations, nil
}
