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

const siteDirectoryCacheKey = "clined:sites:active"

type siteRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClinicalSite, error)
	ListActive(ctx context.Context) ([]models.ClinicalSite, error)
	Create(ctx context.Context, site *models.ClinicalSite) error
	Update(ctx context.Context, site *models.ClinicalSite) error
}

type siteCache interface {
	GetJSON(ctx context.Context, key string, target interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SiteService manages the clinical site directory. The active directory is
// read far more often than it changes, so it is served from Redis when a
// cache is configured.
type SiteService struct {
	repo      siteRepository
	cache     siteCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSiteService constructs SiteService. cache may be nil to disable caching.
func NewSiteService(repo siteRepository, cache siteCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SiteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &SiteService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Get returns one clinical site.
func (s *SiteService) Get(ctx context.Context, id string) (*models.ClinicalSite, error) {
	site, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "clinical site not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clinical site")
	}
	return site, nil
}

// Directory returns the active site directory, cache first.
func (s *SiteService) Directory(ctx context.Context) ([]models.ClinicalSite, error) {
	if s.cache != nil {
		var cached []models.ClinicalSite
		hit, err := s.cache.GetJSON(ctx, siteDirectoryCacheKey, &cached)
		if err != nil {
			s.logger.Warn("site directory cache read failed", zap.Error(err))
		}
		if hit {
			return cached, nil
		}
	}

	sites, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clinical sites")
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, siteDirectoryCacheKey, sites, s.cacheTTL); err != nil {
			s.logger.Warn("site directory cache write failed", zap.Error(err))
		}
	}
	return sites, nil
}

// Create registers a clinical site and invalidates the directory cache.
func (s *SiteService) Create(ctx context.Context, req dto.CreateSiteRequest) (*models.ClinicalSite, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid site payload")
	}
	site := &models.ClinicalSite{
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		Capacity: req.Capacity,
	}
	if err := s.repo.Create(ctx, site); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create clinical site")
	}
	s.invalidateDirectory(ctx)
	return site, nil
}

// Update applies partial edits and invalidates the directory cache.
func (s *SiteService) Update(ctx context.Context, id string, req dto.UpdateSiteRequest) (*models.ClinicalSite, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid site payload")
	}
	site, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		site.Name = *req.Name
	}
	if req.Address != nil {
		site.Address = *req.Address
	}
	if req.City != nil {
		site.City = *req.City
	}
	if req.Capacity != nil {
		site.Capacity = *req.Capacity
	}
	if req.Active != nil {
		site.Active = *req.Active
	}
	if err := s.repo.Update(ctx, site); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update clinical site")
	}
	s.invalidateDirectory(ctx)
	return site, nil
}

func (s *SiteService) invalidateDirectory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, siteDirectoryCacheKey); err != nil {
		s.logger.Warn("site directory cache invalidation failed", zap.Error(err))
	}
}
