package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinedu/clined-api/internal/models"
)

// ClinicalSiteRepository handles persistence of clinical sites.
type ClinicalSiteRepository struct {
	db *sqlx.DB
}

// NewClinicalSiteRepository constructs the repository.
func NewClinicalSiteRepository(db *sqlx.DB) *ClinicalSiteRepository {
	return &ClinicalSiteRepository{db: db}
}

// FindByID returns a site by its ID.
func (r *ClinicalSiteRepository) FindByID(ctx context.Context, id string) (*models.ClinicalSite, error) {
	const query = `SELECT id, name, address, city, capacity, active, created_at, updated_at FROM clinical_sites WHERE id = $1`
	var site models.ClinicalSite
	if err := r.db.GetContext(ctx, &site, query, id); err != nil {
		return nil, err
	}
	return &site, nil
}

// ListActive returns the active site directory.
func (r *ClinicalSiteRepository) ListActive(ctx context.Context) ([]models.ClinicalSite, error) {
	const query = `SELECT id, name, address, city, capacity, active, created_at, updated_at
        FROM clinical_sites WHERE active = true ORDER BY name`
	var sites []models.ClinicalSite
	if err := r.db.SelectContext(ctx, &sites, query); err != nil {
		return nil, fmt.Errorf("list clinical sites: %w", err)
	}
	return sites, nil
}

// Create persists a new clinical site.
func (r *ClinicalSiteRepository) Create(ctx context.Context, site *models.ClinicalSite) error {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	site.CreatedAt = now
	site.UpdatedAt = now
	site.Active = true
	const query = `INSERT INTO clinical_sites (id, name, address, city, capacity, active, created_at, updated_at)
        VALUES (:id, :name, :address, :city, :capacity, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, site); err != nil {
		return fmt.Errorf("create clinical site: %w", err)
	}
	return nil
}

// Update persists site field changes.
func (r *ClinicalSiteRepository) Update(ctx context.Context, site *models.ClinicalSite) error {
	site.UpdatedAt = time.Now().UTC()
	const query = `UPDATE clinical_sites SET name = :name, address = :address, city = :city, capacity = :capacity, active = :active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, site); err != nil {
		return fmt.Errorf("update clinical site: %w", err)
	}
	return nil
}
