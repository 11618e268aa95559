package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinedu/clined-api/internal/models"
)

// RotationTemplateRepository handles persistence of rotation templates.
type RotationTemplateRepository struct {
	db *sqlx.DB
}

// NewRotationTemplateRepository constructs the repository.
func NewRotationTemplateRepository(db *sqlx.DB) *RotationTemplateRepository {
	return &RotationTemplateRepository{db: db}
}

// FindByID returns a template by its ID.
func (r *RotationTemplateRepository) FindByID(ctx context.Context, id string) (*models.RotationTemplate, error) {
	const query = `SELECT id, program_id, specialty, default_duration_weeks, default_required_hours, default_clinical_site_id, created_at, updated_at
        FROM rotation_templates WHERE id = $1`
	var template models.RotationTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		return nil, err
	}
	return &template, nil
}

// ListByProgram returns the template catalog for a program.
func (r *RotationTemplateRepository) ListByProgram(ctx context.Context, programID string) ([]models.RotationTemplate, error) {
	const query = `SELECT id, program_id, specialty, default_duration_weeks, default_required_hours, default_clinical_site_id, created_at, updated_at
        FROM rotation_templates WHERE program_id = $1 ORDER BY specialty`
	var templates []models.RotationTemplate
	if err := r.db.SelectContext(ctx, &templates, query, programID); err != nil {
		return nil, fmt.Errorf("list rotation templates: %w", err)
	}
	return templates, nil
}

// Create persists a new rotation template.
func (r *RotationTemplateRepository) Create(ctx context.Context, template *models.RotationTemplate) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now
	const query = `INSERT INTO rotation_templates (id, program_id, specialty, default_duration_weeks, default_required_hours, default_clinical_site_id, created_at, updated_at)
        VALUES (:id, :program_id, :specialty, :default_duration_weeks, :default_required_hours, :default_clinical_site_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("create rotation template: %w", err)
	}
	return nil
}

// Update persists template field changes.
func (r *RotationTemplateRepository) Update(ctx context.Context, template *models.RotationTemplate) error {
	template.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rotation_templates SET specialty = :specialty, default_duration_weeks = :default_duration_weeks,
        default_required_hours = :default_required_hours, default_clinical_site_id = :default_clinical_site_id, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("update rotation template: %w", err)
	}
	return nil
}
