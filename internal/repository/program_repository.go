package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clinedu/clined-api/internal/models"
)

// ProgramRepository handles persistence of academic programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// FindByID returns a program by its ID.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, school_id, name, active, created_at, updated_at FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// ListBySchool returns active programs for a school.
func (r *ProgramRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Program, error) {
	const query = `SELECT id, school_id, name, active, created_at, updated_at
        FROM programs WHERE school_id = $1 AND active = true ORDER BY name`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, schoolID); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}
