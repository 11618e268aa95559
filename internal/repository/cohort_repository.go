package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinedu/clined-api/internal/models"
)

// CohortRepository handles persistence of cohorts and roster lookups.
type CohortRepository struct {
	db *sqlx.DB
}

// NewCohortRepository constructs the repository.
func NewCohortRepository(db *sqlx.DB) *CohortRepository {
	return &CohortRepository{db: db}
}

// FindByID returns a cohort by its ID.
func (r *CohortRepository) FindByID(ctx context.Context, id string) (*models.Cohort, error) {
	const query = `SELECT id, program_id, name, graduation_year, start_date, end_date, capacity, created_at, updated_at
        FROM cohorts WHERE id = $1`
	var cohort models.Cohort
	if err := r.db.GetContext(ctx, &cohort, query, id); err != nil {
		return nil, err
	}
	return &cohort, nil
}

// List returns cohorts filtered by the provided criteria.
func (r *CohortRepository) List(ctx context.Context, filter models.CohortFilter) ([]models.Cohort, int, error) {
	base := `FROM cohorts c`
	var conditions []string
	var args []interface{}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("c.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.GraduationYear != nil {
		conditions = append(conditions, fmt.Sprintf("c.graduation_year = $%d", len(args)+1))
		args = append(args, *filter.GraduationYear)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("c.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT c.id, c.program_id, c.name, c.graduation_year, c.start_date, c.end_date, c.capacity, c.created_at, c.updated_at
        %s ORDER BY c.start_date DESC, c.name LIMIT %d OFFSET %d`, base+clause, size, offset)

	var cohorts []models.Cohort
	if err := r.db.SelectContext(ctx, &cohorts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list cohorts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count cohorts: %w", err)
	}
	return cohorts, total, nil
}

// Create persists a new cohort.
func (r *CohortRepository) Create(ctx context.Context, cohort *models.Cohort) error {
	if cohort.ID == "" {
		cohort.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cohort.CreatedAt = now
	cohort.UpdatedAt = now
	const query = `INSERT INTO cohorts (id, program_id, name, graduation_year, start_date, end_date, capacity, created_at, updated_at)
        VALUES (:id, :program_id, :name, :graduation_year, :start_date, :end_date, :capacity, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cohort); err != nil {
		return fmt.Errorf("create cohort: %w", err)
	}
	return nil
}

// Update persists cohort field changes.
func (r *CohortRepository) Update(ctx context.Context, cohort *models.Cohort) error {
	cohort.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cohorts SET name = :name, graduation_year = :graduation_year, capacity = :capacity, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, cohort); err != nil {
		return fmt.Errorf("update cohort: %w", err)
	}
	return nil
}

// Roster resolves the cohort's membership: students enrolled in the cohort's
// program whose graduation year matches (when the cohort has one). Order is
// enrolled_at then student id so capacity allocation during generation is
// deterministic across retries.
func (r *CohortRepository) Roster(ctx context.Context, cohortID string) ([]models.CohortMember, error) {
	const query = `SELECT e.student_id, u.full_name AS student_name, e.enrolled_at
        FROM program_enrollments e
        JOIN cohorts c ON c.program_id = e.program_id
        JOIN users u ON u.id = e.student_id
        WHERE c.id = $1
          AND e.active = true
          AND (c.graduation_year IS NULL OR e.graduation_year = c.graduation_year)
        ORDER BY e.enrolled_at, e.student_id`
	var members []models.CohortMember
	if err := r.db.SelectContext(ctx, &members, query, cohortID); err != nil {
		return nil, fmt.Errorf("resolve cohort roster: %w", err)
	}
	return members, nil
}
