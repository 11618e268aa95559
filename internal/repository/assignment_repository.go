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

// AssignmentRepository handles persistence of cohort rotation assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create persists a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.CohortRotationAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusDraft
	}
	const query = `INSERT INTO cohort_rotation_assignments
        (id, cohort_id, rotation_template_id, clinical_site_id, start_date, end_date, required_hours, max_students, status, notes, created_at, updated_at)
        VALUES (:id, :cohort_id, :rotation_template_id, :clinical_site_id, :start_date, :end_date, :required_hours, :max_students, :status, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment by its ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.CohortRotationAssignment, error) {
	const query = `SELECT id, cohort_id, rotation_template_id, clinical_site_id, start_date, end_date, required_hours, max_students, status, notes, created_at, updated_at
        FROM cohort_rotation_assignments WHERE id = $1`
	var assignment models.CohortRotationAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindDetailByID returns an assignment with cohort and template context.
func (r *AssignmentRepository) FindDetailByID(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	const query = `SELECT a.id, a.cohort_id, a.rotation_template_id, a.clinical_site_id, a.start_date, a.end_date,
        a.required_hours, a.max_students, a.status, a.notes, a.created_at, a.updated_at,
        c.name AS cohort_name, t.specialty, s.name AS site_name
        FROM cohort_rotation_assignments a
        JOIN cohorts c ON c.id = a.cohort_id
        JOIN rotation_templates t ON t.id = a.rotation_template_id
        LEFT JOIN clinical_sites s ON s.id = a.clinical_site_id
        WHERE a.id = $1`
	var detail models.AssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns assignments filtered by the provided criteria.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error) {
	base := `FROM cohort_rotation_assignments a
JOIN cohorts c ON c.id = a.cohort_id
JOIN rotation_templates t ON t.id = a.rotation_template_id
LEFT JOIN clinical_sites s ON s.id = a.clinical_site_id`
	var conditions []string
	var args []interface{}

	if filter.CohortID != "" {
		conditions = append(conditions, fmt.Sprintf("a.cohort_id = $%d", len(args)+1))
		args = append(args, filter.CohortID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf(`SELECT a.id, a.cohort_id, a.rotation_template_id, a.clinical_site_id, a.start_date, a.end_date,
        a.required_hours, a.max_students, a.status, a.notes, a.created_at, a.updated_at,
        c.name AS cohort_name, t.specialty, s.name AS site_name
        %s ORDER BY a.start_date DESC, a.created_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// Update persists editable assignment fields.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.CohortRotationAssignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cohort_rotation_assignments SET clinical_site_id = :clinical_site_id, start_date = :start_date,
        end_date = :end_date, required_hours = :required_hours, max_students = :max_students, notes = :notes, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment row.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM cohort_rotation_assignments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// UpdateStatusIf applies a status transition as a single conditional write.
// It reports whether the row actually moved, so two administrators racing the
// same transition cannot both win.
func (r *AssignmentRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.AssignmentStatus) (bool, error) {
	const query = `UPDATE cohort_rotation_assignments SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("transition assignment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition assignment status: %w", err)
	}
	return affected == 1, nil
}
