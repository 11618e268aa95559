package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/clinedu/clined-api/internal/models"
)

// ErrDuplicateRotation signals that a rotation already exists for the
// (student, assignment) pair. The unique index backing it is the only
// concurrency control generation relies on.
var ErrDuplicateRotation = errors.New("rotation already exists for student and assignment")

const pqUniqueViolation = "23505"

// RotationRepository handles persistence of generated rotations.
type RotationRepository struct {
	db *sqlx.DB
}

// NewRotationRepository constructs the repository.
func NewRotationRepository(db *sqlx.DB) *RotationRepository {
	return &RotationRepository{db: db}
}

// Create persists one rotation. A unique violation on
// (student_id, cohort_rotation_assignment_id) is mapped to
// ErrDuplicateRotation; existing rows are never overwritten.
func (r *RotationRepository) Create(ctx context.Context, rotation *models.Rotation) error {
	if rotation.ID == "" {
		rotation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rotation.CreatedAt = now
	rotation.UpdatedAt = now
	if rotation.Status == "" {
		rotation.Status = models.RotationStatusScheduled
	}
	const query = `INSERT INTO rotations
        (id, student_id, cohort_rotation_assignment_id, clinical_site_id, start_date, end_date, required_hours, specialty, status, created_at, updated_at)
        VALUES (:id, :student_id, :cohort_rotation_assignment_id, :clinical_site_id, :start_date, :end_date, :required_hours, :specialty, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rotation); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ErrDuplicateRotation
		}
		return fmt.Errorf("create rotation: %w", err)
	}
	return nil
}

// ExistingStudentIDs returns the set of students that already have a rotation
// for the assignment.
func (r *RotationRepository) ExistingStudentIDs(ctx context.Context, assignmentID string) (map[string]bool, error) {
	const query = `SELECT student_id FROM rotations WHERE cohort_rotation_assignment_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list generated students: %w", err)
	}
	existing := make(map[string]bool, len(ids))
	for _, id := range ids {
		existing[id] = true
	}
	return existing, nil
}

// CountByAssignment returns how many rotations reference the assignment.
func (r *RotationRepository) CountByAssignment(ctx context.Context, assignmentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM rotations WHERE cohort_rotation_assignment_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, assignmentID); err != nil {
		return 0, fmt.Errorf("count rotations: %w", err)
	}
	return count, nil
}

// List returns rotations with student/site context filtered by the criteria.
func (r *RotationRepository) List(ctx context.Context, filter models.RotationFilter) ([]models.RotationDetail, int, error) {
	base := `FROM rotations r
JOIN users u ON u.id = r.student_id
LEFT JOIN clinical_sites s ON s.id = r.clinical_site_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("r.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.AssignmentID != "" {
		conditions = append(conditions, fmt.Sprintf("r.cohort_rotation_assignment_id = $%d", len(args)+1))
		args = append(args, filter.AssignmentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
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

	query := fmt.Sprintf(`SELECT r.id, r.student_id, r.cohort_rotation_assignment_id, r.clinical_site_id, r.start_date, r.end_date,
        r.required_hours, r.specialty, r.status, r.created_at, r.updated_at,
        u.full_name AS student_name, s.name AS site_name
        %s ORDER BY r.start_date DESC, u.full_name LIMIT %d OFFSET %d`, base+clause, size, offset)

	var rotations []models.RotationDetail
	if err := r.db.SelectContext(ctx, &rotations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rotations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rotations: %w", err)
	}
	return rotations, total, nil
}

// ListByAssignment returns every rotation generated from one assignment.
func (r *RotationRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.RotationDetail, error) {
	const query = `SELECT r.id, r.student_id, r.cohort_rotation_assignment_id, r.clinical_site_id, r.start_date, r.end_date,
        r.required_hours, r.specialty, r.status, r.created_at, r.updated_at,
        u.full_name AS student_name, s.name AS site_name
        FROM rotations r
        JOIN users u ON u.id = r.student_id
        LEFT JOIN clinical_sites s ON s.id = r.clinical_site_id
        WHERE r.cohort_rotation_assignment_id = $1
        ORDER BY u.full_name`
	var rotations []models.RotationDetail
	if err := r.db.SelectContext(ctx, &rotations, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list assignment rotations: %w", err)
	}
	return rotations, nil
}
