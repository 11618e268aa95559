package models

import "time"

// RotationStatus tracks a single student's placement independently of the
// assignment that produced it.
type RotationStatus string

const (
	RotationStatusScheduled  RotationStatus = "SCHEDULED"
	RotationStatusInProgress RotationStatus = "IN_PROGRESS"
	RotationStatusCompleted  RotationStatus = "COMPLETED"
	RotationStatusCancelled  RotationStatus = "CANCELLED"
)

// Rotation is one student's concrete clinical placement, produced exclusively
// by the rotation generator. At most one row may exist per
// (student_id, cohort_rotation_assignment_id) pair.
type Rotation struct {
	ID                         string         `db:"id" json:"id"`
	StudentID                  string         `db:"student_id" json:"student_id"`
	CohortRotationAssignmentID string         `db:"cohort_rotation_assignment_id" json:"cohort_rotation_assignment_id"`
	ClinicalSiteID             *string        `db:"clinical_site_id" json:"clinical_site_id,omitempty"`
	StartDate                  time.Time      `db:"start_date" json:"start_date"`
	EndDate                    time.Time      `db:"end_date" json:"end_date"`
	RequiredHours              int            `db:"required_hours" json:"required_hours"`
	Specialty                  string         `db:"specialty" json:"specialty"`
	Status                     RotationStatus `db:"status" json:"status"`
	CreatedAt                  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time      `db:"updated_at" json:"updated_at"`
}

// RotationDetail enriches a rotation with student and site names for list
// and export views.
type RotationDetail struct {
	Rotation
	StudentName string  `db:"student_name" json:"student_name"`
	SiteName    *string `db:"site_name" json:"site_name,omitempty"`
}

// RotationFilter provides filters for listing rotations.
type RotationFilter struct {
	StudentID    string
	AssignmentID string
	Status       RotationStatus
	Page         int
	PageSize     int
}
