package models

import "time"

// AssignmentStatus is the lifecycle state of a cohort rotation assignment.
type AssignmentStatus string

// Assignment lifecycle states. COMPLETED and CANCELLED are terminal.
const (
	AssignmentStatusDraft     AssignmentStatus = "DRAFT"
	AssignmentStatusPublished AssignmentStatus = "PUBLISHED"
	AssignmentStatusCompleted AssignmentStatus = "COMPLETED"
	AssignmentStatusCancelled AssignmentStatus = "CANCELLED"
)

// assignmentTransitions is the single authority on status legality.
var assignmentTransitions = map[AssignmentStatus]map[AssignmentStatus]bool{
	AssignmentStatusDraft: {
		AssignmentStatusPublished: true,
		AssignmentStatusCancelled: true,
	},
	AssignmentStatusPublished: {
		AssignmentStatusCompleted: true,
		AssignmentStatusCancelled: true,
	},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to AssignmentStatus) bool {
	return assignmentTransitions[from][to]
}

// Terminal reports whether a status accepts no further transitions.
func (s AssignmentStatus) Terminal() bool {
	return len(assignmentTransitions[s]) == 0
}

// Valid reports whether the value is one of the known statuses.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusDraft, AssignmentStatusPublished, AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	}
	return false
}

// CohortRotationAssignment binds a rotation template to a cohort for a
// concrete date window. Generation expands it into one Rotation per student.
type CohortRotationAssignment struct {
	ID                 string           `db:"id" json:"id"`
	CohortID           string           `db:"cohort_id" json:"cohort_id"`
	RotationTemplateID string           `db:"rotation_template_id" json:"rotation_template_id"`
	ClinicalSiteID     *string          `db:"clinical_site_id" json:"clinical_site_id,omitempty"`
	StartDate          time.Time        `db:"start_date" json:"start_date"`
	EndDate            time.Time        `db:"end_date" json:"end_date"`
	RequiredHours      int              `db:"required_hours" json:"required_hours"`
	MaxStudents        *int             `db:"max_students" json:"max_students,omitempty"`
	Status             AssignmentStatus `db:"status" json:"status"`
	Notes              string           `db:"notes" json:"notes"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// AssignmentDetail enriches an assignment with cohort and template context.
type AssignmentDetail struct {
	CohortRotationAssignment
	CohortName string  `db:"cohort_name" json:"cohort_name"`
	Specialty  string  `db:"specialty" json:"specialty"`
	SiteName   *string `db:"site_name" json:"site_name,omitempty"`
}

// AssignmentFilter provides filters for listing assignments.
type AssignmentFilter struct {
	CohortID string
	Status   AssignmentStatus
	Page     int
	PageSize int
}
