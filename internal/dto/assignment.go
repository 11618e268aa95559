package dto

// CreateAssignmentRequest defines the payload for creating a cohort rotation
// assignment. Dates use the YYYY-MM-DD form.
type CreateAssignmentRequest struct {
	CohortID           string  `json:"cohortId" validate:"required"`
	RotationTemplateID string  `json:"rotationTemplateId" validate:"required"`
	ClinicalSiteID     *string `json:"clinicalSiteId"`
	StartDate          string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate            string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	RequiredHours      int     `json:"requiredHours" validate:"required,min=1"`
	MaxStudents        *int    `json:"maxStudents" validate:"omitempty,min=1"`
	Notes              string  `json:"notes"`
}

// UpdateAssignmentRequest carries partial edits to an assignment. Nil fields
// are left untouched.
type UpdateAssignmentRequest struct {
	ID             string  `json:"id" validate:"required"`
	ClinicalSiteID *string `json:"clinicalSiteId"`
	StartDate      *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate        *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	RequiredHours  *int    `json:"requiredHours" validate:"omitempty,min=1"`
	MaxStudents    *int    `json:"maxStudents" validate:"omitempty,min=1"`
	Notes          *string `json:"notes"`
}

// GenerateRotationsRequest triggers fan-out for one assignment.
type GenerateRotationsRequest struct {
	CohortRotationAssignmentID string `json:"cohortRotationAssignmentId" validate:"required"`
}

// GenerationError records one student the generator could not place.
type GenerationError struct {
	StudentID string `json:"studentId"`
	Reason    string `json:"reason"`
}

// GenerationSummary is the result of one generation run. Per-student failures
// land in Errors; the run itself still succeeds.
type GenerationSummary struct {
	Created int               `json:"created"`
	Skipped int               `json:"skipped"`
	Errors  []GenerationError `json:"errors"`
}

// Skip reasons reported in GenerationSummary.
const (
	SkipReasonAlreadyGenerated = "already generated"
	SkipReasonCapacityReached  = "capacity reached"
)
