package dto

// CreateCohortRequest defines the payload for creating a cohort.
type CreateCohortRequest struct {
	ProgramID      string `json:"programId" validate:"required"`
	Name           string `json:"name" validate:"required"`
	GraduationYear *int   `json:"graduationYear" validate:"omitempty,min=2000,max=2200"`
	StartDate      string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Capacity       int    `json:"capacity" validate:"required,min=1"`
}

// UpdateCohortRequest carries partial edits to a cohort.
type UpdateCohortRequest struct {
	Name           *string `json:"name"`
	GraduationYear *int    `json:"graduationYear" validate:"omitempty,min=2000,max=2200"`
	Capacity       *int    `json:"capacity" validate:"omitempty,min=1"`
}
