package dto

// CreateTemplateRequest defines the payload for creating a rotation template.
type CreateTemplateRequest struct {
	ProgramID             string  `json:"programId" validate:"required"`
	Specialty             string  `json:"specialty" validate:"required"`
	DefaultDurationWeeks  int     `json:"defaultDurationWeeks" validate:"required,min=1,max=52"`
	DefaultRequiredHours  int     `json:"defaultRequiredHours" validate:"required,min=1"`
	DefaultClinicalSiteID *string `json:"defaultClinicalSiteId"`
}

// UpdateTemplateRequest carries partial edits to a rotation template.
type UpdateTemplateRequest struct {
	Specialty             *string `json:"specialty"`
	DefaultDurationWeeks  *int    `json:"defaultDurationWeeks" validate:"omitempty,min=1,max=52"`
	DefaultRequiredHours  *int    `json:"defaultRequiredHours" validate:"omitempty,min=1"`
	DefaultClinicalSiteID *string `json:"defaultClinicalSiteId"`
}
