package dto

// CreateSiteRequest defines the payload for registering a clinical site.
type CreateSiteRequest struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

// UpdateSiteRequest carries partial edits to a clinical site.
type UpdateSiteRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	Capacity *int    `json:"capacity" validate:"omitempty,min=1"`
	Active   *bool   `json:"active"`
}
