package models

import "time"

// RotationTemplate is a reusable rotation definition per program. The
// generator treats templates as read-only reference data.
type RotationTemplate struct {
	ID                    string    `db:"id" json:"id"`
	ProgramID             string    `db:"program_id" json:"program_id"`
	Specialty             string    `db:"specialty" json:"specialty"`
	DefaultDurationWeeks  int       `db:"default_duration_weeks" json:"default_duration_weeks"`
	DefaultRequiredHours  int       `db:"default_required_hours" json:"default_required_hours"`
	DefaultClinicalSiteID *string   `db:"default_clinical_site_id" json:"default_clinical_site_id,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}
