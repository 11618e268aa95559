package models

import "time"

// ClinicalSite is a placement location. Consulted but never mutated by
// rotation generation.
type ClinicalSite struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
