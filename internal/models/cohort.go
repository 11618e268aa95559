package models

import "time"

// Cohort groups students of one program and graduation year.
type Cohort struct {
	ID             string    `db:"id" json:"id"`
	ProgramID      string    `db:"program_id" json:"program_id"`
	Name           string    `db:"name" json:"name"`
	GraduationYear *int      `db:"graduation_year" json:"graduation_year,omitempty"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	Capacity       int       `db:"capacity" json:"capacity"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CohortMember is one roster entry: a student enrolled in the cohort's
// program/graduation-year. Roster order (enrolled_at, then student id) is the
// order capacity is allocated in during generation.
type CohortMember struct {
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	EnrolledAt  time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// CohortFilter provides filters for listing cohorts.
type CohortFilter struct {
	ProgramID      string
	GraduationYear *int
	Search         string
	Page           int
	PageSize       int
}
