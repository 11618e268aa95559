package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinedu/clined-api/internal/models"
)

func scheduledRotation() *models.Rotation {
	return &models.Rotation{
		StudentID:                  "student-1",
		CohortRotationAssignmentID: "assignment-1",
		StartDate:                  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:                    time.Date(2026, 4, 24, 0, 0, 0, 0, time.UTC),
		RequiredHours:              160,
		Specialty:                  "Cardiology",
	}
}

func TestRotationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRotationRepository(db)

	mock.ExpectExec("INSERT INTO rotations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rotation := scheduledRotation()
	require.NoError(t, repo.Create(context.Background(), rotation))
	assert.NotEmpty(t, rotation.ID)
	assert.Equal(t, models.RotationStatusScheduled, rotation.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotationRepositoryCreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRotationRepository(db)

	mock.ExpectExec("INSERT INTO rotations").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "rotations_student_assignment_key"})

	err := repo.Create(context.Background(), scheduledRotation())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateRotation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotationRepositoryCreateKeepsOtherErrors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRotationRepository(db)

	mock.ExpectExec("INSERT INTO rotations").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "rotations_student_id_fkey"})

	err := repo.Create(context.Background(), scheduledRotation())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateRotation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotationRepositoryExistingStudentIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRotationRepository(db)

	rows := sqlmock.NewRows([]string{"student_id"}).
		AddRow("student-1").
		AddRow("student-2")
	mock.ExpectQuery("SELECT student_id FROM rotations WHERE cohort_rotation_assignment_id").
		WithArgs("assignment-1").
		WillReturnRows(rows)

	existing, err := repo.ExistingStudentIDs(context.Background(), "assignment-1")
	require.NoError(t, err)
	assert.Len(t, existing, 2)
	assert.True(t, existing["student-1"])
	assert.True(t, existing["student-2"])
	assert.False(t, existing["student-3"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotationRepositoryCountByAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRotationRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rotations WHERE cohort_rotation_assignment_id`).
		WithArgs("assignment-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByAssignment(context.Background(), "assignment-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
