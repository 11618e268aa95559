package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCohortRepositoryRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCohortRepository(db)

	enrolled := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"student_id", "student_name", "enrolled_at"}).
		AddRow("student-1", "Avery Student", enrolled).
		AddRow("student-2", "Blake Student", enrolled.Add(24*time.Hour))
	mock.ExpectQuery("SELECT e.student_id, u.full_name AS student_name, e.enrolled_at").
		WithArgs("cohort-1").
		WillReturnRows(rows)

	members, err := repo.Roster(context.Background(), "cohort-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "student-1", members[0].StudentID)
	assert.Equal(t, "Avery Student", members[0].StudentName)
	assert.Equal(t, "student-2", members[1].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCohortRepositoryRosterEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCohortRepository(db)

	mock.ExpectQuery("SELECT e.student_id, u.full_name AS student_name, e.enrolled_at").
		WithArgs("cohort-empty").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "student_name", "enrolled_at"}))

	members, err := repo.Roster(context.Background(), "cohort-empty")
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.NoError(t, mock.ExpectationsWereMet())
}
