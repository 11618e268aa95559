package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinedu/clined-api/internal/dto"
	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

type cohortReaderStub struct {
	cohort *models.Cohort
	err    error
}

func (s *cohortReaderStub) FindByID(ctx context.Context, id string) (*models.Cohort, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cohort, nil
}

type siteReaderStub struct {
	site *models.ClinicalSite
	err  error
}

func (s *siteReaderStub) FindByID(ctx context.Context, id string) (*models.ClinicalSite, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.site, nil
}

type rotationCounterStub struct {
	count int
	err   error
}

func (s *rotationCounterStub) CountByAssignment(ctx context.Context, assignmentID string) (int, error) {
	return s.count, s.err
}

type assignmentFixture struct {
	repo      *assignmentRepoStub
	cohorts   *cohortReaderStub
	templates *templateStub
	sites     *siteReaderStub
	counter   *rotationCounterStub
	audit     *auditStub
	service   *AssignmentService
}

func newAssignmentFixture(assignment *models.CohortRotationAssignment) *assignmentFixture {
	f := &assignmentFixture{
		repo: &assignmentRepoStub{assignment: assignment, statusMoved: true},
		cohorts: &cohortReaderStub{cohort: &models.Cohort{
			ID:        "cohort-1",
			ProgramID: "program-1",
			Name:      "Class of 2027",
		}},
		templates: &templateStub{template: &models.RotationTemplate{
			ID:        "template-1",
			ProgramID: "program-1",
			Specialty: "Cardiology",
		}},
		sites:   &siteReaderStub{site: &models.ClinicalSite{ID: "site-1", Name: "General Hospital", Active: true}},
		counter: &rotationCounterStub{},
		audit:   &auditStub{},
	}
	f.service = NewAssignmentService(f.repo, f.cohorts, f.templates, f.sites, f.counter, f.audit, nil, nil)
	return f
}

func validCreateRequest() dto.CreateAssignmentRequest {
	return dto.CreateAssignmentRequest{
		CohortID:           "cohort-1",
		RotationTemplateID: "template-1",
		StartDate:          "2026-03-02",
		EndDate:            "2026-04-24",
		RequiredHours:      160,
	}
}

func TestAssignmentCreate(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())

	detail, err := f.service.Create(context.Background(), validCreateRequest(), actor())
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusDraft, detail.Status)

	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, models.AuditActionAssignmentCreate, f.audit.logs[0].Action)
}

func TestAssignmentCreateRejectsInvertedDates(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())
	req := validCreateRequest()
	req.StartDate = "2026-04-24"
	req.EndDate = "2026-03-02"

	_, err := f.service.Create(context.Background(), req, actor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignmentCreateRejectsProgramMismatch(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())
	f.templates.template.ProgramID = "program-2"

	_, err := f.service.Create(context.Background(), validCreateRequest(), actor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignmentCreateCohortNotFound(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())
	f.cohorts.err = sql.ErrNoRows

	_, err := f.service.Create(context.Background(), validCreateRequest(), actor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAssignmentCreateRejectsInactiveSite(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())
	f.sites.site.Active = false
	req := validCreateRequest()
	siteID := "site-1"
	req.ClinicalSiteID = &siteID

	_, err := f.service.Create(context.Background(), req, actor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignmentUpdateRejectsTerminalStatus(t *testing.T) {
	for _, status := range []models.AssignmentStatus{models.AssignmentStatusCompleted, models.AssignmentStatusCancelled} {
		assignment := draftAssignment()
		assignment.Status = status
		f := newAssignmentFixture(assignment)

		notes := "late edit"
		_, err := f.service.Update(context.Background(), dto.UpdateAssignmentRequest{ID: "assignment-1", Notes: &notes}, actor())
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code, "status %s", status)
	}
}

func TestAssignmentUpdateValidatesDateWindow(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())

	badEnd := "2026-01-01"
	_, err := f.service.Update(context.Background(), dto.UpdateAssignmentRequest{ID: "assignment-1", EndDate: &badEnd}, actor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignmentDeleteBlockedByRotations(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())
	f.counter.count = 4

	err := f.service.Delete(context.Background(), "assignment-1", actor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAssignmentDeleteWithoutRotations(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())

	require.NoError(t, f.service.Delete(context.Background(), "assignment-1", actor()))
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, models.AuditActionAssignmentDelete, f.audit.logs[0].Action)
}

func TestAssignmentCompleteRequiresPublished(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())

	_, err := f.service.Complete(context.Background(), "assignment-1", actor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.repo.statusCalls)
}

func TestAssignmentCompleteFromPublished(t *testing.T) {
	assignment := draftAssignment()
	assignment.Status = models.AssignmentStatusPublished
	f := newAssignmentFixture(assignment)

	_, err := f.service.Complete(context.Background(), "assignment-1", actor())
	require.NoError(t, err)
	require.Len(t, f.repo.statusCalls, 1)
	assert.Equal(t, models.AssignmentStatusPublished, f.repo.statusCalls[0].from)
	assert.Equal(t, models.AssignmentStatusCompleted, f.repo.statusCalls[0].to)
}

func TestAssignmentCancelFromDraft(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())

	_, err := f.service.Cancel(context.Background(), "assignment-1", actor())
	require.NoError(t, err)
	require.Len(t, f.repo.statusCalls, 1)
	assert.Equal(t, models.AssignmentStatusCancelled, f.repo.statusCalls[0].to)
}

func TestAssignmentCancelRejectsCompleted(t *testing.T) {
	assignment := draftAssignment()
	assignment.Status = models.AssignmentStatusCompleted
	f := newAssignmentFixture(assignment)

	_, err := f.service.Cancel(context.Background(), "assignment-1", actor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestAssignmentTransitionLostRace(t *testing.T) {
	assignment := draftAssignment()
	assignment.Status = models.AssignmentStatusPublished
	f := newAssignmentFixture(assignment)
	f.repo.statusMoved = false

	_, err := f.service.Complete(context.Background(), "assignment-1", actor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestAssignmentMaxStudentsReductionKeepsRotations(t *testing.T) {
	assignment := draftAssignment()
	original := 10
	assignment.MaxStudents = &original
	f := newAssignmentFixture(assignment)
	f.counter.count = 8

	reduced := 5
	detail, err := f.service.Update(context.Background(), dto.UpdateAssignmentRequest{ID: "assignment-1", MaxStudents: &reduced}, actor())
	require.NoError(t, err, "reducing the cap below the current rotation count is allowed")
	require.NotNil(t, detail.MaxStudents)
	assert.Equal(t, 5, *detail.MaxStudents)
}

func TestAssignmentGetNotFound(t *testing.T) {
	f := newAssignmentFixture(draftAssignment())
	f.repo.findErr = sql.ErrNoRows

	_, err := f.service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestParseDateWindow(t *testing.T) {
	start, end, err := parseDateWindow("2026-03-02", "2026-04-24")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 4, 24, 0, 0, 0, 0, time.UTC), end)

	_, _, err = parseDateWindow("2026-03-02", "2026-03-02")
	require.Error(t, err, "equal dates are rejected")

	_, _, err = parseDateWindow("03/02/2026", "2026-04-24")
	require.Error(t, err)
}
