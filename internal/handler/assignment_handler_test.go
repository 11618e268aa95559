package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinedu/clined-api/internal/dto"
	internalmiddleware "github.com/clinedu/clined-api/internal/middleware"
	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

type assignmentServiceMock struct {
	detail      *models.AssignmentDetail
	err         error
	createdReq  dto.CreateAssignmentRequest
	deleteErr   error
	completeErr error
}

func (m *assignmentServiceMock) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, *models.Pagination, error) {
	return []models.AssignmentDetail{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *assignmentServiceMock) Get(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	return m.detail, m.err
}

func (m *assignmentServiceMock) Create(ctx context.Context, req dto.CreateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentDetail, error) {
	m.createdReq = req
	return m.detail, m.err
}

func (m *assignmentServiceMock) Update(ctx context.Context, req dto.UpdateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentDetail, error) {
	return m.detail, m.err
}

func (m *assignmentServiceMock) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	return m.deleteErr
}

func (m *assignmentServiceMock) Complete(ctx context.Context, id string, actor *models.JWTClaims) (*models.AssignmentDetail, error) {
	if m.completeErr != nil {
		return nil, m.completeErr
	}
	return m.detail, nil
}

func (m *assignmentServiceMock) Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*models.AssignmentDetail, error) {
	return m.detail, m.err
}

type generatorMock struct {
	summary *dto.GenerationSummary
	err     error
}

func (m *generatorMock) Generate(ctx context.Context, req dto.GenerateRotationsRequest, actor *models.JWTClaims) (*dto.GenerationSummary, error) {
	return m.summary, m.err
}

func adminContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleSchoolAdmin})
		c.Next()
	}
}

func assignmentDetail() *models.AssignmentDetail {
	return &models.AssignmentDetail{
		CohortRotationAssignment: models.CohortRotationAssignment{
			ID:     "assignment-1",
			Status: models.AssignmentStatusDraft,
		},
		CohortName: "Class of 2027",
		Specialty:  "Cardiology",
	}
}

func TestAssignmentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{detail: assignmentDetail()}
	h := NewAssignmentHandler(mockSvc, &generatorMock{})
	router := gin.New()
	router.Use(adminContext())
	router.POST("/cohort-rotations", h.Create)

	payload := []byte(`{"cohortId":"cohort-1","rotationTemplateId":"template-1","startDate":"2026-03-02","endDate":"2026-04-24","requiredHours":160}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cohort-rotations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "cohort-1", mockSvc.createdReq.CohortID)
	assert.Equal(t, 160, mockSvc.createdReq.RequiredHours)
}

func TestAssignmentHandlerCreateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAssignmentHandler(&assignmentServiceMock{}, &generatorMock{})
	router := gin.New()
	router.Use(adminContext())
	router.POST("/cohort-rotations", h.Create)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cohort-rotations", bytes.NewReader([]byte(`{"cohortId":`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "assignment not found")}
	h := NewAssignmentHandler(mockSvc, &generatorMock{})
	router := gin.New()
	router.Use(adminContext())
	router.GET("/cohort-rotations/:id", h.Get)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/cohort-rotations/missing", nil)

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignmentHandlerListRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAssignmentHandler(&assignmentServiceMock{}, &generatorMock{})
	router := gin.New()
	router.Use(adminContext())
	router.GET("/cohort-rotations", h.List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/cohort-rotations?status=ARCHIVED", nil)

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerDeleteConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{deleteErr: appErrors.Clone(appErrors.ErrConflict, "assignment has generated rotations")}
	h := NewAssignmentHandler(mockSvc, &generatorMock{})
	router := gin.New()
	router.Use(adminContext())
	router.DELETE("/cohort-rotations/:id", h.Delete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/cohort-rotations/assignment-1", nil)

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAssignmentHandlerCompleteInvalidState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{completeErr: appErrors.Clone(appErrors.ErrInvalidState, "transition not allowed from current status")}
	h := NewAssignmentHandler(mockSvc, &generatorMock{})
	router := gin.New()
	router.Use(adminContext())
	router.POST("/cohort-rotations/:id/complete", h.Complete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cohort-rotations/assignment-1/complete", nil)

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrInvalidState.Code, envelope.Error.Code)
}

func TestAssignmentHandlerGenerateSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gen := &generatorMock{summary: &dto.GenerationSummary{
		Created: 2,
		Skipped: 1,
		Errors:  []dto.GenerationError{{StudentID: "student-3", Reason: "insert failed"}},
	}}
	h := NewAssignmentHandler(&assignmentServiceMock{}, gen)
	router := gin.New()
	router.Use(adminContext())
	router.POST("/cohort-rotations/generate", h.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cohort-rotations/generate", bytes.NewReader([]byte(`{"cohortRotationAssignmentId":"assignment-1"}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.GenerationSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Created)
	assert.Equal(t, 1, envelope.Data.Skipped)
	require.Len(t, envelope.Data.Errors, 1)
	assert.Equal(t, "student-3", envelope.Data.Errors[0].StudentID)
}

func TestAssignmentHandlerGenerateForbiddenForStudents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAssignmentHandler(&assignmentServiceMock{}, &generatorMock{summary: &dto.GenerationSummary{}})
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
		c.Next()
	})
	router.POST("/cohort-rotations/generate",
		internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin),
		h.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cohort-rotations/generate", bytes.NewReader([]byte(`{"cohortRotationAssignmentId":"assignment-1"}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignmentHandlerGenerateUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAssignmentHandler(&assignmentServiceMock{}, &generatorMock{summary: &dto.GenerationSummary{}})
	router := gin.New()
	router.POST("/cohort-rotations/generate",
		internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin),
		h.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cohort-rotations/generate", bytes.NewReader([]byte(`{"cohortRotationAssignmentId":"assignment-1"}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
