package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinedu/clined-api/internal/dto"
	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
	"github.com/clinedu/clined-api/pkg/response"
)

type assignmentManager interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.AssignmentDetail, error)
	Create(ctx context.Context, req dto.CreateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentDetail, error)
	Update(ctx context.Context, req dto.UpdateAssignmentRequest, actor *models.JWTClaims) (*models.AssignmentDetail, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	Complete(ctx context.Context, id string, actor *models.JWTClaims) (*models.AssignmentDetail, error)
	Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*models.AssignmentDetail, error)
}

type rotationGenerator interface {
	Generate(ctx context.Context, req dto.GenerateRotationsRequest, actor *models.JWTClaims) (*dto.GenerationSummary, error)
}

// AssignmentHandler exposes cohort rotation assignment endpoints.
type AssignmentHandler struct {
	service   assignmentManager
	generator rotationGenerator
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc assignmentManager, generator rotationGenerator) *AssignmentHandler {
	return &AssignmentHandler{service: svc, generator: generator}
}

// List godoc
// @Summary List cohort rotation assignments
// @Tags Assignments
// @Produce json
// @Param cohortId query string false "Cohort ID"
// @Param status query string false "Assignment status"
// @Success 200 {object} response.Envelope
// @Router /cohort-rotations [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	filter := models.AssignmentFilter{
		CohortID: c.Query("cohortId"),
		Status:   models.AssignmentStatus(c.Query("status")),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "pageSize", 20),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown assignment status"))
		return
	}
	assignments, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Get godoc
// @Summary Get one cohort rotation assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cohort-rotations/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create a cohort rotation assignment
// @Description Binds a rotation template to a cohort for a date window. New assignments start in DRAFT.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssignmentRequest true "Create assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cohort-rotations [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update a cohort rotation assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.UpdateAssignmentRequest true "Update assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cohort-rotations/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	req.ID = c.Param("id")
	assignment, err := h.service.Update(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete a cohort rotation assignment
// @Description Only assignments without generated rotations can be deleted.
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cohort-rotations/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Complete godoc
// @Summary Mark a published assignment as completed
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cohort-rotations/{id}/complete [post]
func (h *AssignmentHandler) Complete(c *gin.Context) {
	assignment, err := h.service.Complete(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Cancel godoc
// @Summary Cancel a draft or published assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cohort-rotations/{id}/cancel [post]
func (h *AssignmentHandler) Cancel(c *gin.Context) {
	assignment, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Generate godoc
// @Summary Generate rotations for an assignment
// @Description Creates one rotation per eligible cohort member. Re-runs skip already placed students; per-student failures are reported in the summary without failing the run.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRotationsRequest true "Generate rotations payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cohort-rotations/generate [post]
func (h *AssignmentHandler) Generate(c *gin.Context) {
	var req dto.GenerateRotationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	summary, err := h.generator.Generate(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
