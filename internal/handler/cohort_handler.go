package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinedu/clined-api/internal/dto"
	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
	"github.com/clinedu/clined-api/pkg/response"
)

type cohortManager interface {
	List(ctx context.Context, filter models.CohortFilter) ([]models.Cohort, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Cohort, error)
	Roster(ctx context.Context, id string) ([]models.CohortMember, error)
	Create(ctx context.Context, req dto.CreateCohortRequest) (*models.Cohort, error)
	Update(ctx context.Context, id string, req dto.UpdateCohortRequest) (*models.Cohort, error)
}

// CohortHandler exposes cohort endpoints.
type CohortHandler struct {
	service cohortManager
}

// NewCohortHandler constructs the handler.
func NewCohortHandler(svc cohortManager) *CohortHandler {
	return &CohortHandler{service: svc}
}

// List godoc
// @Summary List cohorts
// @Tags Cohorts
// @Produce json
// @Param programId query string false "Program ID"
// @Param graduationYear query int false "Graduation year"
// @Param search query string false "Name search"
// @Success 200 {object} response.Envelope
// @Router /cohorts [get]
func (h *CohortHandler) List(c *gin.Context) {
	filter := models.CohortFilter{
		ProgramID: c.Query("programId"),
		Search:    c.Query("search"),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "pageSize", 20),
	}
	if raw := c.Query("graduationYear"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "graduationYear must be a number"))
			return
		}
		filter.GraduationYear = &year
	}
	cohorts, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cohorts, pagination)
}

// Get godoc
// @Summary Get one cohort
// @Tags Cohorts
// @Produce json
// @Param id path string true "Cohort ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cohorts/{id} [get]
func (h *CohortHandler) Get(c *gin.Context) {
	cohort, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cohort, nil)
}

// Roster godoc
// @Summary Get the cohort roster in enrollment order
// @Tags Cohorts
// @Produce json
// @Param id path string true "Cohort ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cohorts/{id}/roster [get]
func (h *CohortHandler) Roster(c *gin.Context) {
	members, err := h.service.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// Create godoc
// @Summary Create a cohort
// @Tags Cohorts
// @Accept json
// @Produce json
// @Param payload body dto.CreateCohortRequest true "Create cohort payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cohorts [post]
func (h *CohortHandler) Create(c *gin.Context) {
	var req dto.CreateCohortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cohort payload"))
		return
	}
	cohort, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cohort)
}

// Update godoc
// @Summary Update a cohort
// @Tags Cohorts
// @Accept json
// @Produce json
// @Param id path string true "Cohort ID"
// @Param payload body dto.UpdateCohortRequest true "Update cohort payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cohorts/{id} [put]
func (h *CohortHandler) Update(c *gin.Context) {
	var req dto.UpdateCohortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cohort payload"))
		return
	}
	cohort, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cohort, nil)
}
