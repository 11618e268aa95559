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

type templateManager interface {
	Get(ctx context.Context, id string) (*models.RotationTemplate, error)
	ListByProgram(ctx context.Context, programID string) ([]models.RotationTemplate, error)
	Create(ctx context.Context, req dto.CreateTemplateRequest) (*models.RotationTemplate, error)
	Update(ctx context.Context, id string, req dto.UpdateTemplateRequest) (*models.RotationTemplate, error)
}

// TemplateHandler exposes rotation template endpoints.
type TemplateHandler struct {
	service templateManager
}

// NewTemplateHandler constructs the handler.
func NewTemplateHandler(svc templateManager) *TemplateHandler {
	return &TemplateHandler{service: svc}
}

// List godoc
// @Summary List rotation templates for a program
// @Tags Templates
// @Produce json
// @Param programId query string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /rotation-templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.service.ListByProgram(c.Request.Context(), c.Query("programId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// Get godoc
// @Summary Get one rotation template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rotation-templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// Create godoc
// @Summary Create a rotation template
// @Tags Templates
// @Accept json
// @Produce json
// @Param payload body dto.CreateTemplateRequest true "Create template payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rotation-templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	template, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, template)
}

// Update godoc
// @Summary Update a rotation template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body dto.UpdateTemplateRequest true "Update template payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rotation-templates/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	template, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}
