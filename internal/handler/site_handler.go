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

type siteManager interface {
	Get(ctx context.Context, id string) (*models.ClinicalSite, error)
	Directory(ctx context.Context) ([]models.ClinicalSite, error)
	Create(ctx context.Context, req dto.CreateSiteRequest) (*models.ClinicalSite, error)
	Update(ctx context.Context, id string, req dto.UpdateSiteRequest) (*models.ClinicalSite, error)
}

// SiteHandler exposes clinical site directory endpoints.
type SiteHandler struct {
	service siteManager
}

// NewSiteHandler constructs the handler.
func NewSiteHandler(svc siteManager) *SiteHandler {
	return &SiteHandler{service: svc}
}

// Directory godoc
// @Summary List active clinical sites
// @Tags Sites
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /clinical-sites [get]
func (h *SiteHandler) Directory(c *gin.Context) {
	sites, err := h.service.Directory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sites, nil)
}

// Get godoc
// @Summary Get one clinical site
// @Tags Sites
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clinical-sites/{id} [get]
func (h *SiteHandler) Get(c *gin.Context) {
	site, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, site, nil)
}

// Create godoc
// @Summary Register a clinical site
// @Tags Sites
// @Accept json
// @Produce json
// @Param payload body dto.CreateSiteRequest true "Create site payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /clinical-sites [post]
func (h *SiteHandler) Create(c *gin.Context) {
	var req dto.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid site payload"))
		return
	}
	site, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, site)
}

// Update godoc
// @Summary Update a clinical site
// @Tags Sites
// @Accept json
// @Produce json
// @Param id path string true "Site ID"
// @Param payload body dto.UpdateSiteRequest true "Update site payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clinical-sites/{id} [put]
func (h *SiteHandler) Update(c *gin.Context) {
	var req dto.UpdateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid site payload"))
		return
	}
	site, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, site, nil)
}
