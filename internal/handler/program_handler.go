package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
	"github.com/clinedu/clined-api/pkg/response"
)

type programReader interface {
	Get(ctx context.Context, id string) (*models.Program, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.Program, error)
}

// ProgramHandler exposes read-only program catalog endpoints.
type ProgramHandler struct {
	service programReader
}

// NewProgramHandler constructs the handler.
func NewProgramHandler(svc programReader) *ProgramHandler {
	return &ProgramHandler{service: svc}
}

// List godoc
// @Summary List active programs for a school
// @Tags Programs
// @Produce json
// @Param schoolId query string false "School ID, defaults to the caller's school"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	schoolID := c.Query("schoolId")
	if schoolID == "" {
		if claims := claimsFromContext(c); claims != nil && claims.SchoolID != nil {
			schoolID = *claims.SchoolID
		}
	}
	if schoolID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "schoolId is required"))
		return
	}
	programs, err := h.service.ListBySchool(c.Request.Context(), schoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// Get godoc
// @Summary Get one program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	program, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}
