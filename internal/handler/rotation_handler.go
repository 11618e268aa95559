package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinedu/clined-api/internal/models"
	"github.com/clinedu/clined-api/internal/service"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
	"github.com/clinedu/clined-api/pkg/response"
)

type rotationLister interface {
	List(ctx context.Context, filter models.RotationFilter) ([]models.RotationDetail, *models.Pagination, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.RotationDetail, error)
}

type scheduleExporter interface {
	RotationSchedule(ctx context.Context, assignmentID, format string) (*service.ExportResult, error)
}

// RotationHandler exposes rotation read and export endpoints.
type RotationHandler struct {
	service  rotationLister
	exporter scheduleExporter
}

// NewRotationHandler constructs the handler. exporter may be nil when exports
// are disabled.
func NewRotationHandler(svc rotationLister, exporter scheduleExporter) *RotationHandler {
	return &RotationHandler{service: svc, exporter: exporter}
}

// List godoc
// @Summary List generated rotations
// @Tags Rotations
// @Produce json
// @Param studentId query string false "Student ID"
// @Param assignmentId query string false "Assignment ID"
// @Param status query string false "Rotation status"
// @Success 200 {object} response.Envelope
// @Router /rotations [get]
func (h *RotationHandler) List(c *gin.Context) {
	filter := models.RotationFilter{
		StudentID:    c.Query("studentId"),
		AssignmentID: c.Query("assignmentId"),
		Status:       models.RotationStatus(c.Query("status")),
		Page:         intQuery(c, "page", 1),
		PageSize:     intQuery(c, "pageSize", 20),
	}
	// Students only ever see their own rotations.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		filter.StudentID = claims.UserID
	}
	rotations, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rotations, pagination)
}

// ListByAssignment godoc
// @Summary List rotations generated from one assignment
// @Tags Rotations
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /cohort-rotations/{id}/rotations [get]
func (h *RotationHandler) ListByAssignment(c *gin.Context) {
	rotations, err := h.service.ListByAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rotations, nil)
}

// Export godoc
// @Summary Export the rotation schedule for an assignment
// @Tags Rotations
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Assignment ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cohort-rotations/{id}/export [get]
func (h *RotationHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exports are disabled"))
		return
	}
	result, err := h.exporter.RotationSchedule(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
