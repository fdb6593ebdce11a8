package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/internal/service"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
	"github.com/noah-isme/schooldb-api/pkg/response"
)

type performanceService interface {
	List(ctx context.Context, filter models.PerformanceFilter) ([]models.PerformanceRecord, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.PerformanceRecord, error)
	Create(ctx context.Context, req service.CreatePerformanceRequest) (*models.PerformanceRecord, error)
	Update(ctx context.Context, id string, req service.UpdatePerformanceRequest) (*models.PerformanceRecord, error)
	Delete(ctx context.Context, id string) error
}

// PerformanceHandler exposes subject marks.
type PerformanceHandler struct {
	performance performanceService
}

// NewPerformanceHandler constructs PerformanceHandler.
func NewPerformanceHandler(performance performanceService) *PerformanceHandler {
	return &PerformanceHandler{performance: performance}
}

// List godoc
// @Summary List performance records
// @Tags Performance
// @Produce json
// @Param admission_number query string false "Student"
// @Param term query string false "Term"
// @Param subject query string false "Subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /performance [get]
func (h *PerformanceHandler) List(c *gin.Context) {
	filter := models.PerformanceFilter{
		AdmissionNumber: trimmedQuery(c, "admission_number"),
		Term:            trimmedQuery(c, "term"),
		Subject:         trimmedQuery(c, "subject"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	records, pagination, err := h.performance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get performance record
// @Tags Performance
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /performance/{id} [get]
func (h *PerformanceHandler) Get(c *gin.Context) {
	record, err := h.performance.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Record marks
// @Description Grade is derived from marks when omitted
// @Tags Performance
// @Accept json
// @Produce json
// @Param payload body service.CreatePerformanceRequest true "Performance payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /performance [post]
func (h *PerformanceHandler) Create(c *gin.Context) {
	var req service.CreatePerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid performance payload"))
		return
	}
	record, err := h.performance.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update marks
// @Tags Performance
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.UpdatePerformanceRequest true "Performance payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /performance/{id} [put]
func (h *PerformanceHandler) Update(c *gin.Context) {
	var req service.UpdatePerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid performance payload"))
		return
	}
	record, err := h.performance.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete performance record
// @Tags Performance
// @Param id path string true "Record ID"
// @Success 204
// @Security BearerAuth
// @Router /performance/{id} [delete]
func (h *PerformanceHandler) Delete(c *gin.Context) {
	if err := h.performance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
