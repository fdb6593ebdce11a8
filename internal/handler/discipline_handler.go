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

type disciplineService interface {
	List(ctx context.Context, filter models.DisciplineFilter) ([]models.DisciplineRecord, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.DisciplineRecord, error)
	Create(ctx context.Context, req service.CreateDisciplineRequest) (*models.DisciplineRecord, error)
	Update(ctx context.Context, id string, req service.UpdateDisciplineRequest) (*models.DisciplineRecord, error)
	Delete(ctx context.Context, id string) error
}

// DisciplineHandler exposes discipline incidents.
type DisciplineHandler struct {
	discipline disciplineService
}

// NewDisciplineHandler constructs DisciplineHandler.
func NewDisciplineHandler(discipline disciplineService) *DisciplineHandler {
	return &DisciplineHandler{discipline: discipline}
}

// List godoc
// @Summary List discipline records
// @Tags Discipline
// @Produce json
// @Param admission_number query string false "Student"
// @Param search query string false "Offense or action"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /discipline [get]
func (h *DisciplineHandler) List(c *gin.Context) {
	filter := models.DisciplineFilter{
		AdmissionNumber: trimmedQuery(c, "admission_number"),
		Search:          trimmedQuery(c, "search"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	records, pagination, err := h.discipline.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get discipline record
// @Tags Discipline
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /discipline/{id} [get]
func (h *DisciplineHandler) Get(c *gin.Context) {
	record, err := h.discipline.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Log an incident
// @Tags Discipline
// @Accept json
// @Produce json
// @Param payload body service.CreateDisciplineRequest true "Discipline payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /discipline [post]
func (h *DisciplineHandler) Create(c *gin.Context) {
	var req service.CreateDisciplineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid discipline payload"))
		return
	}
	record, err := h.discipline.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update an incident
// @Tags Discipline
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.UpdateDisciplineRequest true "Discipline payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /discipline/{id} [put]
func (h *DisciplineHandler) Update(c *gin.Context) {
	var req service.UpdateDisciplineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid discipline payload"))
		return
	}
	record, err := h.discipline.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete an incident
// @Tags Discipline
// @Param id path string true "Record ID"
// @Success 204
// @Security BearerAuth
// @Router /discipline/{id} [delete]
func (h *DisciplineHandler) Delete(c *gin.Context) {
	if err := h.discipline.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
