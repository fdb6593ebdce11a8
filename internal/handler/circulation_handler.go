package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schooldb-api/internal/dto"
	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/internal/service"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
	"github.com/noah-isme/schooldb-api/pkg/response"
)

type circulationService interface {
	Borrow(ctx context.Context, actor *models.JWTClaims, req dto.BorrowRequest) (*models.BorrowRecord, error)
	Return(ctx context.Context, actor *models.JWTClaims, req dto.BorrowRequest) (*dto.ReturnResult, error)
	RecordLoan(ctx context.Context, req service.RecordLoanRequest) (*models.BorrowRecord, error)
	List(ctx context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, *models.Pagination, error)
	OnLoan(ctx context.Context, admissionNumber string) ([]models.BorrowRecord, error)
}

// CirculationHandler exposes borrowing and returning.
type CirculationHandler struct {
	circulation circulationService
}

// NewCirculationHandler constructs CirculationHandler.
func NewCirculationHandler(circulation circulationService) *CirculationHandler {
	return &CirculationHandler{circulation: circulation}
}

// Borrow godoc
// @Summary Borrow a book
// @Description Students borrow for themselves; staff must name the student
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body dto.BorrowRequest true "Borrow payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /library/borrow [post]
func (h *CirculationHandler) Borrow(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid borrow payload"))
		return
	}
	record, err := h.circulation.Borrow(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Return godoc
// @Summary Return a book
// @Description Closes the most recent open loan; returning a book that is not on loan is a no-op
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body dto.BorrowRequest true "Return payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /library/return [post]
func (h *CirculationHandler) Return(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid return payload"))
		return
	}
	result, err := h.circulation.Return(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RecordLoan godoc
// @Summary Record a loan from the library desk
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body service.RecordLoanRequest true "Loan payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /library/records [post]
func (h *CirculationHandler) RecordLoan(c *gin.Context) {
	var req service.RecordLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid library record payload"))
		return
	}
	record, err := h.circulation.RecordLoan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List borrow records
// @Tags Library
// @Produce json
// @Param admission_number query string false "Student"
// @Param book_title query string false "Title contains"
// @Param open query bool false "Only books still on loan"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /library/records [get]
func (h *CirculationHandler) List(c *gin.Context) {
	filter := models.BorrowFilter{
		AdmissionNumber: trimmedQuery(c, "admission_number"),
		BookTitle:       trimmedQuery(c, "book_title"),
		OpenOnly:        c.Query("open") == "true",
	}
	filter.Page, filter.PageSize = pageParams(c)

	records, pagination, err := h.circulation.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// OnLoan godoc
// @Summary Books a student currently holds
// @Tags Library
// @Produce json
// @Param admission_number path string true "Admission number"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{admission_number}/loans [get]
func (h *CirculationHandler) OnLoan(c *gin.Context) {
	records, err := h.circulation.OnLoan(c.Request.Context(), c.Param("admission_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
