package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schooldb-api/internal/dto"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
	"github.com/noah-isme/schooldb-api/pkg/response"
)

type dashboardService interface {
	Student(ctx context.Context, admissionNumber string) (*dto.StudentDashboard, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Student godoc
// @Summary Student dashboard
// @Description Records, fee totals, average marks, ranks and term trends for one student
// @Tags Dashboard
// @Produce json
// @Param admission_number path string true "Admission number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{admission_number}/dashboard [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	summary, err := h.service.Student(c.Request.Context(), c.Param("admission_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
}
