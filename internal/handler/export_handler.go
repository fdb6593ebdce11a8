package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/internal/service"
	"github.com/noah-isme/schooldb-api/pkg/response"
)

type exportService interface {
	Ranking(ctx context.Context, format service.ExportFormat, stream string) (*service.ExportFile, error)
	FeeRegister(ctx context.Context, format service.ExportFormat, filter models.FeeFilter) (*service.ExportFile, error)
}

// ExportHandler serves CSV and PDF downloads.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Ranking godoc
// @Summary Download ranking
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param stream query string false "Limit to one stream"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/rankings [get]
func (h *ExportHandler) Ranking(c *gin.Context) {
	file, err := h.exports.Ranking(c.Request.Context(), exportFormat(c), trimmedQuery(c, "stream"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// FeeRegister godoc
// @Summary Download fee register
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param admission_number query string false "Student"
// @Param term query string false "Term"
// @Param status query string false "paid, partial or unpaid"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/fees [get]
func (h *ExportHandler) FeeRegister(c *gin.Context) {
	file, err := h.exports.FeeRegister(c.Request.Context(), exportFormat(c), feeFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

func exportFormat(c *gin.Context) service.ExportFormat {
	return service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
}
