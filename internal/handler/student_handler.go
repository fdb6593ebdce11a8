package handler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schooldb-api/internal/dto"
	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/internal/service"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
	"github.com/noah-isme/schooldb-api/pkg/response"
)

const photoFormField = "photo"

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	Grouped(ctx context.Context) ([]dto.ClassGroup, error)
	Get(ctx context.Context, admissionNumber string) (*models.Student, error)
	Lookup(ctx context.Context, admissionNumber string) (*models.Student, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, admissionNumber string, req service.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, admissionNumber string) error
	UploadPhoto(ctx context.Context, admissionNumber string, r io.Reader, size int64) (*models.Student, error)
	PhotoLink(ctx context.Context, admissionNumber string) (*dto.PhotoLink, error)
	OpenPhoto(ctx context.Context, token string) (string, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students  studentService
	photoBase string
}

// NewStudentHandler constructs StudentHandler. photoBase is the public
// prefix under which /photos/{token} is served.
func NewStudentHandler(students studentService, photoBase string) *StudentHandler {
	return &StudentHandler{students: students, photoBase: strings.TrimRight(photoBase, "/")}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or admission number"
// @Param class query string false "Filter by class"
// @Param stream query string false "Filter by stream"
// @Param sort query string false "Sort column"
// @Param order query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:    trimmedQuery(c, "search"),
		Class:     trimmedQuery(c, "class"),
		Stream:    trimmedQuery(c, "stream"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Grouped godoc
// @Summary Students grouped by class and stream
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/grouped [get]
func (h *StudentHandler) Grouped(c *gin.Context) {
	groups, err := h.students.Grouped(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Lookup godoc
// @Summary Find a student by admission number
// @Tags Students
// @Produce json
// @Param admission_number query string true "Admission number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/lookup [get]
func (h *StudentHandler) Lookup(c *gin.Context) {
	admission := trimmedQuery(c, "admission_number")
	if admission == "" {
		response.Error(c, appErrors.FieldError("admission_number", "admission_number is required"))
		return
	}
	student, err := h.students.Lookup(c.Request.Context(), admission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param admission_number path string true "Admission number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{admission_number} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("admission_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param admission_number path string true "Admission number"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{admission_number} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("admission_number"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Description Removes the student together with fee, performance, discipline and borrow records
// @Tags Students
// @Param admission_number path string true "Admission number"
// @Success 204
// @Security BearerAuth
// @Router /students/{admission_number} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("admission_number")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPhoto godoc
// @Summary Upload student photo
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param admission_number path string true "Admission number"
// @Param photo formData file true "JPEG or PNG image"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{admission_number}/photo [put]
func (h *StudentHandler) UploadPhoto(c *gin.Context) {
	header, err := c.FormFile(photoFormField)
	if err != nil {
		response.Error(c, appErrors.FieldError(photoFormField, "Photo file is required."))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read photo"))
		return
	}
	defer file.Close()

	student, err := h.students.UploadPhoto(c.Request.Context(), c.Param("admission_number"), file, header.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// PhotoLink godoc
// @Summary Issue a signed photo download link
// @Tags Students
// @Produce json
// @Param admission_number path string true "Admission number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{admission_number}/photo-link [get]
func (h *StudentHandler) PhotoLink(c *gin.Context) {
	link, err := h.students.PhotoLink(c.Request.Context(), c.Param("admission_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	link.URL = h.photoBase + "/photos/" + url.PathEscape(link.Token)
	response.JSON(c, http.StatusOK, link, nil)
}

// Photo godoc
// @Summary Download a student photo
// @Tags Students
// @Produce jpeg
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /photos/{token} [get]
func (h *StudentHandler) Photo(c *gin.Context) {
	path, err := h.students.OpenPhoto(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.File(path)
}
