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

type bookService interface {
	List(ctx context.Context, filter models.BookFilter) ([]models.BookAvailability, *models.Pagination, error)
	Catalogue(ctx context.Context) ([]dto.SubjectShelf, error)
	Get(ctx context.Context, id string) (*models.BookAvailability, error)
	Create(ctx context.Context, req service.BookRequest) (*models.BookAvailability, error)
	Update(ctx context.Context, id string, req service.BookRequest) (*models.BookAvailability, error)
	Delete(ctx context.Context, id string) error
}

// BookHandler exposes the library catalogue.
type BookHandler struct {
	books bookService
}

// NewBookHandler constructs BookHandler.
func NewBookHandler(books bookService) *BookHandler {
	return &BookHandler{books: books}
}

// List godoc
// @Summary List books with availability
// @Tags Library
// @Produce json
// @Param search query string false "Title, author or ISBN"
// @Param subject query string false "Subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books [get]
func (h *BookHandler) List(c *gin.Context) {
	filter := models.BookFilter{
		Search:  trimmedQuery(c, "search"),
		Subject: models.Subject(trimmedQuery(c, "subject")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	books, pagination, err := h.books.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books, pagination)
}

// Catalogue godoc
// @Summary Books grouped by subject
// @Tags Library
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books/catalogue [get]
func (h *BookHandler) Catalogue(c *gin.Context) {
	shelves, err := h.books.Catalogue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shelves, nil)
}

// Get godoc
// @Summary Get book
// @Tags Library
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	book, err := h.books.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// Create godoc
// @Summary Add book
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body service.BookRequest true "Book payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req service.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid book payload"))
		return
	}
	book, err := h.books.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, book)
}

// Update godoc
// @Summary Update book
// @Tags Library
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param payload body service.BookRequest true "Book payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	var req service.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid book payload"))
		return
	}
	book, err := h.books.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// Delete godoc
// @Summary Delete book
// @Description Borrow history keeps the recorded title
// @Tags Library
// @Param id path string true "Book ID"
// @Success 204
// @Security BearerAuth
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.books.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
