package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/dto"
	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type bookRepository interface {
	List(ctx context.Context, filter models.BookFilter) ([]models.BookAvailability, int, error)
	ListAvailability(ctx context.Context) ([]models.BookAvailability, error)
	FindAvailability(ctx context.Context, id string) (*models.BookAvailability, error)
	FindByID(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id string) error
}

// BookRequest is the payload for creating or updating a book. Omitting
// total_copies means a single copy.
type BookRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Author      string `json:"author" validate:"omitempty,max=100"`
	Subject     string `json:"subject" validate:"required,subject"`
	ISBN        string `json:"isbn" validate:"omitempty,max=20"`
	TotalCopies *int   `json:"total_copies"`
}

func (r BookRequest) apply(book *models.Book) {
	book.Title = r.Title
	book.Author = optionalString(r.Author)
	book.Subject = models.Subject(r.Subject)
	book.ISBN = optionalString(r.ISBN)
	book.TotalCopies = 1
	if r.TotalCopies != nil {
		book.TotalCopies = *r.TotalCopies
	}
}

// BookService manages the library catalogue.
type BookService struct {
	repo      bookRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookService constructs a BookService.
func NewBookService(repo bookRepository, validate *validator.Validate, logger *zap.Logger) *BookService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{repo: repo, validator: validate, logger: logger}
}

// List returns books with availability.
func (s *BookService) List(ctx context.Context, filter models.BookFilter) ([]models.BookAvailability, *models.Pagination, error) {
	if filter.Subject != "" && !filter.Subject.Valid() {
		return nil, nil, appErrors.FieldError("subject", "subject is not a valid choice")
	}
	books, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list books")
	}
	for i := range books {
		ApplyAvailability(&books[i])
	}
	return books, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Catalogue returns every book grouped by subject.
func (s *BookService) Catalogue(ctx context.Context) ([]dto.SubjectShelf, error) {
	books, err := s.repo.ListAvailability(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalogue")
	}
	shelves := make([]dto.SubjectShelf, 0)
	for _, book := range books {
		ApplyAvailability(&book)
		if len(shelves) == 0 || shelves[len(shelves)-1].Subject != book.Subject {
			shelves = append(shelves, dto.SubjectShelf{Subject: book.Subject})
		}
		shelf := &shelves[len(shelves)-1]
		shelf.Books = append(shelf.Books, book)
	}
	return shelves, nil
}

// Get returns a book with its availability.
func (s *BookService) Get(ctx context.Context, id string) (*models.BookAvailability, error) {
	book, err := s.repo.FindAvailability(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load book")
	}
	ApplyAvailability(book)
	return book, nil
}

// Create adds a book to the catalogue.
func (s *BookService) Create(ctx context.Context, req BookRequest) (*models.BookAvailability, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	book := &models.Book{}
	req.apply(book)
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create book")
	}
	created := &models.BookAvailability{Book: *book}
	ApplyAvailability(created)
	return created, nil
}

// Update replaces a book's catalogue data. Lowering total_copies below the
// number on loan is allowed; availability then reads zero.
func (s *BookService) Update(ctx context.Context, id string, req BookRequest) (*models.BookAvailability, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load book")
	}
	req.apply(book)
	if err := s.repo.Update(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update book")
	}
	return s.Get(ctx, id)
}

// Delete removes a book. Borrow history keeps the title.
func (s *BookService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "book not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete book")
	}
	s.logger.Info("book deleted", zap.String("book_id", id))
	return nil
}

func (s *BookService) validate(req BookRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid book payload")
	}
	if req.TotalCopies != nil && *req.TotalCopies < 1 {
		return appErrors.FieldError("total_copies", "Total copies must be at least 1.")
	}
	return nil
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
