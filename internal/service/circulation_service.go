package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/dto"
	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/internal/repository"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type borrowRepository interface {
	Borrow(ctx context.Context, params repository.BorrowParams) (*models.BorrowRecord, error)
	Insert(ctx context.Context, record *models.BorrowRecord) error
	ReturnLatest(ctx context.Context, admissionNumber, bookID string, at time.Time) (*models.BorrowRecord, error)
	List(ctx context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, int, error)
	ListByStudent(ctx context.Context, admissionNumber string, openOnly bool) ([]models.BorrowRecord, error)
}

type studentExistence interface {
	Exists(ctx context.Context, admissionNumber string) (bool, error)
}

type bookFinder interface {
	FindByID(ctx context.Context, id string) (*models.Book, error)
}

type circulationRecorder interface {
	RecordCirculation(outcome string)
}

// RecordLoanRequest registers a loan from the staff desk. Without a book_id
// the loan is kept as a title-only record outside copy accounting.
type RecordLoanRequest struct {
	AdmissionNumber string `json:"admission_number" validate:"required,max=20"`
	BookID          string `json:"book_id" validate:"omitempty,uuid"`
	BookTitle       string `json:"book_title" validate:"omitempty,max=100"`
	BorrowDate      string `json:"borrow_date" validate:"omitempty,datetime=2006-01-02"`
}

// CirculationService runs the borrow/return workflow.
type CirculationService struct {
	borrows   borrowRepository
	students  studentExistence
	books     bookFinder
	metrics   circulationRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCirculationService constructs a CirculationService.
func NewCirculationService(borrows borrowRepository, students studentExistence, books bookFinder, metrics circulationRecorder, validate *validator.Validate, logger *zap.Logger) *CirculationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CirculationService{
		borrows:   borrows,
		students:  students,
		books:     books,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Borrow lends one copy of a book to the caller or, for staff, to the named student.
func (s *CirculationService) Borrow(ctx context.Context, actor *models.JWTClaims, req dto.BorrowRequest) (*models.BorrowRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid borrow payload")
	}
	admissionNumber, err := resolveBorrower(actor, req.AdmissionNumber)
	if err != nil {
		return nil, err
	}
	if err := requireStudent(ctx, s.students, admissionNumber); err != nil {
		return nil, err
	}
	book, err := s.findBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	return s.borrow(ctx, admissionNumber, book, s.now().UTC())
}

// Return closes the caller's most recent open loan of the book. Returning a
// book that is not on loan changes nothing.
func (s *CirculationService) Return(ctx context.Context, actor *models.JWTClaims, req dto.BorrowRequest) (*dto.ReturnResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid return payload")
	}
	admissionNumber, err := resolveBorrower(actor, req.AdmissionNumber)
	if err != nil {
		return nil, err
	}
	if err := requireStudent(ctx, s.students, admissionNumber); err != nil {
		return nil, err
	}
	if _, err := s.findBook(ctx, req.BookID); err != nil {
		return nil, err
	}

	record, err := s.borrows.ReturnLatest(ctx, admissionNumber, req.BookID, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to return book")
	}
	if record == nil {
		s.record(BorrowOutcomeNoop)
		return &dto.ReturnResult{Returned: false}, nil
	}
	s.record(BorrowOutcomeReturned)
	s.logger.Info("book returned",
		zap.String("admission_number", admissionNumber),
		zap.String("book_id", req.BookID),
		zap.String("record_id", record.ID),
	)
	return &dto.ReturnResult{Returned: true, Record: record}, nil
}

// RecordLoan registers a loan entered by library staff.
func (s *CirculationService) RecordLoan(ctx context.Context, req RecordLoanRequest) (*models.BorrowRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid library record payload")
	}
	borrowedAt := s.now().UTC()
	if req.BorrowDate != "" {
		date, err := models.ParseDate(req.BorrowDate)
		if err != nil {
			return nil, appErrors.FieldError("borrow_date", "borrow_date must be a date formatted as YYYY-MM-DD")
		}
		borrowedAt = date.Time
	}
	if err := requireStudent(ctx, s.students, req.AdmissionNumber); err != nil {
		return nil, err
	}

	if req.BookID != "" {
		book, err := s.findBook(ctx, req.BookID)
		if err != nil {
			return nil, err
		}
		return s.borrow(ctx, req.AdmissionNumber, book, borrowedAt)
	}

	if req.BookTitle == "" {
		return nil, appErrors.FieldError("book_title", "book_title is required when no book is selected")
	}
	record := &models.BorrowRecord{
		AdmissionNumber: req.AdmissionNumber,
		BookTitle:       req.BookTitle,
		BorrowDate:      borrowedAt,
		Status:          models.BorrowStatusBorrowed,
	}
	if err := s.borrows.Insert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record loan")
	}
	return record, nil
}

// List returns circulation records filtered by admission number and title.
func (s *CirculationService) List(ctx context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, *models.Pagination, error) {
	records, total, err := s.borrows.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list library records")
	}
	return records, paginationFor(filter.Page, filter.PageSize, total), nil
}

// OnLoan lists the books a student currently holds.
func (s *CirculationService) OnLoan(ctx context.Context, admissionNumber string) ([]models.BorrowRecord, error) {
	if err := requireStudent(ctx, s.students, admissionNumber); err != nil {
		return nil, err
	}
	records, err := s.borrows.ListByStudent(ctx, admissionNumber, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list borrowed books")
	}
	return records, nil
}

func (s *CirculationService) borrow(ctx context.Context, admissionNumber string, book *models.Book, at time.Time) (*models.BorrowRecord, error) {
	record, err := s.borrows.Borrow(ctx, repository.BorrowParams{
		AdmissionNumber: admissionNumber,
		BookID:          book.ID,
		BorrowDate:      at,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoAvailableCopies):
			s.record(BorrowOutcomeRejected)
			return nil, appErrors.FieldError("book", fmt.Sprintf("No available copies of '%s' to borrow.", book.Title))
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to borrow book")
		}
	}
	s.record(BorrowOutcomeAccepted)
	s.logger.Info("book borrowed",
		zap.String("admission_number", admissionNumber),
		zap.String("book_id", book.ID),
		zap.String("record_id", record.ID),
	)
	return record, nil
}

func (s *CirculationService) findBook(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load book")
	}
	return book, nil
}

func (s *CirculationService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCirculation(outcome)
	}
}

// resolveBorrower applies the self-service rule: students act only on their
// own admission number, staff must name the student.
func resolveBorrower(actor *models.JWTClaims, requested string) (string, error) {
	if actor == nil {
		return "", appErrors.ErrUnauthorized
	}
	if own := actor.AdmissionNumber(); own != "" {
		if requested != "" && requested != own {
			return "", appErrors.Clone(appErrors.ErrForbidden, "students can only borrow and return books for themselves")
		}
		return own, nil
	}
	if requested == "" {
		return "", appErrors.FieldError("admission_number", "admission_number is required")
	}
	return requested, nil
}
