package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type performanceRepository interface {
	List(ctx context.Context, filter models.PerformanceFilter) ([]models.PerformanceRecord, int, error)
	FindByID(ctx context.Context, id string) (*models.PerformanceRecord, error)
	Create(ctx context.Context, record *models.PerformanceRecord) error
	Update(ctx context.Context, record *models.PerformanceRecord) error
	Delete(ctx context.Context, id string) error
}

// CreatePerformanceRequest records marks for a student.
type CreatePerformanceRequest struct {
	AdmissionNumber string `json:"admission_number" validate:"required,max=20"`
	PerformanceFields
}

// UpdatePerformanceRequest edits an existing performance record.
type UpdatePerformanceRequest struct {
	PerformanceFields
}

// PerformanceFields are the editable fields of a performance record. Grade
// is optional; when omitted it is derived from the marks.
type PerformanceFields struct {
	Term            string   `json:"term" validate:"required,max=20"`
	Subject         string   `json:"subject" validate:"required,max=50"`
	Marks           *float64 `json:"marks" validate:"required"`
	Grade           string   `json:"grade" validate:"omitempty,grade"`
	TeacherComments string   `json:"teacher_comments"`
}

func (f PerformanceFields) apply(record *models.PerformanceRecord) {
	record.Term = f.Term
	record.Subject = f.Subject
	record.Marks = *f.Marks
	record.TeacherComments = f.TeacherComments
	if f.Grade != "" {
		record.Grade = models.Grade(f.Grade)
	}
	DerivePerformance(record)
}

// PerformanceService manages academic performance records.
type PerformanceService struct {
	repo      performanceRepository
	students  studentExistence
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPerformanceService constructs a PerformanceService.
func NewPerformanceService(repo performanceRepository, students studentExistence, validate *validator.Validate, logger *zap.Logger) *PerformanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns performance records.
func (s *PerformanceService) List(ctx context.Context, filter models.PerformanceFilter) ([]models.PerformanceRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list performance records")
	}
	return records, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a performance record.
func (s *PerformanceService) Get(ctx context.Context, id string) (*models.PerformanceRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "performance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load performance record")
	}
	return record, nil
}

// Create stores marks, deriving the grade when none was given.
func (s *PerformanceService) Create(ctx context.Context, req CreatePerformanceRequest) (*models.PerformanceRecord, error) {
	if err := s.validate(req, req.PerformanceFields); err != nil {
		return nil, err
	}
	if err := requireStudent(ctx, s.students, req.AdmissionNumber); err != nil {
		return nil, err
	}
	record := &models.PerformanceRecord{AdmissionNumber: req.AdmissionNumber}
	req.apply(record)
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create performance record")
	}
	return record, nil
}

// Update edits a record. The stored grade stays unless a new one is given.
func (s *PerformanceService) Update(ctx context.Context, id string, req UpdatePerformanceRequest) (*models.PerformanceRecord, error) {
	if err := s.validate(req, req.PerformanceFields); err != nil {
		return nil, err
	}
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(record)
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update performance record")
	}
	return record, nil
}

// Delete removes a performance record.
func (s *PerformanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "performance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete performance record")
	}
	return nil
}

func (s *PerformanceService) validate(req interface{}, fields PerformanceFields) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid performance payload")
	}
	if *fields.Marks < 0 || *fields.Marks > 100 {
		return appErrors.FieldError("marks", "Marks must be between 0 and 100.")
	}
	return nil
}
