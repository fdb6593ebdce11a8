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

type disciplineRepository interface {
	List(ctx context.Context, filter models.DisciplineFilter) ([]models.DisciplineRecord, int, error)
	FindByID(ctx context.Context, id string) (*models.DisciplineRecord, error)
	Create(ctx context.Context, record *models.DisciplineRecord) error
	Update(ctx context.Context, record *models.DisciplineRecord) error
	Delete(ctx context.Context, id string) error
}

// CreateDisciplineRequest logs an incident for a student.
type CreateDisciplineRequest struct {
	AdmissionNumber string `json:"admission_number" validate:"required,max=20"`
	DisciplineFields
}

// UpdateDisciplineRequest edits an incident.
type UpdateDisciplineRequest struct {
	DisciplineFields
}

// DisciplineFields are the editable incident fields.
type DisciplineFields struct {
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Offense         string `json:"offense" validate:"required"`
	ActionTaken     string `json:"action_taken" validate:"required"`
	TeacherInCharge string `json:"teacher_in_charge" validate:"required,max=50"`
}

func (f DisciplineFields) apply(record *models.DisciplineRecord) error {
	date, err := models.ParseDate(f.Date)
	if err != nil {
		return appErrors.FieldError("date", "date must be a date formatted as YYYY-MM-DD")
	}
	record.Date = date
	record.Offense = f.Offense
	record.ActionTaken = f.ActionTaken
	record.TeacherInCharge = f.TeacherInCharge
	return nil
}

// DisciplineService manages the discipline log.
type DisciplineService struct {
	repo      disciplineRepository
	students  studentExistence
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDisciplineService constructs a DisciplineService.
func NewDisciplineService(repo disciplineRepository, students studentExistence, validate *validator.Validate, logger *zap.Logger) *DisciplineService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisciplineService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns incidents, newest first.
func (s *DisciplineService) List(ctx context.Context, filter models.DisciplineFilter) ([]models.DisciplineRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list discipline records")
	}
	return records, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns an incident.
func (s *DisciplineService) Get(ctx context.Context, id string) (*models.DisciplineRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "discipline record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load discipline record")
	}
	return record, nil
}

// Create logs a new incident.
func (s *DisciplineService) Create(ctx context.Context, req CreateDisciplineRequest) (*models.DisciplineRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid discipline payload")
	}
	if err := requireStudent(ctx, s.students, req.AdmissionNumber); err != nil {
		return nil, err
	}
	record := &models.DisciplineRecord{AdmissionNumber: req.AdmissionNumber}
	if err := req.apply(record); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create discipline record")
	}
	return record, nil
}

// Update edits an incident.
func (s *DisciplineService) Update(ctx context.Context, id string, req UpdateDisciplineRequest) (*models.DisciplineRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid discipline payload")
	}
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.apply(record); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update discipline record")
	}
	return record, nil
}

// Delete removes an incident.
func (s *DisciplineService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "discipline record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete discipline record")
	}
	return nil
}
