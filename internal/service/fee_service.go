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

type feeRepository interface {
	List(ctx context.Context, filter models.FeeFilter) ([]models.FeeRecordDetail, int, error)
	ListByStudent(ctx context.Context, admissionNumber string) ([]models.FeeRecord, error)
	FindByID(ctx context.Context, id string) (*models.FeeRecord, error)
	Create(ctx context.Context, fee *models.FeeRecord) error
	Update(ctx context.Context, fee *models.FeeRecord) error
	Delete(ctx context.Context, id string) error
}

// CreateFeeRequest records a term fee for a student.
type CreateFeeRequest struct {
	AdmissionNumber string `json:"admission_number" validate:"required,max=20"`
	FeeAmounts
}

// UpdateFeeRequest changes a fee record's term or amounts.
type UpdateFeeRequest struct {
	FeeAmounts
}

// FeeAmounts are the editable fields of a fee record. Balance and status are
// never accepted from clients.
type FeeAmounts struct {
	Term       string  `json:"term" validate:"required,max=20"`
	AmountDue  float64 `json:"amount_due" validate:"gte=0"`
	AmountPaid float64 `json:"amount_paid" validate:"gte=0"`
}

// FeeService manages fee records.
type FeeService struct {
	repo      feeRepository
	students  studentExistence
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs a FeeService.
func NewFeeService(repo feeRepository, students studentExistence, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns the fee register.
func (s *FeeService) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeRecordDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.FieldError("status", "status is not a valid choice")
	}
	fees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee records")
	}
	return fees, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one fee record.
func (s *FeeService) Get(ctx context.Context, id string) (*models.FeeRecord, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee record")
	}
	return fee, nil
}

// Create records a fee after deriving its balance and status.
func (s *FeeService) Create(ctx context.Context, req CreateFeeRequest) (*models.FeeRecord, error) {
	if err := s.validate(req, req.FeeAmounts); err != nil {
		return nil, err
	}
	if err := requireStudent(ctx, s.students, req.AdmissionNumber); err != nil {
		return nil, err
	}
	fee := &models.FeeRecord{AdmissionNumber: req.AdmissionNumber}
	req.apply(fee)
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee record")
	}
	return fee, nil
}

// Update changes a fee record and re-derives balance and status.
func (s *FeeService) Update(ctx context.Context, id string, req UpdateFeeRequest) (*models.FeeRecord, error) {
	if err := s.validate(req, req.FeeAmounts); err != nil {
		return nil, err
	}
	fee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(fee)
	if err := s.repo.Update(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fee record")
	}
	return fee, nil
}

// Delete removes a fee record.
func (s *FeeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fee record")
	}
	return nil
}

func (s *FeeService) validate(req interface{}, amounts FeeAmounts) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid fee payload")
	}
	if amounts.AmountPaid > amounts.AmountDue {
		return appErrors.FieldError("amount_paid", "Amount paid cannot be more than amount due.")
	}
	return nil
}

func (a FeeAmounts) apply(fee *models.FeeRecord) {
	fee.Term = a.Term
	fee.AmountDue = a.AmountDue
	fee.AmountPaid = a.AmountPaid
	DeriveFee(fee)
}

func requireStudent(ctx context.Context, students studentExistence, admissionNumber string) error {
	exists, err := students.Exists(ctx, admissionNumber)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}
