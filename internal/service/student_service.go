package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/dto"
	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
	"github.com/noah-isme/schooldb-api/pkg/storage"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByAdmissionNumber(ctx context.Context, admissionNumber string) (*models.Student, error)
	Exists(ctx context.Context, admissionNumber string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdatePhoto(ctx context.Context, admissionNumber string, photoPath *string) error
	Delete(ctx context.Context, admissionNumber string) error
}

type photoStorage interface {
	Save(name string, data []byte) (string, error)
	Path(name string) (string, error)
	Delete(name string) error
}

type photoSigner interface {
	Generate(owner, relPath string) (string, time.Time, error)
	Parse(token string) (owner, relPath string, err error)
}

// CreateStudentRequest holds payload for registering a student.
type CreateStudentRequest struct {
	AdmissionNumber string `json:"admission_number" validate:"required,max=20"`
	StudentFields
}

// UpdateStudentRequest holds payload for updating a student.
type UpdateStudentRequest struct {
	StudentFields
}

// StudentFields are the editable bio-data fields.
type StudentFields struct {
	FirstName     string `json:"first_name" validate:"required,max=50"`
	LastName      string `json:"last_name" validate:"required,max=50"`
	DateOfBirth   string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender        string `json:"gender" validate:"required,gender"`
	Class         string `json:"student_class" validate:"required,max=20"`
	Stream        string `json:"stream" validate:"required,max=5"`
	ContactNumber string `json:"contact_number" validate:"omitempty,max=15"`
	ParentName    string `json:"parent_name" validate:"omitempty,max=50"`
	ParentContact string `json:"parent_contact" validate:"omitempty,max=15"`
	Address       string `json:"address"`
}

func (f StudentFields) apply(student *models.Student) error {
	dob, err := models.ParseDate(f.DateOfBirth)
	if err != nil {
		return appErrors.FieldError("dob", "dob must be a date formatted as YYYY-MM-DD")
	}
	student.FirstName = f.FirstName
	student.LastName = f.LastName
	student.DateOfBirth = dob
	student.Gender = models.Gender(f.Gender)
	student.Class = f.Class
	student.Stream = f.Stream
	student.ContactNumber = f.ContactNumber
	student.ParentName = f.ParentName
	student.ParentContact = f.ParentContact
	student.Address = f.Address
	return nil
}

// PhotoOptions bounds accepted uploads.
type PhotoOptions struct {
	MaxFileSizeBytes int64
	MaxDimension     int
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	photos    photoStorage
	signer    photoSigner
	options   PhotoOptions
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service. photos and signer may be
// nil when photo support is not configured.
func NewStudentService(repo studentRepository, photos photoStorage, signer photoSigner, options PhotoOptions, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.MaxFileSizeBytes <= 0 {
		options.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	if options.MaxDimension <= 0 {
		options.MaxDimension = 600
	}
	return &StudentService{repo: repo, photos: photos, signer: signer, options: options, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Grouped returns every student organised by class then stream.
func (s *StudentService) Grouped(ctx context.Context) ([]dto.ClassGroup, error) {
	students, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	// rows arrive ordered by class, stream, name
	groups := make([]dto.ClassGroup, 0)
	for _, student := range students {
		if len(groups) == 0 || groups[len(groups)-1].Class != student.Class {
			groups = append(groups, dto.ClassGroup{Class: student.Class})
		}
		class := &groups[len(groups)-1]
		if len(class.Streams) == 0 || class.Streams[len(class.Streams)-1].Stream != student.Stream {
			class.Streams = append(class.Streams, dto.StreamGroup{Stream: student.Stream})
		}
		stream := &class.Streams[len(class.Streams)-1]
		stream.Students = append(stream.Students, student)
	}
	return groups, nil
}

// Get returns a student by admission number.
func (s *StudentService) Get(ctx context.Context, admissionNumber string) (*models.Student, error) {
	student, err := s.repo.FindByAdmissionNumber(ctx, admissionNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Lookup resolves a searched admission number.
func (s *StudentService) Lookup(ctx context.Context, admissionNumber string) (*models.Student, error) {
	if admissionNumber == "" {
		return nil, appErrors.FieldError("admission_number", "admission_number is required")
	}
	student, err := s.Get(ctx, admissionNumber)
	if appErrors.IsCode(err, appErrors.ErrNotFound.Code) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Student with admission number %s not found.", admissionNumber))
	}
	return student, err
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	exists, err := s.repo.Exists(ctx, req.AdmissionNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate admission number")
	}
	if exists {
		return nil, appErrors.Conflict("admission_number", "admission number already registered")
	}

	student := &models.Student{AdmissionNumber: req.AdmissionNumber}
	if err := req.apply(student); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student's bio-data.
func (s *StudentService) Update(ctx context.Context, admissionNumber string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := s.Get(ctx, admissionNumber)
	if err != nil {
		return nil, err
	}
	if err := req.apply(student); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student together with every record they own.
func (s *StudentService) Delete(ctx context.Context, admissionNumber string) error {
	student, err := s.Get(ctx, admissionNumber)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, admissionNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if student.HasPhoto() && s.photos != nil {
		if err := s.photos.Delete(*student.PhotoPath); err != nil {
			s.logger.Warn("failed to delete student photo", zap.String("admission_number", admissionNumber), zap.Error(err))
		}
	}
	return nil
}

// UploadPhoto normalises and stores a new photo, replacing any previous one.
func (s *StudentService) UploadPhoto(ctx context.Context, admissionNumber string, r io.Reader, size int64) (*models.Student, error) {
	if s.photos == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "photo storage is not configured")
	}
	if size > s.options.MaxFileSizeBytes {
		return nil, appErrors.FieldError("photo", fmt.Sprintf("Photo must be at most %d bytes.", s.options.MaxFileSizeBytes))
	}
	student, err := s.Get(ctx, admissionNumber)
	if err != nil {
		return nil, err
	}

	data, err := storage.NormalizePhoto(io.LimitReader(r, s.options.MaxFileSizeBytes+1), s.options.MaxDimension)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return nil, appErrors.FieldError("photo", "Photo must be a JPEG or PNG image.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process photo")
	}

	name, err := s.photos.Save(uuid.NewString()+".jpg", data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	if err := s.repo.UpdatePhoto(ctx, admissionNumber, &name); err != nil {
		_ = s.photos.Delete(name)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student photo")
	}

	if student.HasPhoto() {
		if err := s.photos.Delete(*student.PhotoPath); err != nil {
			s.logger.Warn("failed to delete replaced photo", zap.String("admission_number", admissionNumber), zap.Error(err))
		}
	}
	student.PhotoPath = &name
	return student, nil
}

// PhotoLink issues a signed download token for the student's photo.
func (s *StudentService) PhotoLink(ctx context.Context, admissionNumber string) (*dto.PhotoLink, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "photo links are not configured")
	}
	student, err := s.Get(ctx, admissionNumber)
	if err != nil {
		return nil, err
	}
	if !student.HasPhoto() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no photo")
	}
	token, expiresAt, err := s.signer.Generate(student.AdmissionNumber, *student.PhotoPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo link")
	}
	return &dto.PhotoLink{Token: token, ExpiresAt: expiresAt}, nil
}

// OpenPhoto resolves a download token to the stored file location. Tokens
// for a replaced photo stop working.
func (s *StudentService) OpenPhoto(ctx context.Context, token string) (string, error) {
	if s.signer == nil || s.photos == nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	owner, name, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return "", appErrors.Clone(appErrors.ErrForbidden, "photo link has expired")
		}
		return "", appErrors.Clone(appErrors.ErrForbidden, "invalid photo link")
	}
	student, err := s.Get(ctx, owner)
	if err != nil {
		return "", err
	}
	if !student.HasPhoto() || *student.PhotoPath != name {
		return "", appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	path, err := s.photos.Path(name)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve photo")
	}
	return path, nil
}
