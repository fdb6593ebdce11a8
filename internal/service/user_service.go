package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/internal/repository"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type userRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateUserRequest represents payload for creating accounts. Student
// accounts use the admission number as username.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,role"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserService provisions login accounts.
type UserService struct {
	repo      userRepository
	students  studentExistence
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService. students may be nil,
// in which case STUDENT accounts are not checked against the register.
func NewUserService(repo userRepository, students studentExistence, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{repo: repo, students: students, validator: validate, logger: logger}
}

// Get returns an account by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create registers a new account. actorID is recorded in the audit log and
// may be empty for accounts seeded from the command line.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actorID string) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid user payload")
	}

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Conflict("username", "username already in use")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}

	role := models.UserRole(req.Role)
	if role == models.RoleStudent && s.students != nil {
		if err := requireStudent(ctx, s.students, req.Username); err != nil {
			return nil, err
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); errors.Is(err, repository.ErrUsernameTaken) {
		return nil, appErrors.Conflict("username", "username already in use")
	} else if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	payload, _ := json.Marshal(map[string]interface{}{"username": user.Username, "role": user.Role})
	audit := &models.AuditLog{
		Action:     models.AuditActionCreate,
		Resource:   "user",
		ResourceID: &user.ID,
		NewValues:  payload,
	}
	if actorID != "" {
		audit.UserID = &actorID
	}
	if err := s.repo.CreateAuditLog(ctx, audit); err != nil {
		s.logger.Warn("failed to record user audit log", zap.Error(err))
	}

	s.logger.Info("user created", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}
