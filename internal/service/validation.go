package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

// NewValidator returns a validator that reports JSON field names and knows
// the closed enums used by request payloads.
func NewValidator() *validator.Validate {
	v := validator.New()
	prepareValidator(v)
	return v
}

func prepareValidator(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return models.Gender(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("subject", func(fl validator.FieldLevel) bool {
		return models.Subject(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return models.Grade(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
}

// validationError converts the first validator failure into a field error.
func validationError(err error, fallback string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
	}
	fe := verrs[0]
	field := fe.Field()
	var message string
	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", field)
	case "max":
		message = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		message = fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		message = fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "datetime":
		message = fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", field)
	case "gender", "subject", "grade", "role", "oneof":
		message = fmt.Sprintf("%s is not a valid choice", field)
	default:
		message = fmt.Sprintf("%s is invalid", field)
	}
	fieldErr := appErrors.FieldError(field, message)
	fieldErr.Err = err
	return fieldErr
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
