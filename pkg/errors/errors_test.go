package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldErrorKeepsValidationCode(t *testing.T) {
	err := FieldError("marks", "Marks must be between 0 and 100.")

	assert.Equal(t, ErrValidation.Code, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "marks", err.Field)
	assert.Empty(t, ErrValidation.Field)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestIsCodeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNotFound, "student not found"))

	assert.True(t, IsCode(wrapped, ErrNotFound.Code))
	assert.False(t, IsCode(wrapped, ErrConflict.Code))
	assert.False(t, IsCode(sql.ErrNoRows, ErrNotFound.Code))
}
