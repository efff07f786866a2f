package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsCodeForErrorsIs(t *testing.T) {
	err := Clone(ErrAlreadyClaimed, "already claimed for 900123456")

	assert.True(t, stdErrors.Is(err, ErrAlreadyClaimed))
	assert.False(t, stdErrors.Is(err, ErrNotFound))
	assert.Equal(t, http.StatusConflict, err.Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("disk full"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Contains(t, appErr.Error(), "disk full")
}

func TestFromErrorUnwrapsTyped(t *testing.T) {
	wrapped := fmt.Errorf("ledger: %w", Clone(ErrNotFound, "student not found"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "student not found", appErr.Message)
}
