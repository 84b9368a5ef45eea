package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("photo").Status)
	assert.Equal(t, "photo not found", NotFound("photo").Message)
	assert.Equal(t, "text: is required", Validation("text", "is required").Message)
	assert.Equal(t, http.StatusBadRequest, Conflict("already following this user").Status)
	assert.Equal(t, http.StatusForbidden, Forbidden("no").Status)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("no").Status)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("toggle like: %w", NotFound("photo"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestWrapf(t *testing.T) {
	assert.Nil(t, Wrapf(nil, "noop"))

	domain := Forbidden("not yours")
	assert.Same(t, domain, Wrapf(domain, "delete photo"))

	cause := errors.New("disk full")
	wrapped := Wrapf(cause, "store image %s", "k1")
	var apiErr *APIError
	assert.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, CodeInternal, apiErr.Code)
	assert.Equal(t, "internal server error", apiErr.Message)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "store image k1")
}
