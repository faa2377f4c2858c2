package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFound("doctor", nil), http.StatusNotFound},
		{"bad request", BadRequest("invalid slot", nil), http.StatusBadRequest},
		{"conflict", Conflict("duplicate", nil), http.StatusConflict},
		{"unauthorized", Unauthorized(nil), http.StatusUnauthorized},
		{"forbidden", Forbidden(nil), http.StatusForbidden},
		{"internal", Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestAs_FindsWrappedAppError(t *testing.T) {
	base := NotFound("token", nil)
	wrapped := fmt.Errorf("failed to cancel token: %w", base)

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "token not found", appErr.Message)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
