package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDatabaseErrorClassifiesCause(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		kind   error
	}{
		{"not found sentinel", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound, ErrNotFound},
		{"gorm record not found", errors.New("record not found"), http.StatusNotFound, ErrNotFound},
		{"postgres duplicate", errors.New(`duplicate key value violates unique constraint "projects_pkey"`), http.StatusConflict, ErrAlreadyExists},
		{"sqlite duplicate", errors.New("UNIQUE constraint failed: projects.id"), http.StatusConflict, ErrAlreadyExists},
		{"connection refused", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, ErrDatabaseConnection},
		{"anything else", errors.New("syntax error at or near"), http.StatusInternalServerError, ErrDatabaseQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("update", "project", tt.cause)

			assert.Equal(t, tt.status, err.StatusCode)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestApiErrUnwrapsKindNotCause(t *testing.T) {
	cause := errors.New("s3: access denied")
	err := NewUploadFailedError("cover.png", cause)

	assert.True(t, IsUploadFailed(err))
	assert.NotErrorIs(t, err, cause)
	assert.Equal(t, "upload failed: Failed to store cover.png -> s3: access denied", err.GetFullError())
}

func TestMaxBodySizeIsFileTooLarge(t *testing.T) {
	err := NewMaxBodySizeExceededError(1 << 20)

	assert.Equal(t, http.StatusRequestEntityTooLarge, err.StatusCode)
	assert.ErrorIs(t, err, ErrMaxBodySizeExceeded)
	assert.True(t, IsFileTooLarge(err))
}

func TestNestedFullError(t *testing.T) {
	inner := NewDatabaseError("list", "projects", errors.New("connection reset by peer"))
	outer := &ApiErr{StatusCode: http.StatusServiceUnavailable, err: ErrStoreUnavailable, Cause: inner}

	assert.Equal(t,
		"project store unavailable -> database connection failed: project store unavailable: Unable to connect to database -> connection reset by peer",
		outer.GetFullError())
}
