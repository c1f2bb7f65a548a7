package store_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/guildhallapp/guildhall-server/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := &store.Error{Code: http.StatusNotFound, Message: "not found"}
	assert.Equal(t, "not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.HTTPCode())
}

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("badger: key not found")
	err := &store.Error{Code: http.StatusNotFound, Message: "member not found", Err: cause}

	assert.Contains(t, err.Error(), "member not found")
	assert.Contains(t, err.Error(), "badger: key not found")
	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
}

func TestError_WithMessage(t *testing.T) {
	custom := store.ErrNotFound.WithMessage("character not found")

	assert.Equal(t, http.StatusNotFound, custom.Code)
	assert.Equal(t, "character not found", custom.Message)
	assert.Empty(t, store.ErrNotFound.Err, "sentinel must not be mutated")
}

func TestError_WithCause(t *testing.T) {
	cause := errors.New("db error")
	wrapped := store.ErrAlreadyExists.WithCause(cause)

	assert.Equal(t, http.StatusConflict, wrapped.Code)
	assert.Equal(t, store.ErrAlreadyExists.Message, wrapped.Message)
	assert.ErrorIs(t, wrapped, cause)
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      *store.Error
		wantCode int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"already exists", store.ErrAlreadyExists, http.StatusConflict},
		{"invalid input", store.ErrInvalidInput, http.StatusBadRequest},
		{"unauthorized", store.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", store.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.HTTPCode())
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
