package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodesAndStatuses(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewNotFound("grievance", nil), "NOT_FOUND", http.StatusNotFound},
		{NewUnauthorized("no"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewPermissionDenied("no"), "PERMISSION_DENIED", http.StatusForbidden},
		{NewConflict("clash", nil), "CONFLICT", http.StatusConflict},
		{NewInvalidAssignment("self", nil), "INVALID_ASSIGNMENT", http.StatusUnprocessableEntity},
		{NewInvalidTransition("final", nil), "INVALID_TRANSITION", http.StatusConflict},
	}
	for _, tc := range tests {
		de := ToDomainError(tc.err)
		require.NotNil(t, de)
		assert.Equal(t, tc.code, de.Code)
		assert.Equal(t, tc.status, de.HTTPStatus)
		assert.True(t, IsCode(tc.err, tc.code))
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestToDomainErrorUnknownIsInternal(t *testing.T) {
	de := ToDomainError(errors.New("disk on fire"))
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
}

func TestMapErrorNilStaysNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
}
