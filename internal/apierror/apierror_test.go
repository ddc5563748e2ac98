/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package apierror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/craigmalenga/valifi-batch-sub000/internal/apierror"
)

func TestNewAPIError(t *testing.T) {
	details := "visitor_sessions: connection refused"
	apiErr := apierror.NewAPIError(apierror.ErrInternalServer, "Failed to track event", details)

	assert.Equal(t, apierror.ErrInternalServer, apiErr.Code)
	assert.Equal(t, "Failed to track event", apiErr.Message)
	assert.Equal(t, details, apiErr.Details)
	assert.Equal(t, "INTERNAL_SERVER_ERROR: Failed to track event", apiErr.Error())
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", apierror.NewAPIError(apierror.ErrNotFound, "Session not found", nil), http.StatusNotFound},
		{"conflict", apierror.NewAPIError(apierror.ErrConflict, "Conflict occurred", nil), http.StatusConflict},
		{"bad request", apierror.NewAPIError(apierror.ErrBadRequest, "session_id required", nil), http.StatusBadRequest},
		{"invalid input", apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid session_id format", nil), http.StatusBadRequest},
		{"forbidden", apierror.NewAPIError(apierror.ErrForbidden, "Forbidden", nil), http.StatusForbidden},
		{"locked", apierror.NewAPIError(apierror.ErrLocked, "Session busy", nil), http.StatusTooManyRequests},
		{"internal", apierror.NewAPIError(apierror.ErrInternalServer, "Internal server error", nil), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("saving session: %w", apierror.NewAPIError(apierror.ErrNotFound, "Session not found", nil)), http.StatusNotFound},
		{"unknown", errors.New("Unknown error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apierror.MapErrorToHTTPStatus(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, apierror.IsNotFound(fmt.Errorf("load: %w", apierror.NewAPIError(apierror.ErrNotFound, "Session not found", nil))))
	assert.False(t, apierror.IsNotFound(apierror.NewAPIError(apierror.ErrConflict, "x", nil)))
	assert.False(t, apierror.IsNotFound(errors.New("x")))
}
