// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
		code   string
	}{
		{NotFound("Review"), http.StatusNotFound, CodeNotFound},
		{Unauthorized("x"), http.StatusUnauthorized, CodeUnauthorized},
		{Forbidden(PermissionDenied), http.StatusForbidden, CodeForbidden},
		{Conflict("x"), http.StatusConflict, CodeConflict},
		{ValidationError("x"), http.StatusBadRequest, CodeValidation},
		{DuplicateReview(), http.StatusBadRequest, CodeDuplicateReview},
		{InvalidCredentials(), http.StatusBadRequest, CodeInvalidCredentials},
		{RateLimited(3), http.StatusTooManyRequests, CodeRateLimited},
		{Internal(errors.New("boom")), http.StatusInternalServerError, CodeInternal},
		{ServiceUnavailable("x"), http.StatusServiceUnavailable, CodeUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus, tt.code)
		assert.Equal(t, tt.code, tt.err.Code)
	}

	assert.Equal(t, "Review not found", NotFound("Review").Error())
	assert.Equal(t, "Too many requests. Try again in 3s.", RateLimited(3).Message)
}

func TestHelpers_TraverseWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading title: %w", NotFound("Title"))

	assert.True(t, IsNotFound(wrapped))
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeForbidden))
	assert.Nil(t, As(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation missing")
	err := Internal(cause)

	assert.NotContains(t, err.Error(), "relation")
	assert.ErrorIs(t, err, cause)
}
