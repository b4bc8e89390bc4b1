// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil reads path parameters, JSON bodies and the acting
principal from an incoming request.

Handlers go through it instead of chi and ctxutil directly, so every
endpoint reports a malformed body the same way.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 1 << 20

/*
DecodeJSON decodes the request body into target.

Description: An empty body decodes as {} so that missing fields surface as
field errors from the service. Oversized bodies, malformed JSON and
trailing content all yield validate.ErrInvalidJSON.

Parameters:
  - request: *http.Request
  - target: any (pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if request.Body == nil {
		return nil
	}

	decoder := json.NewDecoder(io.LimitReader(request.Body, MaxBodyBytes+1))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}

	if decoder.InputOffset() > MaxBodyBytes {
		return validate.ErrInvalidJSON
	}

	// Exactly one JSON value per body.
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}

	return nil
}

// Param returns the named chi URL parameter, or "".
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Principal returns the acting principal. Anonymous requests yield nil.
func Principal(request *http.Request) *sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

// RequiredPrincipal returns the principal, or 401 for anonymous requests.
func RequiredPrincipal(request *http.Request) (*sec.Principal, error) {
	principal := ctxutil.GetPrincipal(request.Context())
	if !sec.IsAuthenticated(principal) {
		return nil, apperr.Unauthorized("Authentication credentials were not provided")
	}
	return principal, nil
}
