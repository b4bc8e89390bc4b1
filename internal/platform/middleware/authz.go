// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/yamdb/internal/platform/access"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// PrincipalLoader resolves the stored role and superuser flag of an account.
type PrincipalLoader interface {
	LoadPrincipal(context context.Context, userID string) (*sec.Principal, error)
}

/*
Authenticate turns a bearer token into a [sec.Principal] on the context.

Description: Requests without an Authorization header continue as
anonymous. A malformed header, a token that fails verification or a token
whose account no longer exists is answered with 401. Role and superuser
status come from the loader, never from the token.

Parameters:
  - verifier: TokenVerifier
  - loader: PrincipalLoader

Returns:
  - func(http.Handler) http.Handler
*/
func Authenticate(verifier TokenVerifier, loader PrincipalLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get(constants.HeaderAuthorization)
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			token, ok := bearerToken(header)
			if !ok {
				unauthorized(writer, request, "Authorization header must be 'Bearer <token>'")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				unauthorized(writer, request, "Given token not valid for any token type")
				return
			}

			principal, err := loader.LoadPrincipal(request.Context(), claims.UserID)
			switch {
			case apperr.IsNotFound(err):
				unauthorized(writer, request, "User not found")
				return
			case err != nil:
				respond.Error(writer, request, err)
				return
			}

			trackPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithPrincipal(request.Context(), principal)))
		})
	}
}

// bearerToken splits "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" || strings.ContainsRune(token, ' ') {
		return "", false
	}
	return token, true
}

func unauthorized(writer http.ResponseWriter, request *http.Request, message string) {
	writer.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	respond.Error(writer, request, apperr.Unauthorized(message))
}

// RequireAuth answers 401 to anonymous requests. It relies on
// [Authenticate] running earlier in the chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !sec.IsAuthenticated(ctxutil.GetPrincipal(request.Context())) {
			unauthorized(writer, request, "Authentication credentials were not provided")
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// Authorize applies the request-level half of rule: 401 for anonymous
// callers it denies, 403 for authenticated ones. The object-level half runs
// in the service after the target is loaded.
func Authorize(rule access.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			err := access.Check(rule, access.Request{
				Method:    request.Method,
				Principal: ctxutil.GetPrincipal(request.Context()),
			})
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
