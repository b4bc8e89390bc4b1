// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware holds the HTTP chain that wraps every route.

Order, outermost first, as wired by the api package:

  - RequestID, StructuredLogger: correlation and one log line per request.
  - Timeout, RateLimit, PanicRecovery, CORS: transport protection.
  - Authenticate: bearer token to [sec.Principal], loaded from storage.
  - Authorize, RequireAuth: per-route request gates.

Object-level permission checks are not here. They run in services once the
target review or comment is loaded.
*/
package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// maxRequestIDLength caps client-supplied correlation IDs.
const maxRequestIDLength = 64

// RequestID reuses a sane client X-Request-ID or mints a UUIDv7, then
// exposes it on the context and the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			requestID := request.Header.Get(constants.HeaderXRequestID)
			if !isPrintableID(requestID) {
				requestID = uuid.New()
			}

			writer.Header().Set(constants.HeaderXRequestID, requestID)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithRequestID(request.Context(), requestID)))
		})
	}
}

func isPrintableID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

// RealIP returns the client address, preferring X-Real-IP and then the
// first X-Forwarded-For hop over the socket peer.
func RealIP(request *http.Request) string {
	if ip := strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP)); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
