// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the public authentication endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup : Registers the pair and emails a confirmation code.
//   - POST /token  : Exchanges a confirmation code for a JWT.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/token", handler.token)

	return router
}

/*
Signup registers an account (if new) and sends its confirmation code.

POST /api/v1/auth/signup

Request:
  - Body: SignupInput (username, email)

Response:
  - 200: SignupResult: The accepted pair
  - 400: ErrValidation: Bad input, identity clash, or a code is still pending
  - 503: MAIL_UNAVAILABLE: The confirmation email could not be sent
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input SignupInput

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.authService.Signup(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
Token exchanges a confirmation code for an access token.

POST /api/v1/auth/token

Request:
  - Body: TokenInput (username, confirmation_code)

Response:
  - 200: TokenResult: {access_token}
  - 400: INVALID_CREDENTIALS: Unknown username or wrong code
  - 429: RATE_LIMITED: Too many failed attempts for this username
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	var input TokenInput

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.authService.ExchangeCode(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
