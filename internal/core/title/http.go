// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/platform/access"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/query"
)

// Handler implements the HTTP layer for the title domain.
type Handler struct {
	titleService *Service
}

// NewHandler constructs a new title [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{titleService: service}
}

// Routes returns a [chi.Router] configured with the title domain's endpoints.
//
// # Security
//
// Reads are public. Writes require an administrator.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Authorize(access.Any(access.Admin, access.ReadOnly)))

	router.Get("/", handler.listTitles)
	router.Post("/", handler.createTitle)
	router.Get("/{titleID}", handler.getTitle)
	router.Patch("/{titleID}", handler.updateTitle)
	router.Delete("/{titleID}", handler.deleteTitle)

	return router
}

// # Endpoints

/*
GET /api/v1/titles?genre=&category=&name=&year=&page=&limit=.

Description: genre and category match a substring of the slug, name a
substring of the title name, year is exact. A malformed year is ignored.

Response:
  - 200: []Title with pagination meta
*/
func (handler *Handler) listTitles(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	values := request.URL.Query()

	filter := Filter{
		Genre:    values.Get("genre"),
		Category: values.Get("category"),
		Name:     values.Get("name"),
		Year:     query.IntPtr(values.Get("year")),
	}

	titles, total, err := handler.titleService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, titles, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/titles.

Request:
  - body: WriteInput (category and genre by slug)

Response:
  - 201: Title
  - 400: ErrValidation: Missing field, future year, or unknown slug
  - 401/403: Caller is not an administrator
*/
func (handler *Handler) createTitle(writer http.ResponseWriter, request *http.Request) {
	var input WriteInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, err := handler.titleService.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, title)
}

// GET /api/v1/titles/{titleID}.
func (handler *Handler) getTitle(writer http.ResponseWriter, request *http.Request) {
	title, err := handler.titleService.Get(request.Context(), requestutil.Param(request, "titleID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, title)
}

/*
PATCH /api/v1/titles/{titleID}.

Request:
  - body: WriteInput (Partial JSON)

Response:
  - 200: Title
  - 400: ErrValidation
  - 404: ErrNotFound
*/
func (handler *Handler) updateTitle(writer http.ResponseWriter, request *http.Request) {
	var input WriteInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, err := handler.titleService.Update(request.Context(), requestutil.Param(request, "titleID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, title)
}

// DELETE /api/v1/titles/{titleID}.
func (handler *Handler) deleteTitle(writer http.ResponseWriter, request *http.Request) {
	if err := handler.titleService.Delete(request.Context(), requestutil.Param(request, "titleID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
