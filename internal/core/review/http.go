// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/platform/access"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for reviews and comments.
type Handler struct {
	reviewService *Service
}

// NewHandler constructs a new review [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{reviewService: service}
}

// RegisterRoutes attaches review and comment endpoints to the API router.
// Both live under /titles/{titleID}/reviews.
//
// # Security
//
// Reads are public. Posting requires authentication. Editing and deleting
// require the author or a moderator, checked once the target is resolved.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(r chi.Router) {
		r.Use(middleware.Authorize(access.AuthorModeratorOrReadOnly))

		r.Route("/titles/{titleID}/reviews", func(reviews chi.Router) {
			reviews.Get("/", handler.listReviews)
			reviews.Post("/", handler.createReview)
			reviews.Get("/{reviewID}", handler.getReview)
			reviews.Patch("/{reviewID}", handler.updateReview)
			reviews.Delete("/{reviewID}", handler.deleteReview)

			reviews.Route("/{reviewID}/comments", func(comments chi.Router) {
				comments.Get("/", handler.listComments)
				comments.Post("/", handler.createComment)
				comments.Get("/{commentID}", handler.getComment)
				comments.Patch("/{commentID}", handler.updateComment)
				comments.Delete("/{commentID}", handler.deleteComment)
			})
		})
	})
}

// # Review Endpoints

/*
GET /api/v1/titles/{titleID}/reviews.

Response:
  - 200: []Review with pagination meta
  - 404: ErrNotFound: Unknown title
*/
func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	reviews, total, err := handler.reviewService.ListReviews(request.Context(), requestutil.Param(request, "titleID"), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, reviews, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/titles/{titleID}/reviews.

Request:
  - body: ReviewInput

Response:
  - 201: Review
  - 400: ErrValidation or DUPLICATE_REVIEW
  - 401: ErrUnauthorized
  - 404: ErrNotFound: Unknown title
*/
func (handler *Handler) createReview(writer http.ResponseWriter, request *http.Request) {
	var input ReviewInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.reviewService.CreateReview(request.Context(), requestutil.Principal(request), requestutil.Param(request, "titleID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, review)
}

// GET /api/v1/titles/{titleID}/reviews/{reviewID}.
func (handler *Handler) getReview(writer http.ResponseWriter, request *http.Request) {
	review, err := handler.reviewService.GetReview(request.Context(), requestutil.Param(request, "titleID"), requestutil.Param(request, "reviewID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, review)
}

/*
PATCH /api/v1/titles/{titleID}/reviews/{reviewID}.

Request:
  - body: ReviewInput (Partial JSON)

Response:
  - 200: Review
  - 400: ErrValidation
  - 403: ErrForbidden: Caller is neither the author nor a moderator
  - 404: ErrNotFound
*/
func (handler *Handler) updateReview(writer http.ResponseWriter, request *http.Request) {
	var input ReviewInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.reviewService.UpdateReview(request.Context(), requestutil.Principal(request),
		requestutil.Param(request, "titleID"), requestutil.Param(request, "reviewID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, review)
}

// DELETE /api/v1/titles/{titleID}/reviews/{reviewID}.
func (handler *Handler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	err := handler.reviewService.DeleteReview(request.Context(), requestutil.Principal(request),
		requestutil.Param(request, "titleID"), requestutil.Param(request, "reviewID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Comment Endpoints

// GET /api/v1/titles/{titleID}/reviews/{reviewID}/comments.
func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	comments, total, err := handler.reviewService.ListComments(request.Context(),
		requestutil.Param(request, "titleID"), requestutil.Param(request, "reviewID"), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/titles/{titleID}/reviews/{reviewID}/comments.

Request:
  - body: CommentInput

Response:
  - 201: Comment
  - 400: ErrValidation
  - 401: ErrUnauthorized
  - 404: ErrNotFound: Unknown title or review
*/
func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	var input CommentInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.reviewService.CreateComment(request.Context(), requestutil.Principal(request),
		requestutil.Param(request, "titleID"), requestutil.Param(request, "reviewID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

// GET /api/v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}.
func (handler *Handler) getComment(writer http.ResponseWriter, request *http.Request) {
	comment, err := handler.reviewService.GetComment(request.Context(),
		requestutil.Param(request, "titleID"), requestutil.Param(request, "reviewID"), requestutil.Param(request, "commentID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

// PATCH /api/v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}.
func (handler *Handler) updateComment(writer http.ResponseWriter, request *http.Request) {
	var input CommentInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.reviewService.UpdateComment(request.Context(), requestutil.Principal(request),
		requestutil.Param(request, "titleID"), requestutil.Param(request, "reviewID"), requestutil.Param(request, "commentID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

// DELETE /api/v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}.
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	err := handler.reviewService.DeleteComment(request.Context(), requestutil.Principal(request),
		requestutil.Param(request, "titleID"), requestutil.Param(request, "reviewID"), requestutil.Param(request, "commentID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
