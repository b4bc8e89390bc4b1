// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/yamdb/internal/platform/access"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// ObjectGuard evaluates an object-level rule against the caller. [access.Guard] satisfies it.
type ObjectGuard interface {
	Object(context context.Context, rule access.Rule, method string, principal *sec.Principal, object access.Owned) error
}

// # Service Layer

// Service orchestrates business rules for reviews and comments.
type Service struct {
	reviewRepository  ReviewRepository
	commentRepository CommentRepository
	guard             ObjectGuard
	logger            *slog.Logger
}

// NewService constructs a review [Service].
func NewService(reviewRepo ReviewRepository, commentRepo CommentRepository, guard ObjectGuard, logger *slog.Logger) *Service {
	return &Service{
		reviewRepository:  reviewRepo,
		commentRepository: commentRepo,
		guard:             guard,
		logger:            logger,
	}
}

// # Reviews

/*
ListReviews returns a page of a title's reviews.

Parameters:
  - context: context.Context
  - titleID: string
  - params: pagination.Params

Returns:
  - []*Review: Page of reviews
  - int: Total reviews of the title
  - error: NotFound("Title") or retrieval failures
*/
func (service *Service) ListReviews(context context.Context, titleID string, params pagination.Params) ([]*Review, int, error) {
	if err := service.requireTitle(context, titleID); err != nil {
		return nil, 0, err
	}

	reviews, total, err := service.reviewRepository.ListByTitle(context, titleID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("review_service_list_failed: %w", err)
	}
	return reviews, total, nil
}

// GetReview returns a review of the given title.
func (service *Service) GetReview(context context.Context, titleID, reviewID string) (*Review, error) {
	return service.resolveReview(context, titleID, reviewID)
}

/*
CreateReview posts the caller's review of a title.

Description: The title must exist, the text and score must be valid, and
the caller must not have reviewed the title yet. The repository repeats the
duplicate check under a lock on the title, so two concurrent requests by the
same author cannot both succeed.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - titleID: string
  - input: ReviewInput

Returns:
  - *Review: The stored review
  - error: Unauthorized, NotFound("Title"), ValidationError, DuplicateReview, or storage failures
*/
func (service *Service) CreateReview(context context.Context, principal *sec.Principal, titleID string, input ReviewInput) (*Review, error) {
	if !sec.IsAuthenticated(principal) {
		return nil, apperr.Unauthorized("Authentication credentials were not provided")
	}

	// ── 1. Parent title ──
	if err := service.requireTitle(context, titleID); err != nil {
		return nil, err
	}

	// ── 2. Payload ──
	validator := &validate.Validator{}
	validator.Present(FieldText, input.Text != nil && strings.TrimSpace(*input.Text) != "").
		Present(FieldScore, input.Score != nil)
	if input.Score != nil {
		validator.Range(FieldScore, *input.Score, ScoreMin, ScoreMax)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 3. One review per author and title ──
	exists, err := service.reviewRepository.ExistsForAuthor(context, titleID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.DuplicateReview()
	}

	review := &Review{
		ID:       uuid.New(),
		TitleID:  titleID,
		AuthorID: principal.UserID,
		Author:   principal.Username,
		Text:     *input.Text,
		Score:    *input.Score,
	}
	if err := service.reviewRepository.CreateExclusive(context, review); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "review_created",
		slog.String("review_id", review.ID),
		slog.String("title_id", titleID),
		slog.String("author_id", review.AuthorID),
		slog.Int("score", review.Score),
	)

	return review, nil
}

/*
UpdateReview applies a partial update to a review.

Description: The review is resolved first (404), then the caller must be its
author or a moderator (403), then the payload is validated. The author and
title never change.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - titleID: string
  - reviewID: string
  - input: ReviewInput

Returns:
  - *Review: The updated review
  - error: NotFound, Unauthorized, Forbidden, ValidationError, or storage failures
*/
func (service *Service) UpdateReview(context context.Context, principal *sec.Principal, titleID, reviewID string, input ReviewInput) (*Review, error) {
	review, err := service.resolveReview(context, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if err := service.guard.Object(context, access.AuthorModeratorOrReadOnly, http.MethodPatch, principal, review); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if input.Text != nil {
		validator.NotBlank(FieldText, *input.Text)
		review.Text = *input.Text
	}
	if input.Score != nil {
		validator.Range(FieldScore, *input.Score, ScoreMin, ScoreMax)
		review.Score = *input.Score
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.reviewRepository.Update(context, review); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "review_updated",
		slog.String("review_id", review.ID),
		slog.String("editor_id", principal.UserID),
	)

	return review, nil
}

// DeleteReview removes a review and its comments. Only the author or a moderator may do so.
func (service *Service) DeleteReview(context context.Context, principal *sec.Principal, titleID, reviewID string) error {
	review, err := service.resolveReview(context, titleID, reviewID)
	if err != nil {
		return err
	}

	if err := service.guard.Object(context, access.AuthorModeratorOrReadOnly, http.MethodDelete, principal, review); err != nil {
		return err
	}

	if err := service.reviewRepository.Delete(context, review.ID); err != nil {
		return err
	}

	service.logger.WarnContext(context, "review_deleted",
		slog.String("review_id", review.ID),
		slog.String("editor_id", principal.UserID),
	)

	return nil
}

// # Comments

// ListComments returns a page of the comments under a review.
func (service *Service) ListComments(context context.Context, titleID, reviewID string, params pagination.Params) ([]*Comment, int, error) {
	review, err := service.resolveReview(context, titleID, reviewID)
	if err != nil {
		return nil, 0, err
	}

	comments, total, err := service.commentRepository.ListByReview(context, review.ID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("comment_service_list_failed: %w", err)
	}
	return comments, total, nil
}

// GetComment returns a comment under the given review.
func (service *Service) GetComment(context context.Context, titleID, reviewID, commentID string) (*Comment, error) {
	review, err := service.resolveReview(context, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return service.resolveComment(context, review.ID, commentID)
}

/*
CreateComment posts a comment under a review on behalf of the caller.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - titleID: string
  - reviewID: string
  - input: CommentInput

Returns:
  - *Comment: The stored comment
  - error: Unauthorized, NotFound, ValidationError, or storage failures
*/
func (service *Service) CreateComment(context context.Context, principal *sec.Principal, titleID, reviewID string, input CommentInput) (*Comment, error) {
	if !sec.IsAuthenticated(principal) {
		return nil, apperr.Unauthorized("Authentication credentials were not provided")
	}

	review, err := service.resolveReview(context, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if input.Text == nil || strings.TrimSpace(*input.Text) == "" {
		return nil, validate.FieldError(FieldText, "This field is required")
	}

	comment := &Comment{
		ID:       uuid.New(),
		ReviewID: review.ID,
		AuthorID: principal.UserID,
		Author:   principal.Username,
		Text:     *input.Text,
	}
	if err := service.commentRepository.Create(context, comment); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "comment_created",
		slog.String("comment_id", comment.ID),
		slog.String("review_id", review.ID),
		slog.String("author_id", comment.AuthorID),
	)

	return comment, nil
}

/*
UpdateComment edits a comment.

Description: The review is re-resolved from the path and pinned onto the
comment on every save. The stored author is kept, so a moderator editing
someone else's comment does not take it over.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - titleID: string
  - reviewID: string
  - commentID: string
  - input: CommentInput

Returns:
  - *Comment: The updated comment
  - error: NotFound, Unauthorized, Forbidden, ValidationError, or storage failures
*/
func (service *Service) UpdateComment(context context.Context, principal *sec.Principal, titleID, reviewID, commentID string, input CommentInput) (*Comment, error) {
	review, err := service.resolveReview(context, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	comment, err := service.resolveComment(context, review.ID, commentID)
	if err != nil {
		return nil, err
	}

	if err := service.guard.Object(context, access.AuthorModeratorOrReadOnly, http.MethodPatch, principal, comment); err != nil {
		return nil, err
	}

	if input.Text != nil {
		if strings.TrimSpace(*input.Text) == "" {
			return nil, validate.FieldError(FieldText, "This field may not be blank")
		}
		comment.Text = *input.Text
	}
	comment.ReviewID = review.ID

	if err := service.commentRepository.Update(context, comment); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "comment_updated",
		slog.String("comment_id", comment.ID),
		slog.String("editor_id", principal.UserID),
	)

	return comment, nil
}

// DeleteComment removes a comment. Only the author or a moderator may do so.
func (service *Service) DeleteComment(context context.Context, principal *sec.Principal, titleID, reviewID, commentID string) error {
	review, err := service.resolveReview(context, titleID, reviewID)
	if err != nil {
		return err
	}

	comment, err := service.resolveComment(context, review.ID, commentID)
	if err != nil {
		return err
	}

	if err := service.guard.Object(context, access.AuthorModeratorOrReadOnly, http.MethodDelete, principal, comment); err != nil {
		return err
	}

	if err := service.commentRepository.Delete(context, comment.ID); err != nil {
		return err
	}

	service.logger.WarnContext(context, "comment_deleted",
		slog.String("comment_id", comment.ID),
		slog.String("editor_id", principal.UserID),
	)

	return nil
}

// # Resolution

// requireTitle fails with NotFound("Title") for malformed or unknown identifiers.
func (service *Service) requireTitle(context context.Context, titleID string) error {
	if !uuid.IsValid(titleID) {
		return apperr.NotFound("Title")
	}
	return service.reviewRepository.TitleExists(context, titleID)
}

// resolveReview walks title then review, so each level reports its own NotFound.
func (service *Service) resolveReview(context context.Context, titleID, reviewID string) (*Review, error) {
	if err := service.requireTitle(context, titleID); err != nil {
		return nil, err
	}
	if !uuid.IsValid(reviewID) {
		return nil, apperr.NotFound("Review")
	}
	return service.reviewRepository.FindInTitle(context, titleID, reviewID)
}

func (service *Service) resolveComment(context context.Context, reviewID, commentID string) (*Comment, error) {
	if !uuid.IsValid(commentID) {
		return nil, apperr.NotFound("Comment")
	}
	return service.commentRepository.FindInReview(context, reviewID, commentID)
}
