// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import "context"

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	// TitleExists returns apperr.NotFound("Title") when the title is absent.
	TitleExists(context context.Context, titleID string) error

	ListByTitle(context context.Context, titleID string, limit, offset int) ([]*Review, int, error)

	// FindInTitle returns the review only if it belongs to titleID.
	FindInTitle(context context.Context, titleID, reviewID string) (*Review, error)

	ExistsForAuthor(context context.Context, titleID, authorID string) (bool, error)

	// CreateExclusive inserts review while holding a lock on its title, so
	// concurrent inserts for the same author and title cannot both succeed.
	// A second review yields apperr.DuplicateReview.
	CreateExclusive(context context.Context, review *Review) error

	Update(context context.Context, review *Review) error

	// Delete removes the review and its comments.
	Delete(context context.Context, reviewID string) error
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	ListByReview(context context.Context, reviewID string, limit, offset int) ([]*Comment, int, error)

	// FindInReview returns the comment only if it belongs to reviewID.
	FindInReview(context context.Context, reviewID, commentID string) (*Comment, error)

	Create(context context.Context, comment *Comment) error

	// Update rewrites the text and review reference. The author is never touched.
	Update(context context.Context, comment *Comment) error

	Delete(context context.Context, commentID string) error
}
