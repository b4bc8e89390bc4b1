// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
)

// # Repository Implementation

// PostgresReviewRepository implements [ReviewRepository] using pgx.
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new Postgres implementation for reviews.
func NewReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

// selectReview projects a review joined with its author's username.
func selectReview() string {
	return fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, a.%s, r.%s, r.%s, r.%s
		FROM %s r
		JOIN %s a ON a.%s = r.%s`,
		schema.SocialReview.ID, schema.SocialReview.TitleID, schema.SocialReview.AuthorID, schema.UserAccount.Username,
		schema.SocialReview.Text, schema.SocialReview.Score, schema.SocialReview.PubDate,
		schema.SocialReview.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.SocialReview.AuthorID,
	)
}

func scanReview(row pgx.Row, extra ...any) (*Review, error) {
	review := &Review{}
	destinations := append([]any{
		&review.ID, &review.TitleID, &review.AuthorID, &review.Author,
		&review.Text, &review.Score, &review.PubDate,
	}, extra...)
	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}
	return review, nil
}

// TitleExists checks for the parent title.
func (repository *PostgresReviewRepository) TitleExists(context context.Context, titleID string) error {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, schema.CoreTitle.Table, schema.CoreTitle.ID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, titleID).Scan(&exists); err != nil {
		return dberr.Wrap(err, "postgres_review_repo_title_exists_failed")
	}
	if !exists {
		return apperr.NotFound("Title")
	}
	return nil
}

/*
ListByTitle retrieves a page of a title's reviews, newest first.

Parameters:
  - context: context.Context
  - titleID: string
  - limit: int
  - offset: int

Returns:
  - []*Review: Page of reviews
  - int: Total reviews of the title
  - error: Database execution errors
*/
func (repository *PostgresReviewRepository) ListByTitle(context context.Context, titleID string, limit, offset int) ([]*Review, int, error) {
	query := fmt.Sprintf(`
		SELECT inner_review.*, COUNT(*) OVER() AS total_count
		FROM (%s WHERE r.%s = $1) AS inner_review
		ORDER BY inner_review.%s DESC, inner_review.%s DESC
		LIMIT $2 OFFSET $3`,
		selectReview(), schema.SocialReview.TitleID,
		schema.SocialReview.PubDate, schema.SocialReview.ID,
	)

	rows, err := repository.pool.Query(context, query, titleID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_review_repo_list_failed")
	}
	defer rows.Close()

	reviews := []*Review{}
	total := 0
	for rows.Next() {
		review, err := scanReview(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_review_repo_list_scan_failed")
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_review_repo_list_rows_failed")
	}

	return reviews, total, nil
}

// FindInTitle retrieves a review scoped to its title.
func (repository *PostgresReviewRepository) FindInTitle(context context.Context, titleID, reviewID string) (*Review, error) {
	query := selectReview() + fmt.Sprintf(` WHERE r.%s = $1 AND r.%s = $2`, schema.SocialReview.ID, schema.SocialReview.TitleID)

	review, err := scanReview(repository.pool.QueryRow(context, query, reviewID, titleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Review")
		}
		return nil, dberr.Wrap(err, "postgres_review_repo_find_failed")
	}
	return review, nil
}

// ExistsForAuthor reports whether authorID already reviewed titleID.
func (repository *PostgresReviewRepository) ExistsForAuthor(context context.Context, titleID, authorID string) (bool, error) {
	var exists bool
	err := repository.pool.QueryRow(context, existsForAuthorQuery(), titleID, authorID).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "postgres_review_repo_exists_failed")
	}
	return exists, nil
}

func existsForAuthorQuery() string {
	return fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.SocialReview.Table, schema.SocialReview.TitleID, schema.SocialReview.AuthorID)
}

/*
CreateExclusive inserts a review under a row lock on its title.

Description: The title row is locked with SELECT ... FOR UPDATE, the
(author, title) pair is re-checked, and the review is inserted, all in one
transaction. Concurrent creates for the same title serialize on the lock.
The review_unique_author_title constraint remains the final guard and is
reported as apperr.DuplicateReview as well.

Parameters:
  - context: context.Context
  - review: *Review (ID, TitleID, AuthorID, Text and Score set; PubDate is read back)

Returns:
  - error: apperr.NotFound("Title"), apperr.DuplicateReview, or execution failures
*/
func (repository *PostgresReviewRepository) CreateExclusive(context context.Context, review *Review) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_review_repo_create_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	// ── 1. Lock the title ──
	lockQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CoreTitle.ID, schema.CoreTitle.Table, schema.CoreTitle.ID)
	var lockedID string
	if err := transaction.QueryRow(context, lockQuery, review.TitleID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("Title")
		}
		return dberr.Wrap(err, "postgres_review_repo_create_lock_failed")
	}

	// ── 2. Re-check under the lock ──
	var exists bool
	if err := transaction.QueryRow(context, existsForAuthorQuery(), review.TitleID, review.AuthorID).Scan(&exists); err != nil {
		return dberr.Wrap(err, "postgres_review_repo_create_check_failed")
	}
	if exists {
		return apperr.DuplicateReview()
	}

	// ── 3. Insert ──
	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`,
		schema.SocialReview.Table,
		schema.SocialReview.ID, schema.SocialReview.TitleID, schema.SocialReview.AuthorID,
		schema.SocialReview.Text, schema.SocialReview.Score,
		schema.SocialReview.PubDate,
	)
	err = transaction.QueryRow(context, insertQuery,
		review.ID, review.TitleID, review.AuthorID, review.Text, review.Score,
	).Scan(&review.PubDate)
	if err != nil {
		if dberr.IsUniqueViolation(err, schema.SocialReview.UniqueAuthorTitle) {
			return apperr.DuplicateReview()
		}
		return dberr.Wrap(err, "postgres_review_repo_create_failed")
	}

	if err := transaction.Commit(context); err != nil {
		if dberr.IsUniqueViolation(err, schema.SocialReview.UniqueAuthorTitle) {
			return apperr.DuplicateReview()
		}
		return fmt.Errorf("postgres_review_repo_create_commit_failed: %w", err)
	}

	return nil
}

// Update rewrites the text and score of a review.
func (repository *PostgresReviewRepository) Update(context context.Context, review *Review) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.SocialReview.Table, schema.SocialReview.Text, schema.SocialReview.Score, schema.SocialReview.ID)

	response, err := repository.pool.Exec(context, query, review.ID, review.Text, review.Score)
	if err != nil {
		return dberr.Wrap(err, "postgres_review_repo_update_failed")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}
	return nil
}

/*
Delete removes a review after its comments, in one transaction.

Parameters:
  - context: context.Context
  - reviewID: string

Returns:
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresReviewRepository) Delete(context context.Context, reviewID string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_review_repo_delete_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	// ── 1. Comments ──
	commentQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.SocialComment.Table, schema.SocialComment.ReviewID)
	if _, err := transaction.Exec(context, commentQuery, reviewID); err != nil {
		return dberr.Wrap(err, "postgres_review_repo_delete_comments_failed")
	}

	// ── 2. Review ──
	reviewQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.SocialReview.Table, schema.SocialReview.ID)
	response, err := transaction.Exec(context, reviewQuery, reviewID)
	if err != nil {
		return dberr.Wrap(err, "postgres_review_repo_delete_failed")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_review_repo_delete_commit_failed: %w", err)
	}

	return nil
}
