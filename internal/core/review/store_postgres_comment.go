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

// PostgresCommentRepository implements [CommentRepository] using pgx.
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new Postgres implementation for comments.
func NewCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

func selectComment() string {
	return fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, a.%s, c.%s, c.%s
		FROM %s c
		JOIN %s a ON a.%s = c.%s`,
		schema.SocialComment.ID, schema.SocialComment.ReviewID, schema.SocialComment.AuthorID, schema.UserAccount.Username,
		schema.SocialComment.Text, schema.SocialComment.PubDate,
		schema.SocialComment.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.SocialComment.AuthorID,
	)
}

func scanComment(row pgx.Row, extra ...any) (*Comment, error) {
	comment := &Comment{}
	destinations := append([]any{
		&comment.ID, &comment.ReviewID, &comment.AuthorID, &comment.Author,
		&comment.Text, &comment.PubDate,
	}, extra...)
	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByReview retrieves a page of a review's comments, newest first.
func (repository *PostgresCommentRepository) ListByReview(context context.Context, reviewID string, limit, offset int) ([]*Comment, int, error) {
	query := fmt.Sprintf(`
		SELECT inner_comment.*, COUNT(*) OVER() AS total_count
		FROM (%s WHERE c.%s = $1) AS inner_comment
		ORDER BY inner_comment.%s DESC, inner_comment.%s DESC
		LIMIT $2 OFFSET $3`,
		selectComment(), schema.SocialComment.ReviewID,
		schema.SocialComment.PubDate, schema.SocialComment.ID,
	)

	rows, err := repository.pool.Query(context, query, reviewID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_comment_repo_list_failed")
	}
	defer rows.Close()

	comments := []*Comment{}
	total := 0
	for rows.Next() {
		comment, err := scanComment(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_comment_repo_list_scan_failed")
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_comment_repo_list_rows_failed")
	}

	return comments, total, nil
}

// FindInReview retrieves a comment scoped to its review.
func (repository *PostgresCommentRepository) FindInReview(context context.Context, reviewID, commentID string) (*Comment, error) {
	query := selectComment() + fmt.Sprintf(` WHERE c.%s = $1 AND c.%s = $2`, schema.SocialComment.ID, schema.SocialComment.ReviewID)

	comment, err := scanComment(repository.pool.QueryRow(context, query, commentID, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comment")
		}
		return nil, dberr.Wrap(err, "postgres_comment_repo_find_failed")
	}
	return comment, nil
}

// Create inserts a comment and reads back its publication date.
func (repository *PostgresCommentRepository) Create(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`,
		schema.SocialComment.Table,
		schema.SocialComment.ID, schema.SocialComment.ReviewID, schema.SocialComment.AuthorID, schema.SocialComment.Text,
		schema.SocialComment.PubDate,
	)

	err := repository.pool.QueryRow(context, query,
		comment.ID, comment.ReviewID, comment.AuthorID, comment.Text,
	).Scan(&comment.PubDate)
	return dberr.Wrap(err, "postgres_comment_repo_create_failed")
}

// Update rewrites the text and review reference of a comment.
func (repository *PostgresCommentRepository) Update(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.SocialComment.Table, schema.SocialComment.ReviewID, schema.SocialComment.Text, schema.SocialComment.ID)

	response, err := repository.pool.Exec(context, query, comment.ID, comment.ReviewID, comment.Text)
	if err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_update_failed")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}
	return nil
}

// Delete removes a comment.
func (repository *PostgresCommentRepository) Delete(context context.Context, commentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.SocialComment.Table, schema.SocialComment.ID)

	response, err := repository.pool.Exec(context, query, commentID)
	if err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_delete_failed")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}
	return nil
}
