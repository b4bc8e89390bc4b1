// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

// # Repository Implementation

// PostgresAccountRepository implements [Repository] using pgx.
type PostgresAccountRepository struct {
	pool  *pgxpool.Pool
	users *auth.PostgresUserRepository
}

// NewAccountRepository creates a new Postgres implementation for account administration.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool, users: auth.NewUserRepository(pool)}
}

/*
List retrieves a page of accounts, optionally filtered by username substring.

Description: Uses COUNT(*) OVER() so the page and the total come from one query.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*auth.User: Page of accounts
  - int: Total matches
  - error: Database execution errors
*/
func (repository *PostgresAccountRepository) List(context context.Context, filter Filter, limit, offset int) ([]*auth.User, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE TRUE`, auth.UserColumns, schema.UserAccount.Table))

	// Search Query Filtering
	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE '%%' || $%d || '%%'", schema.UserAccount.Username, argID))
		args = append(args, filter.Search)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s ASC LIMIT $%d OFFSET $%d", schema.UserAccount.Username, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_account_repo_list_failed")
	}
	defer rows.Close()

	users := []*auth.User{}
	total := 0
	for rows.Next() {
		user := &auth.User{}
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
			&user.Bio, &user.Role, &user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_account_repo_list_scan_failed")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_account_repo_list_rows_failed")
	}

	return users, total, nil
}

// FindByID retrieves an account by primary key.
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	return repository.users.FindByID(context, id)
}

// FindByUsername retrieves an account by username.
func (repository *PostgresAccountRepository) FindByUsername(context context.Context, username string) (*auth.User, error) {
	return repository.users.FindByUsername(context, username)
}

// Create inserts a new account row.
func (repository *PostgresAccountRepository) Create(context context.Context, user *auth.User) error {
	return repository.users.Create(context, user)
}

/*
Update rewrites the mutable columns of an account and refreshes updatedat.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: apperr.NotFound, apperr.Conflict, or update failures
*/
func (repository *PostgresAccountRepository) Update(context context.Context, user *auth.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.Email, schema.UserAccount.FirstName,
		schema.UserAccount.LastName, schema.UserAccount.Bio, schema.UserAccount.Role,
		schema.UserAccount.IsSuperuser, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	user.UpdatedAt = time.Now()
	response, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.IsSuperuser,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_account_repo_update_failed")
	}

	if response.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
Delete removes an account and everything it authored.

Description: Comments go first (including comments under the account's
reviews), then reviews, then the account, inside one transaction. The
ON DELETE CASCADE foreign keys catch anything inserted concurrently.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresAccountRepository) Delete(context context.Context, id string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_delete_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	// ── 1. Comments written by, or attached to reviews of, the account ──
	commentQuery := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1 OR %s IN (SELECT %s FROM %s WHERE %s = $1)`,
		schema.SocialComment.Table,
		schema.SocialComment.AuthorID, schema.SocialComment.ReviewID,
		schema.SocialReview.ID, schema.SocialReview.Table, schema.SocialReview.AuthorID,
	)
	if _, err := transaction.Exec(context, commentQuery, id); err != nil {
		return dberr.Wrap(err, "postgres_account_repo_delete_comments_failed")
	}

	// ── 2. Reviews ──
	reviewQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.SocialReview.Table, schema.SocialReview.AuthorID)
	if _, err := transaction.Exec(context, reviewQuery, id); err != nil {
		return dberr.Wrap(err, "postgres_account_repo_delete_reviews_failed")
	}

	// ── 3. Account ──
	accountQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserAccount.Table, schema.UserAccount.ID)
	response, err := transaction.Exec(context, accountQuery, id)
	if err != nil {
		return dberr.Wrap(err, "postgres_account_repo_delete_failed")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_account_repo_delete_commit_failed: %w", err)
	}

	return nil
}
