// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/pkg/query"
)

// # Repository Implementation

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Postgres implementation for titles.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// selectTitle is the projection shared by List and FindByID. The scores,
// category and genre columns are correlated sub-queries on t.
func selectTitle() string {
	return fmt.Sprintf(`
		SELECT t.%[1]s, t.%[2]s, t.%[3]s, t.%[4]s, t.%[5]s,
			COALESCE((SELECT array_agg(r.%[6]s) FROM %[7]s r WHERE r.%[8]s = t.%[1]s), '{}') AS scores,
			(SELECT json_build_object('name', c.%[9]s, 'slug', c.%[10]s)
				FROM %[11]s c WHERE c.%[12]s = t.%[5]s) AS category,
			COALESCE((
				SELECT json_agg(json_build_object('name', g.%[13]s, 'slug', g.%[14]s) ORDER BY g.%[13]s)
				FROM %[15]s tg
				JOIN %[16]s g ON g.%[17]s = tg.%[18]s
				WHERE tg.%[19]s = t.%[1]s
			), '[]') AS genre,
			t.%[20]s, t.%[21]s`,
		schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.Description, schema.CoreTitle.CategoryID,
		schema.SocialReview.Score, schema.SocialReview.Table, schema.SocialReview.TitleID,
		schema.CoreCategory.Name, schema.CoreCategory.Slug, schema.CoreCategory.Table, schema.CoreCategory.ID,
		schema.CoreGenre.Name, schema.CoreGenre.Slug, schema.CoreTitleGenre.Table, schema.CoreGenre.Table, schema.CoreGenre.ID,
		schema.CoreTitleGenre.GenreID, schema.CoreTitleGenre.TitleID,
		schema.CoreTitle.CreatedAt, schema.CoreTitle.UpdatedAt,
	)
}

// scanTitle reads one row of selectTitle, plus any trailing destinations.
func scanTitle(row pgx.Row, extra ...any) (*Title, error) {
	title := &Title{}
	var scores []int
	var categoryJSON, genreJSON []byte

	destinations := append([]any{
		&title.ID, &title.Name, &title.Year, &title.Description, &title.CategoryID,
		&scores, &categoryJSON, &genreJSON,
		&title.CreatedAt, &title.UpdatedAt,
	}, extra...)

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}

	title.Rating = review.ComputeRating(scores)

	if len(categoryJSON) > 0 {
		if err := json.Unmarshal(categoryJSON, &title.Category); err != nil {
			return nil, fmt.Errorf("postgres_title_repo_category_decode_failed: %w", err)
		}
	}
	if err := json.Unmarshal(genreJSON, &title.Genre); err != nil {
		return nil, fmt.Errorf("postgres_title_repo_genre_decode_failed: %w", err)
	}

	return title, nil
}

/*
List retrieves a filtered page of titles with their derived rating.

Description: Filters are appended to a strings.Builder with positional
arguments tracked by argID. Genre and category filters match substrings of
the slug through EXISTS sub-queries, name matches a substring, and year is
an exact match.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Title: Page of titles
  - int: Total matches
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(selectTitle())
	queryBuilder.WriteString(fmt.Sprintf(`, COUNT(*) OVER() AS total_count
		FROM %s t
		WHERE TRUE`, schema.CoreTitle.Table))

	// Genre Filtering
	if filter.Genre != "" {
		queryBuilder.WriteString(fmt.Sprintf(`
			AND EXISTS (
				SELECT 1 FROM %s tg JOIN %s g ON g.%s = tg.%s
				WHERE tg.%s = t.%s AND g.%s LIKE $%d
			)`,
			schema.CoreTitleGenre.Table, schema.CoreGenre.Table, schema.CoreGenre.ID, schema.CoreTitleGenre.GenreID,
			schema.CoreTitleGenre.TitleID, schema.CoreTitle.ID, schema.CoreGenre.Slug, argID,
		))
		args = append(args, query.Contains(filter.Genre))
		argID++
	}

	// Category Filtering
	if filter.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(`
			AND EXISTS (
				SELECT 1 FROM %s c
				WHERE c.%s = t.%s AND c.%s LIKE $%d
			)`,
			schema.CoreCategory.Table, schema.CoreCategory.ID, schema.CoreTitle.CategoryID, schema.CoreCategory.Slug, argID,
		))
		args = append(args, query.Contains(filter.Category))
		argID++
	}

	// Name Filtering
	if filter.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s LIKE $%d", schema.CoreTitle.Name, argID))
		args = append(args, query.Contains(filter.Name))
		argID++
	}

	// Year Filtering
	if filter.Year != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s = $%d", schema.CoreTitle.Year, argID))
		args = append(args, *filter.Year)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY t.%s ASC, t.%s ASC LIMIT $%d OFFSET $%d",
		schema.CoreTitle.Name, schema.CoreTitle.ID, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_title_repo_list_failed")
	}
	defer rows.Close()

	titles := []*Title{}
	total := 0
	for rows.Next() {
		title, err := scanTitle(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_title_repo_list_scan_failed")
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_title_repo_list_rows_failed")
	}

	return titles, total, nil
}

/*
FindByID retrieves a single title with rating, category and genres.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Title: The hydrated title
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Title, error) {
	statement := selectTitle() + fmt.Sprintf(`
		FROM %s t
		WHERE t.%s = $1`, schema.CoreTitle.Table, schema.CoreTitle.ID)

	title, err := scanTitle(repository.pool.QueryRow(context, statement, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Title")
		}
		return nil, dberr.Wrap(err, "postgres_title_repo_find_failed")
	}

	// Storage links are needed by partial updates that leave genres untouched.
	linkQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		schema.CoreTitleGenre.GenreID, schema.CoreTitleGenre.Table, schema.CoreTitleGenre.TitleID, schema.CoreTitleGenre.GenreID)
	rows, err := repository.pool.Query(context, linkQuery, id)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_title_repo_find_links_failed")
	}
	genreIDs, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_title_repo_find_links_scan_failed")
	}
	title.GenreIDs = genreIDs

	return title, nil
}

/*
Create inserts a title and its genre links in one transaction.

Parameters:
  - context: context.Context
  - title: *Title

Returns:
  - error: ValidationError for a vanished category or genre, or execution failures
*/
func (repository *PostgresRepository) Create(context context.Context, title *Title) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_title_repo_create_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	// ── 1. Title row ──
	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s`,
		schema.CoreTitle.Table,
		schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.Description, schema.CoreTitle.CategoryID,
		schema.CoreTitle.CreatedAt, schema.CoreTitle.UpdatedAt,
	)
	err = transaction.QueryRow(context, insertQuery,
		title.ID, title.Name, title.Year, title.Description, title.CategoryID,
	).Scan(&title.CreatedAt, &title.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "postgres_title_repo_create_failed")
	}

	// ── 2. Genre links ──
	if err := repository.updateGenres(context, transaction, title.ID, title.GenreIDs); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_title_repo_create_commit_failed: %w", err)
	}

	return nil
}

/*
Update rewrites the title columns and, when GenreIDs is non-nil, its genre links.

Parameters:
  - context: context.Context
  - title: *Title

Returns:
  - error: apperr.NotFound, ValidationError, or execution failures
*/
func (repository *PostgresRepository) Update(context context.Context, title *Title) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_title_repo_update_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	// ── 1. Title row ──
	updateQuery := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.CoreTitle.Table,
		schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.Description, schema.CoreTitle.CategoryID, schema.CoreTitle.UpdatedAt,
		schema.CoreTitle.ID,
		schema.CoreTitle.UpdatedAt,
	)
	err = transaction.QueryRow(context, updateQuery,
		title.ID, title.Name, title.Year, title.Description, title.CategoryID,
	).Scan(&title.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("Title")
		}
		return dberr.Wrap(err, "postgres_title_repo_update_failed")
	}

	// ── 2. Genre links ──
	if title.GenreIDs != nil {
		if err := repository.updateGenres(context, transaction, title.ID, title.GenreIDs); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_title_repo_update_commit_failed: %w", err)
	}

	return nil
}

/*
Delete removes a title together with its reviews, their comments and its
genre links, in that order, inside one transaction.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_title_repo_delete_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	// ── 1. Comments under the title's reviews ──
	commentQuery := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s IN (SELECT %s FROM %s WHERE %s = $1)`,
		schema.SocialComment.Table, schema.SocialComment.ReviewID,
		schema.SocialReview.ID, schema.SocialReview.Table, schema.SocialReview.TitleID,
	)
	if _, err := transaction.Exec(context, commentQuery, id); err != nil {
		return dberr.Wrap(err, "postgres_title_repo_delete_comments_failed")
	}

	// ── 2. Reviews ──
	reviewQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.SocialReview.Table, schema.SocialReview.TitleID)
	if _, err := transaction.Exec(context, reviewQuery, id); err != nil {
		return dberr.Wrap(err, "postgres_title_repo_delete_reviews_failed")
	}

	// ── 3. Genre links ──
	if err := repository.updateGenres(context, transaction, id, nil); err != nil {
		return err
	}

	// ── 4. Title ──
	titleQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreTitle.Table, schema.CoreTitle.ID)
	response, err := transaction.Exec(context, titleQuery, id)
	if err != nil {
		return dberr.Wrap(err, "postgres_title_repo_delete_failed")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("Title")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_title_repo_delete_commit_failed: %w", err)
	}

	return nil
}

// updateGenres replaces every genre link of titleID with genreIDs, batching the inserts.
func (repository *PostgresRepository) updateGenres(context context.Context, transaction pgx.Tx, titleID string, genreIDs []int) error {
	table := schema.CoreTitleGenre.Table

	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, schema.CoreTitleGenre.TitleID)
	if _, err := transaction.Exec(context, deleteQuery, titleID); err != nil {
		return dberr.Wrap(err, "postgres_title_repo_clear_genres_failed")
	}

	if len(genreIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2)", table, schema.CoreTitleGenre.TitleID, schema.CoreTitleGenre.GenreID)
	batch := &pgx.Batch{}
	for _, genreID := range genreIDs {
		batch.Queue(insertQuery, titleID, genreID)
	}

	if err := transaction.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, "postgres_title_repo_link_genres_failed")
	}

	return nil
}
