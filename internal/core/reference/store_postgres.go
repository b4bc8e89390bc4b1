// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
)

// termTable is the column layout shared by core.category and core.genre.
type termTable struct {
	table     string
	id        string
	name      string
	slug      string
	createdAt string
}

// # Repository Implementation

// PostgresRepository implements [Repository] for one vocabulary table.
type PostgresRepository struct {
	pool     *pgxpool.Pool
	columns  termTable
	resource string
}

// NewCategoryRepository creates the repository backing core.category.
func NewCategoryRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
		columns: termTable{
			table:     schema.CoreCategory.Table,
			id:        schema.CoreCategory.ID,
			name:      schema.CoreCategory.Name,
			slug:      schema.CoreCategory.Slug,
			createdAt: schema.CoreCategory.CreatedAt,
		},
		resource: "Category",
	}
}

// NewGenreRepository creates the repository backing core.genre.
func NewGenreRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
		columns: termTable{
			table:     schema.CoreGenre.Table,
			id:        schema.CoreGenre.ID,
			name:      schema.CoreGenre.Name,
			slug:      schema.CoreGenre.Slug,
			createdAt: schema.CoreGenre.CreatedAt,
		},
		resource: "Genre",
	}
}

/*
List retrieves a page of terms with a window-function total.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Term: Page of terms
  - int: Total matches
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Term, int, error) {
	c := repository.columns

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, %s, %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE TRUE`, c.id, c.name, c.slug, c.createdAt, c.table))

	// Search Query Filtering
	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE '%%' || $%d || '%%'", c.name, argID))
		args = append(args, filter.Search)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s ASC, %s ASC LIMIT $%d OFFSET $%d", c.name, c.id, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_reference_repo_list_failed")
	}
	defer rows.Close()

	terms := []*Term{}
	total := 0
	for rows.Next() {
		term := &Term{}
		if err := rows.Scan(&term.ID, &term.Name, &term.Slug, &term.CreatedAt, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_reference_repo_list_scan_failed")
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_reference_repo_list_rows_failed")
	}

	return terms, total, nil
}

// FindBySlugs fetches the terms whose slug appears in slugs.
func (repository *PostgresRepository) FindBySlugs(context context.Context, slugs []string) ([]*Term, error) {
	c := repository.columns
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = ANY($1)`,
		c.id, c.name, c.slug, c.createdAt, c.table, c.slug)

	rows, err := repository.pool.Query(context, query, slugs)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_reference_repo_find_by_slugs_failed")
	}
	defer rows.Close()

	var terms []*Term
	for rows.Next() {
		term := &Term{}
		if err := rows.Scan(&term.ID, &term.Name, &term.Slug, &term.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "postgres_reference_repo_find_by_slugs_scan_failed")
		}
		terms = append(terms, term)
	}

	return terms, dberr.Wrap(rows.Err(), "postgres_reference_repo_find_by_slugs_rows_failed")
}

// Create inserts a term and reads back its serial ID.
func (repository *PostgresRepository) Create(context context.Context, term *Term) error {
	c := repository.columns
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s, %s`,
		c.table, c.name, c.slug, c.id, c.createdAt)

	err := repository.pool.QueryRow(context, query, term.Name, term.Slug).Scan(&term.ID, &term.CreatedAt)
	return dberr.Wrap(err, "postgres_reference_repo_create_failed")
}

/*
DeleteBySlug removes the term identified by slug.

Description: core.title.categoryid is ON DELETE SET NULL and core.titlegenre
rows cascade, so titles survive the removal of their taxonomy.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresRepository) DeleteBySlug(context context.Context, slug string) error {
	c := repository.columns
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, c.table, c.slug)

	response, err := repository.pool.Exec(context, query, slug)
	if err != nil {
		return dberr.Wrap(err, "postgres_reference_repo_delete_failed")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound(repository.resource)
	}

	return nil
}
