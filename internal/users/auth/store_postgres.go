// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
)

// # User Repository

// PostgresUserRepository stores accounts in users.account.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository binds the repository to pool.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// UserColumns is the projection scanned by [ScanUser].
var UserColumns = strings.Join(schema.UserAccount.Columns(), ", ")

// ScanUser hydrates a [User] from a row selected with [UserColumns].
func ScanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Bio,
		&user.Role,
		&user.IsSuperuser,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
Create inserts user. The database assigns both timestamps, which are
written back onto user.

Parameters:
  - context: context.Context
  - user: *User (ID already generated)

Returns:
  - error: apperr.Conflict on a duplicate username or email
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	columns := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s`,
		columns.Table,
		columns.ID, columns.Username, columns.Email, columns.FirstName,
		columns.LastName, columns.Bio, columns.Role, columns.IsSuperuser,
		columns.CreatedAt, columns.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		user.ID, user.Username, user.Email, user.FirstName,
		user.LastName, user.Bio, user.Role, user.IsSuperuser,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	return dberr.Wrap(err, "user_create")
}

// FindByID loads an account by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, schema.UserAccount.ID, id, "user_find_by_id")
}

// FindByEmail loads an account by its unique email.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, schema.UserAccount.Email, email, "user_find_by_email")
}

// FindByUsername loads an account by its unique username.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, schema.UserAccount.Username, username, "user_find_by_username")
}

func (repository *PostgresUserRepository) findOne(context context.Context, column, value, action string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, UserColumns, schema.UserAccount.Table, column)

	user, err := ScanUser(repository.pool.QueryRow(context, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("User")
	}
	return user, dberr.Wrap(err, action)
}

/*
LoadPrincipal reads the live role and superuser flag of an account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *sec.Principal: Identity evaluated by permission rules
  - error: apperr.NotFound when the account no longer exists
*/
func (repository *PostgresUserRepository) LoadPrincipal(context context.Context, userID string) (*sec.Principal, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Role, schema.UserAccount.IsSuperuser,
		schema.UserAccount.Table, schema.UserAccount.ID,
	)

	principal := &sec.Principal{}
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&principal.UserID,
		&principal.Username,
		&principal.Role,
		&principal.IsSuperuser,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "user_load_principal")
	}
	return principal, nil
}

// DuplicateIdentity turns a unique violation on username or email into the
// field error clients expect. Other errors are returned unchanged.
func DuplicateIdentity(err error) error {
	switch {
	case dberr.IsUniqueViolation(err, schema.UserAccount.UniqueUsername):
		return validate.FieldError(FieldUsername, "A user with that username already exists")
	case dberr.IsUniqueViolation(err, schema.UserAccount.UniqueEmail):
		return validate.FieldError(FieldEmail, "A user with that email already exists")
	case apperr.HasCode(err, apperr.CodeConflict):
		return apperr.ValidationError("A user with that username or email already exists")
	}
	return err
}
