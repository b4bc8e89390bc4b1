// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package dberr translates pgx errors into [apperr.AppError] values.

Repositories call [Wrap] on every failed query. Missing rows become 404,
constraint violations become 400 or 409, and anything else becomes an
opaque 500 whose cause is logged by the respond package.
*/
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
)

// ErrNotFound is returned for pgx.ErrNoRows. Repositories that know the
// entity name replace it with apperr.NotFound(entity).
var ErrNotFound = apperr.NotFound("Resource")

// classified maps SQLSTATE codes to the client-facing error they produce.
var classified = map[string]func() *apperr.AppError{
	pgerrcode.UniqueViolation: func() *apperr.AppError {
		return apperr.Conflict("Resource already exists")
	},
	pgerrcode.ForeignKeyViolation: func() *apperr.AppError {
		return apperr.ValidationError("Referenced resource does not exist")
	},
	pgerrcode.CheckViolation: func() *apperr.AppError {
		return apperr.ValidationError("Value violates a storage constraint")
	},
	pgerrcode.NotNullViolation: func() *apperr.AppError {
		return apperr.ValidationError("A required value is missing")
	},
	pgerrcode.StringDataRightTruncationDataException: func() *apperr.AppError {
		return apperr.ValidationError("Value is too long")
	},
}

/*
Wrap classifies a database error.

Parameters:
  - err: error (nil passes through)
  - action: string (short operation name kept in the 500 cause)

Returns:
  - error: *apperr.AppError with the original error as Cause
*/
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	if pgErr, ok := asPgError(err); ok {
		if build, known := classified[pgErr.Code]; known {
			appErr := build()
			appErr.Cause = err
			return appErr
		}
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// IsUniqueViolation reports a unique violation. A non-empty constraint
// also has to match the violated constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	pgErr, ok := asPgError(err)
	if !ok || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
