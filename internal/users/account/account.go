// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles user administration and self-service profile edits.

Administrators list, create, edit and delete accounts by username. Every
authenticated user can read and patch their own profile at /users/me.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Security: Role changes through /users/me are honoured only for staff.
*/
package account

import (
	"context"

	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

// # Query & Input Types

// Filter narrows the administrative user listing.
type Filter struct {
	// Search matches a substring of the username.
	Search string
}

// CreateInput carries the fields an administrator sets on a new account.
type CreateInput struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Bio       string   `json:"bio"`
	Role      sec.Role `json:"role"`
}

// UpdateInput is a partial profile update. Nil fields are left untouched.
type UpdateInput struct {
	Username  *string   `json:"username"`
	Email     *string   `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Bio       *string   `json:"bio"`
	Role      *sec.Role `json:"role"`
}

// apply copies the provided fields onto user.
func (input UpdateInput) apply(user *auth.User) {
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
}

// # Repository Contracts

// Repository defines the persistence contract for account administration.
type Repository interface {
	/*
		List returns a page of accounts ordered by username.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*auth.User: Page of accounts
		  - int: Total number of matching accounts
		  - error: Storage failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*auth.User, int, error)

	/*
		FindByID retrieves an account by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		FindByUsername retrieves an account by its username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByUsername(context context.Context, username string) (*auth.User, error)

	// Create inserts a new account. Duplicate usernames or emails yield apperr.Conflict.
	Create(context context.Context, user *auth.User) error

	/*
		Update persists every mutable column of an existing account.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: apperr.NotFound, apperr.Conflict, or storage failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		Delete removes an account together with its reviews and comments.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound or execution failures
	*/
	Delete(context context.Context, id string) error
}
