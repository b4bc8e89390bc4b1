// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Unique violations (username/email) or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		LoadPrincipal resolves the current role and superuser flag of an account.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *sec.Principal: Identity used by permission rules
		  - error: apperr.NotFound or database retrieval failures
	*/
	LoadPrincipal(context context.Context, userID string) (*sec.Principal, error)
}

// # Volatile Data Access

// ConfirmationCodeRepository stores the hashed confirmation code of each account.
//
// At most one live code exists per account. Its presence is what "the
// account has a pending code" means.
type ConfirmationCodeRepository interface {

	/*
		SetIfAbsent stores codeHash for userID unless a live code already exists.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - codeHash: string
		  - ttl: time.Duration

		Returns:
		  - bool: true if stored, false if a live code was already present
		  - error: Storage failures
	*/
	SetIfAbsent(context context.Context, userID, codeHash string, ttl time.Duration) (bool, error)

	/*
		Get retrieves the hashed code for userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - string: bcrypt hash
		  - error: apperr.NotFound when absent or expired
	*/
	Get(context context.Context, userID string) (string, error)

	/*
		Delete removes the code so it cannot be exchanged again.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - bool: true if this call removed a live code
		  - error: Storage failures
	*/
	Delete(context context.Context, userID string) (bool, error)
}

// AttemptRepository counts failed code exchanges per submitted username.
type AttemptRepository interface {

	/*
		Count returns the failures recorded inside the current window.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - int: Failure count
		  - error: Storage failures
	*/
	Count(context context.Context, username string) (int, error)

	/*
		Increment records a failure, opening a window of length window if none is open.

		Parameters:
		  - context: context.Context
		  - username: string
		  - window: time.Duration

		Returns:
		  - error: Storage failures
	*/
	Increment(context context.Context, username string, window time.Duration) error

	/*
		Reset clears the failure count after a successful exchange.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - error: Storage failures
	*/
	Reset(context context.Context, username string) error
}
