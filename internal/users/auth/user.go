// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth owns the account entity and the passwordless sign-in flow.

Signing up stores (or reuses) an account and emails a one-time confirmation
code. Exchanging username and code yields an RS256 access token. Other
packages import [User] whenever they need to know who wrote or changed
something.
*/
package auth

import (
	"time"

	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
type User struct {
	ID          string    `json:"-"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Bio         string    `json:"bio"`
	Role        sec.Role  `json:"role"`
	IsSuperuser bool      `json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Principal projects the account onto the identity used by permission rules.
func (user *User) Principal() *sec.Principal {
	return &sec.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
	}
}

// # Field Identifiers

// JSON field names, also used as validation error keys.
const (
	FieldUsername         = "username"
	FieldEmail            = "email"
	FieldFirstName        = "first_name"
	FieldLastName         = "last_name"
	FieldBio              = "bio"
	FieldRole             = "role"
	FieldConfirmationCode = "confirmation_code"
	FieldAccessToken      = "access_token"
)
