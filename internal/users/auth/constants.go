// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Account Constraints

const (
	// UsernameMinLength is the shortest accepted username.
	UsernameMinLength = 2

	// UsernameMaxLength mirrors the users.account.username column.
	UsernameMaxLength = 20

	// EmailMaxLength mirrors the users.account.email column.
	EmailMaxLength = 60

	// NameMaxLength bounds first_name and last_name.
	NameMaxLength = 150

	// ReservedUsername collides with the /users/me route and can never be registered.
	ReservedUsername = "me"
)

// # Confirmation Codes

const (
	// ConfirmationCodeLength is the number of characters in an emailed code.
	ConfirmationCodeLength = 10

	// ConfirmationSubject is the subject line of the confirmation email.
	ConfirmationSubject = "Your confirmation code"

	// confirmationBodyFormat renders the confirmation email body.
	confirmationBodyFormat = "Your confirmation code: %s"
)
