// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid issues and checks the identifiers of accounts, titles, reviews
and comments.

New values are UUIDv7, so primary keys sort by creation time.
*/
package uuid

import "github.com/google/uuid"

// canonicalLength is the length of the 8-4-4-4-12 hex form.
const canonicalLength = 36

// New returns a fresh UUIDv7. It panics only if the system entropy source
// fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsValid accepts only the canonical hyphenated form. Services call it on
// path parameters so a malformed ID is a 404 instead of a database error.
func IsValid(s string) bool {
	if len(s) != canonicalLength {
		return false
	}
	return uuid.Validate(s) == nil
}
