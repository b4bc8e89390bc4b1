// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reference manages the taxonomy that titles are filed under.

Two flat vocabularies live here: categories (a title has at most one) and
genres (a title has any number). Both share the [Term] shape and are
addressed by slug.

# Access Control

  - Public: Listing and searching.
  - Admin: Creation and deletion.
*/
package reference

import "time"

// # Term Domain

// Kind names one of the two vocabularies.
type Kind string

const (
	KindCategory Kind = "category"
	KindGenre    Kind = "genre"
)

// Term is a category or genre.
type Term struct {
	ID        int       `json:"-"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"-"`
}

// Filter narrows a term listing.
type Filter struct {
	// Search matches a substring of the name.
	Search string
}

// CreateInput is the payload for a new term. An empty slug is derived from the name.
type CreateInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// # Field Identifiers

// Global field names for validation in the reference domain.
const (
	FieldName = "name"
	FieldSlug = "slug"
)

// # Constraints

const (
	// NameMaxLength mirrors the name column.
	NameMaxLength = 256

	// SlugMaxLength mirrors the slug column.
	SlugMaxLength = 50
)
