// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package title manages the reviewable works of the catalogue.

A title belongs to at most one category and any number of genres. Its rating
is never stored: every read derives it from the scores of its reviews.

# Access Control

  - Public: Listing, filtering and detail reads.
  - Admin: Creation, partial updates and deletion.
*/
package title

import (
	"time"

	"github.com/taibuivan/yamdb/internal/core/reference"
)

// # Title Domain

// Title is a reviewable work.
type Title struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description *string           `json:"description"`
	Genre       []*reference.Term `json:"genre"`
	Category    *reference.Term   `json:"category"`

	// Storage links, resolved from slugs on write.
	CategoryID *int  `json:"-"`
	GenreIDs   []int `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Filter narrows a title listing. String filters match substrings.
type Filter struct {
	Genre    string
	Category string
	Name     string
	Year     *int
}

/*
WriteInput is the payload for creating or patching a title.

Nil fields are left untouched on update. Category and genres are referenced
by slug; an empty category slug detaches the category and an empty genre
list clears every genre link.
*/
type WriteInput struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldYear        = "year"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldGenre       = "genre"
)

// # Constraints

const (
	NameMaxLength = 256
	YearMin       = 0
)
