// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import "context"

// # Reference Data Access

// Repository defines the data access contract for one vocabulary.
type Repository interface {

	/*
		List retrieves a page of terms ordered by name.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Term: Page of terms
		  - int: Total matches
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Term, int, error)

	/*
		FindBySlugs fetches every term whose slug is listed. Unknown slugs are
		simply absent from the result.

		Parameters:
		  - context: context.Context
		  - slugs: []string

		Returns:
		  - []*Term: Matching terms
		  - error: Database retrieval failures
	*/
	FindBySlugs(context context.Context, slugs []string) ([]*Term, error)

	/*
		Create persists a new term and sets its ID.

		Parameters:
		  - context: context.Context
		  - term: *Term

		Returns:
		  - error: apperr.Conflict on a duplicate slug, or persistence failures
	*/
	Create(context context.Context, term *Term) error

	/*
		DeleteBySlug removes a term. Titles referencing it lose the reference.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - error: apperr.NotFound or execution failures
	*/
	DeleteBySlug(context context.Context, slug string) error
}
