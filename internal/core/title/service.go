// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// TermResolver maps slugs to stored taxonomy terms. [reference.Service] satisfies it.
type TermResolver interface {
	Resolve(context context.Context, field string, slugs []string) ([]*reference.Term, error)
}

// # Service Layer

// Service orchestrates business rules for titles.
type Service struct {
	repo       Repository
	categories TermResolver
	genres     TermResolver
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a title [Service].
func NewService(repo Repository, categories, genres TermResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		genres:     genres,
		logger:     logger,
		now:        time.Now,
	}
}

/*
List returns a filtered page of titles.

Parameters:
  - context: context.Context
  - filter: Filter
  - params: pagination.Params

Returns:
  - []*Title: Page of titles with rating, category and genres
  - int: Total matches
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*Title, int, error) {
	titles, total, err := service.repo.List(context, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("title_service_list_failed: %w", err)
	}
	return titles, total, nil
}

// Get returns a single title. Identifiers that are not UUIDs are reported as not found.
func (service *Service) Get(context context.Context, id string) (*Title, error) {
	if !uuid.IsValid(id) {
		return nil, apperr.NotFound("Title")
	}
	return service.repo.FindByID(context, id)
}

/*
Create validates and stores a new title.

Description: Name and year are required. Category and genre slugs are
resolved to stored terms before the insert; an unknown slug fails the whole
request.

Parameters:
  - context: context.Context
  - input: WriteInput

Returns:
  - *Title: The stored title, read back with its nested terms
  - error: ValidationError or storage failures
*/
func (service *Service) Create(context context.Context, input WriteInput) (*Title, error) {
	validator := &validate.Validator{}
	validator.Present(FieldName, input.Name != nil).
		Present(FieldYear, input.Year != nil)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	title := &Title{ID: uuid.New(), GenreIDs: []int{}}
	if err := service.apply(context, title, input); err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, title); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "title_created",
		slog.String("title_id", title.ID),
		slog.Int("year", title.Year),
	)

	return service.repo.FindByID(context, title.ID)
}

/*
Update applies a partial update to a title.

Parameters:
  - context: context.Context
  - id: string
  - input: WriteInput (Nil fields are kept)

Returns:
  - *Title: The updated title
  - error: NotFound, ValidationError, or storage failures
*/
func (service *Service) Update(context context.Context, id string, input WriteInput) (*Title, error) {
	title, err := service.Get(context, id)
	if err != nil {
		return nil, err
	}

	// Only send genre links to storage when the caller replaced them.
	title.GenreIDs = nil
	if err := service.apply(context, title, input); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, title); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "title_updated", slog.String("title_id", title.ID))

	return service.repo.FindByID(context, title.ID)
}

// Delete removes a title with its reviews and their comments.
func (service *Service) Delete(context context.Context, id string) error {
	if !uuid.IsValid(id) {
		return apperr.NotFound("Title")
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.WarnContext(context, "title_deleted", slog.String("title_id", id))
	return nil
}

// # Helpers

// apply validates input and copies it onto title, resolving taxonomy slugs.
func (service *Service) apply(context context.Context, title *Title, input WriteInput) error {
	if input.Name != nil {
		title.Name = *input.Name
	}
	if input.Year != nil {
		title.Year = *input.Year
	}
	if input.Description != nil {
		title.Description = input.Description
	}

	currentYear := service.now().Year()
	validator := &validate.Validator{}
	validator.Required(FieldName, strings.TrimSpace(title.Name)).
		MaxLen(FieldName, title.Name, NameMaxLength).
		Custom(FieldYear, title.Year > currentYear, fmt.Sprintf("Year cannot be later than %d", currentYear)).
		Custom(FieldYear, title.Year < YearMin, fmt.Sprintf("Year cannot be earlier than %d", YearMin))
	if err := validator.Err(); err != nil {
		return err
	}

	// Category: an empty slug detaches it.
	if input.Category != nil {
		title.CategoryID = nil
		title.Category = nil
		if *input.Category != "" {
			terms, err := service.categories.Resolve(context, FieldCategory, []string{*input.Category})
			if err != nil {
				return err
			}
			title.CategoryID = &terms[0].ID
			title.Category = terms[0]
		}
	}

	// Genres: the list replaces every existing link.
	if input.Genre != nil {
		terms, err := service.genres.Resolve(context, FieldGenre, *input.Genre)
		if err != nil {
			return err
		}
		title.Genre = terms
		title.GenreIDs = make([]int, 0, len(terms))
		for _, term := range terms {
			title.GenreIDs = append(title.GenreIDs, term.ID)
		}
	}

	return nil
}
