// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/slug"
)

// # Service Layer

// Service orchestrates business rules for one vocabulary.
type Service struct {
	kind   Kind
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a reference [Service] for kind.
func NewService(kind Kind, repo Repository, logger *slog.Logger) *Service {
	return &Service{kind: kind, repo: repo, logger: logger}
}

// Kind reports which vocabulary the service manages.
func (service *Service) Kind() Kind {
	return service.kind
}

/*
List returns a page of terms.

Parameters:
  - context: context.Context
  - filter: Filter
  - params: pagination.Params

Returns:
  - []*Term: Page of terms
  - int: Total matches
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*Term, int, error) {
	return service.repo.List(context, filter, params.Limit, params.Offset())
}

/*
Create validates and stores a new term.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Term: The stored term
  - error: ValidationError (shape or duplicate slug) or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Term, error) {
	if input.Slug == "" {
		input.Slug = slug.From(input.Name, SlugMaxLength)
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, NameMaxLength).
		Required(FieldSlug, input.Slug).
		MaxLen(FieldSlug, input.Slug, SlugMaxLength)
	if input.Slug != "" {
		validator.Slug(FieldSlug, input.Slug)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	term := &Term{Name: input.Name, Slug: input.Slug}
	if err := service.repo.Create(context, term); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, validate.FieldError(FieldSlug, fmt.Sprintf("A %s with this slug already exists", service.kind))
		}
		return nil, err
	}

	service.logger.InfoContext(context, "reference_term_created",
		slog.String("kind", string(service.kind)),
		slog.String("slug", term.Slug),
	)

	return term, nil
}

// Delete removes the term identified by slug.
func (service *Service) Delete(context context.Context, slug string) error {
	if err := service.repo.DeleteBySlug(context, slug); err != nil {
		return err
	}

	service.logger.InfoContext(context, "reference_term_deleted",
		slog.String("kind", string(service.kind)),
		slog.String("slug", slug),
	)

	return nil
}

/*
Resolve maps slugs to stored terms, preserving input order and dropping duplicates.

Parameters:
  - context: context.Context
  - field: string (Reported on the validation error)
  - slugs: []string

Returns:
  - []*Term: One term per distinct slug
  - error: ValidationError naming the first unknown slug, or storage failures
*/
func (service *Service) Resolve(context context.Context, field string, slugs []string) ([]*Term, error) {
	if len(slugs) == 0 {
		return []*Term{}, nil
	}

	found, err := service.repo.FindBySlugs(context, slugs)
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]*Term, len(found))
	for _, term := range found {
		bySlug[term.Slug] = term
	}

	terms := make([]*Term, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		if seen[s] {
			continue
		}
		seen[s] = true

		term, ok := bySlug[s]
		if !ok {
			return nil, validate.FieldError(field, fmt.Sprintf("Object with slug=%s does not exist", s))
		}
		terms = append(terms, term)
	}

	return terms, nil
}
