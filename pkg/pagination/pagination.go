// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination reads page selection from list requests and builds the
// meta block that accompanies every paginated response.
//
// Pages are 1-indexed. The page size is taken from "limit", or from
// "page_size" when "limit" is absent.
package pagination

import (
	"net/http"

	"github.com/taibuivan/yamdb/pkg/query"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultPage  = 1
)

// Params is the page selection of one list request.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET for p.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewMeta builds the meta block for a page out of total matching rows.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1 && totalPages > 0,
	}
}

// FromRequest reads page and limit (or page_size) from the query string.
// Missing, malformed or out-of-range values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	values := r.URL.Query()

	page := DefaultPage
	if parsed := query.IntPtr(values.Get("page")); parsed != nil && *parsed >= 1 {
		page = *parsed
	}

	rawLimit := values.Get("limit")
	if rawLimit == "" {
		rawLimit = values.Get("page_size")
	}

	limit := DefaultLimit
	if parsed := query.IntPtr(rawLimit); parsed != nil && *parsed >= 1 && *parsed <= MaxLimit {
		limit = *parsed
	}

	return Params{Page: page, Limit: limit}
}
