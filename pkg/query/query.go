// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses filter values coming from URLs and environment variables.
package query

import (
	"strconv"
	"strings"
)

// IntPtr parses an optional integer filter. Blank or malformed input
// yields nil, which callers treat as "no filter".
func IntPtr(raw string) *int {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &number
}

// StringSlice splits a comma-separated list, dropping empty items.
func StringSlice(raw string) []string {
	var items []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains turns val into a LIKE pattern matching any string that contains it
// literally. Wildcards inside val are escaped with the default backslash escape.
func Contains(raw string) string {
	return "%" + likeEscaper.Replace(raw) + "%"
}
