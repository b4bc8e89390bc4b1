// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives category and genre slugs from their display names
// when an administrator leaves the slug out.
//
// "Science Fiction" becomes "science-fiction" and "Drama Séries" becomes
// "drama-series". The result only ever contains a-z, 0-9 and single hyphens.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented letters and drops the combining marks.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

/*
From converts name to a slug of at most maxLen bytes. A maxLen of zero or
less means no limit.

Description: Letters outside ASCII that survive accent stripping are
dropped, runs of anything else collapse to one hyphen, and the cut for
maxLen never leaves a trailing hyphen.
*/
func From(name string, maxLen int) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}

	var builder strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			pendingHyphen = false
			builder.WriteRune(r)
		case r >= unicode.MaxASCII && unicode.IsLetter(r):
			// Non-Latin letters have no ASCII form and are skipped.
		default:
			pendingHyphen = true
		}
	}

	result := builder.String()
	if maxLen > 0 && len(result) > maxLen {
		result = strings.TrimRight(result[:maxLen], "-")
	}

	return result
}
