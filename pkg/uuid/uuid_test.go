// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_IsVersion7AndOrdered(t *testing.T) {
	first, second := New(), New()

	assert.True(t, IsValid(first))
	assert.Equal(t, byte('7'), first[14])
	assert.LessOrEqual(t, first[:13], second[:13])
}

func TestIsValid(t *testing.T) {
	cases := map[string]bool{
		"0190f3c4-7b1a-7c2e-9f00-1a2b3c4d5e6f":          true,
		"0190F3C4-7B1A-7C2E-9F00-1A2B3C4D5E6F":          true,
		"0190f3c47b1a7c2e9f001a2b3c4d5e6f":              false,
		"urn:uuid:0190f3c4-7b1a-7c2e-9f00-1a2b3c4d5e6f": false,
		"{0190f3c4-7b1a-7c2e-9f00-1a2b3c4d5e6f}":        false,
		"1":                                             false,
		"":                                              false,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsValid(input), input)
	}
}
