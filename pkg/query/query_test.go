// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yamdb/pkg/query"
)

func TestStringSlice(t *testing.T) {
	assert.Nil(t, query.StringSlice(""))
	assert.Equal(t, []string{"a", "b"}, query.StringSlice(" a, ,b ,"))
}

func TestIntPtr(t *testing.T) {
	assert.Nil(t, query.IntPtr(""))
	assert.Nil(t, query.IntPtr("nineteen"))
	if year := query.IntPtr("1994"); assert.NotNil(t, year) {
		assert.Equal(t, 1994, *year)
	}
}

func TestContains(t *testing.T) {
	assert.Equal(t, "%drama%", query.Contains("drama"))
	assert.Equal(t, `%100\%\_sci\\fi%`, query.Contains(`100%_sci\fi`))
}
