// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/yamdb":   "pgx5://u:p@db:5432/yamdb",
		"postgresql://u:p@db:5432/yamdb": "pgx5://u:p@db:5432/yamdb",
		"pgx5://u:p@db:5432/yamdb":       "pgx5://u:p@db:5432/yamdb",
		"host=db dbname=yamdb":           "host=db dbname=yamdb",
	}
	for in, want := range tests {
		assert.Equal(t, want, toPgx5DSN(in), in)
	}
}
