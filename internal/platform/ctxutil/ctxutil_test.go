// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))
	assert.Equal(t, "req-1", ctxutil.GetRequestID(ctxutil.WithRequestID(ctx, "req-1")))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, logger, ctxutil.GetLogger(ctxutil.WithLogger(ctx, logger)))

	// A nil logger stored by mistake still yields a usable one.
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctxutil.WithLogger(ctx, nil)))
}

func TestPrincipal(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetPrincipal(ctx))

	moderator := &sec.Principal{UserID: "u-1", Username: "mod", Role: sec.RoleModerator}
	assert.Same(t, moderator, ctxutil.GetPrincipal(ctxutil.WithPrincipal(ctx, moderator)))

	// Keys are distinct even though all three values share one context.
	ctx = ctxutil.WithRequestID(ctxutil.WithPrincipal(ctx, moderator), "req-2")
	assert.Same(t, moderator, ctxutil.GetPrincipal(ctx))
	assert.Equal(t, "req-2", ctxutil.GetRequestID(ctx))
}
