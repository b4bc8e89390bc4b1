// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/access"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

type ownedBy string

func (o ownedBy) OwnerID() string { return string(o) }

var (
	anonymous = (*sec.Principal)(nil)
	author    = &sec.Principal{UserID: "author", Role: sec.RoleUser}
	stranger  = &sec.Principal{UserID: "stranger", Role: sec.RoleUser}
	moderator = &sec.Principal{UserID: "mod", Role: sec.RoleModerator}
	admin     = &sec.Principal{UserID: "admin", Role: sec.RoleAdmin}
	superuser = &sec.Principal{UserID: "root", Role: sec.RoleUser, IsSuperuser: true}
)

func TestReadOnly(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, access.ReadOnly.Allow(access.Request{Method: method}), method)
	}
	for _, method := range []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete} {
		assert.False(t, access.ReadOnly.Allow(access.Request{Method: method, Principal: admin}), method)
	}
}

func TestAdminAndModerator(t *testing.T) {
	post := func(p *sec.Principal) access.Request { return access.Request{Method: http.MethodPost, Principal: p} }

	assert.False(t, access.Admin.Allow(post(anonymous)))
	assert.False(t, access.Admin.Allow(post(moderator)))
	assert.True(t, access.Admin.Allow(post(admin)))
	assert.True(t, access.Admin.Allow(post(superuser)))

	assert.False(t, access.Moderator.Allow(post(admin)))
	assert.True(t, access.Moderator.Allow(post(moderator)))
	assert.True(t, access.Moderator.Allow(post(superuser)))
}

/*
TestAuthorModeratorOrReadOnly covers the full principal x method x ownership grid
for review and comment mutation.
*/
func TestAuthorModeratorOrReadOnly(t *testing.T) {
	rule := access.AuthorModeratorOrReadOnly
	object := ownedBy("author")

	cases := []struct {
		name      string
		principal *sec.Principal
		method    string
		request   bool
		object    bool
	}{
		{"anonymous read", anonymous, http.MethodGet, true, true},
		{"anonymous write", anonymous, http.MethodPost, false, false},
		{"author edits own", author, http.MethodPatch, true, true},
		{"author deletes own", author, http.MethodDelete, true, true},
		{"stranger edits", stranger, http.MethodPatch, true, false},
		{"stranger reads", stranger, http.MethodGet, true, true},
		{"moderator edits", moderator, http.MethodPatch, true, true},
		{"superuser edits", superuser, http.MethodDelete, true, true},
		{"admin creates", admin, http.MethodPost, true, false},
		{"admin edits others", admin, http.MethodPatch, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			request := access.Request{Method: tc.method, Principal: tc.principal}
			assert.Equal(t, tc.request, rule.Allow(request))
			assert.Equal(t, tc.object, rule.AllowObject(request, object))
		})
	}
}

func TestAny_ShortCircuitsAndGatesObjectChecks(t *testing.T) {
	catalog := access.Any(access.Admin, access.ReadOnly)

	assert.True(t, catalog.Allow(access.Request{Method: http.MethodGet}))
	assert.True(t, catalog.Allow(access.Request{Method: http.MethodDelete, Principal: admin}))
	assert.False(t, catalog.Allow(access.Request{Method: http.MethodDelete, Principal: moderator}))

	// ReadOnly's object gate passes for reads only; Admin's passes whenever its request gate does.
	assert.True(t, catalog.AllowObject(access.Request{Method: http.MethodGet}, ownedBy("x")))
	assert.False(t, catalog.AllowObject(access.Request{Method: http.MethodPatch, Principal: stranger}, ownedBy("x")))
	assert.True(t, catalog.AllowObject(access.Request{Method: http.MethodPatch, Principal: admin}, ownedBy("x")))

	assert.False(t, access.Any().Allow(access.Request{Method: http.MethodGet}))
}

func TestCheck_StatusDependsOnAuthentication(t *testing.T) {
	err := access.Check(access.Admin, access.Request{Method: http.MethodPost})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)

	err = access.Check(access.Admin, access.Request{Method: http.MethodPost, Principal: stranger})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.As(err).HTTPStatus)

	assert.NoError(t, access.Check(access.Admin, access.Request{Method: http.MethodPost, Principal: admin}))
}

func TestCheckObject(t *testing.T) {
	err := access.CheckObject(access.AuthorModeratorOrReadOnly,
		access.Request{Method: http.MethodPatch, Principal: stranger}, ownedBy("author"))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.As(err).HTTPStatus)
	assert.Equal(t, apperr.PermissionDenied, apperr.As(err).Message)
}

type stubLoader struct {
	principals map[string]*sec.Principal
	err        error
}

func (s stubLoader) LoadPrincipal(_ context.Context, userID string) (*sec.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.principals[userID]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("User")
}

/*
TestGuard_UsesFreshRole verifies that a demotion between authentication and
the object check is honoured.
*/
func TestGuard_UsesFreshRole(t *testing.T) {
	demoted := &sec.Principal{UserID: "mod", Role: sec.RoleUser}
	guard := access.NewGuard(stubLoader{principals: map[string]*sec.Principal{"mod": demoted}})

	err := guard.Object(context.Background(), access.AuthorModeratorOrReadOnly, http.MethodDelete, moderator, ownedBy("author"))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.As(err).HTTPStatus)
}

func TestGuard_PromotionTakesEffect(t *testing.T) {
	promoted := &sec.Principal{UserID: "stranger", Role: sec.RoleModerator}
	guard := access.NewGuard(stubLoader{principals: map[string]*sec.Principal{"stranger": promoted}})

	err := guard.Object(context.Background(), access.AuthorModeratorOrReadOnly, http.MethodPatch, stranger, ownedBy("author"))
	assert.NoError(t, err)
}

func TestGuard_DeletedAccountIsAnonymous(t *testing.T) {
	guard := access.NewGuard(stubLoader{principals: map[string]*sec.Principal{}})

	err := guard.Object(context.Background(), access.AuthorModeratorOrReadOnly, http.MethodPatch, author, ownedBy("author"))
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
}

func TestGuard_PropagatesLoaderFailure(t *testing.T) {
	boom := errors.New("db down")
	guard := access.NewGuard(stubLoader{err: boom})

	err := guard.Object(context.Background(), access.AuthorModeratorOrReadOnly, http.MethodPatch, author, ownedBy("author"))
	assert.ErrorIs(t, err, boom)
}

func TestGuard_AnonymousSkipsLoader(t *testing.T) {
	guard := access.NewGuard(stubLoader{err: errors.New("must not be called")})

	assert.NoError(t, guard.Object(context.Background(), access.AuthorModeratorOrReadOnly, http.MethodGet, nil, ownedBy("author")))
}
