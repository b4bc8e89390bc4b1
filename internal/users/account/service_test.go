// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/auth"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

type memoryAccounts struct {
	users   map[string]*auth.User
	deleted []string
}

func newMemoryAccounts(users ...*auth.User) *memoryAccounts {
	store := &memoryAccounts{users: map[string]*auth.User{}}
	for _, user := range users {
		copied := *user
		store.users[user.ID] = &copied
	}
	return store
}

func (m *memoryAccounts) List(_ context.Context, filter Filter, limit, offset int) ([]*auth.User, int, error) {
	var matched []*auth.User
	for _, user := range m.users {
		if strings.Contains(strings.ToLower(user.Username), strings.ToLower(filter.Search)) {
			copied := *user
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Username < matched[j].Username })

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *memoryAccounts) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryAccounts) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryAccounts) clash(user *auth.User) bool {
	for id, existing := range m.users {
		if id != user.ID && (existing.Username == user.Username || existing.Email == user.Email) {
			return true
		}
	}
	return false
}

func (m *memoryAccounts) Create(_ context.Context, user *auth.User) error {
	if m.clash(user) {
		return apperr.Conflict("Resource already exists")
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryAccounts) Update(_ context.Context, user *auth.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	if m.clash(user) {
		return apperr.Conflict("Resource already exists")
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryAccounts) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

var (
	alice = &auth.User{ID: "u-alice", Username: "alice", Email: "alice@example.com", Role: sec.RoleUser}
	mod   = &auth.User{ID: "u-mod", Username: "mod", Email: "mod@example.com", Role: sec.RoleModerator}
	boss  = &auth.User{ID: "u-boss", Username: "boss", Email: "boss@example.com", Role: sec.RoleAdmin}
)

func newTestService(users ...*auth.User) (*Service, *memoryAccounts) {
	store := newMemoryAccounts(users...)
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func ptr[T any](v T) *T { return &v }

func TestUpdateProfile_PlainUserCannotChangeRole(t *testing.T) {
	service, store := newTestService(alice)

	user, err := service.UpdateProfile(context.Background(), alice.Principal(), UpdateInput{
		Bio:  ptr("hello"),
		Role: ptr(sec.RoleAdmin),
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.Equal(t, "hello", user.Bio)
	assert.Equal(t, sec.RoleUser, store.users[alice.ID].Role)
}

func TestUpdateProfile_StaffKeepRoleChanges(t *testing.T) {
	service, _ := newTestService(mod, boss)

	user, err := service.UpdateProfile(context.Background(), mod.Principal(), UpdateInput{Role: ptr(sec.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, user.Role)

	user, err = service.UpdateProfile(context.Background(), boss.Principal(), UpdateInput{FirstName: ptr("Big")})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, user.Role)
	assert.Equal(t, "Big", user.FirstName)
}

func TestUpdateProfile_RoleDecisionUsesStoredAccount(t *testing.T) {
	t.Run("demoted since the token was checked", func(t *testing.T) {
		service, store := newTestService(alice)
		stale := &sec.Principal{UserID: alice.ID, Username: alice.Username, Role: sec.RoleModerator}

		user, err := service.UpdateProfile(context.Background(), stale, UpdateInput{Role: ptr(sec.RoleAdmin)})
		require.NoError(t, err)
		assert.Equal(t, sec.RoleUser, user.Role)
		assert.Equal(t, sec.RoleUser, store.users[alice.ID].Role)
	})

	t.Run("promoted since the token was checked", func(t *testing.T) {
		service, store := newTestService(mod)
		stale := &sec.Principal{UserID: mod.ID, Username: mod.Username, Role: sec.RoleUser}

		user, err := service.UpdateProfile(context.Background(), stale, UpdateInput{Bio: ptr("x")})
		require.NoError(t, err)
		assert.Equal(t, sec.RoleModerator, user.Role)
		assert.Equal(t, sec.RoleModerator, store.users[mod.ID].Role)
	})
}

func TestUpdateProfile_Validation(t *testing.T) {
	service, _ := newTestService(alice, mod)

	_, err := service.UpdateProfile(context.Background(), alice.Principal(), UpdateInput{Username: ptr("me")})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = service.UpdateProfile(context.Background(), alice.Principal(), UpdateInput{Email: ptr("mod@example.com")})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = service.UpdateProfile(context.Background(), nil, UpdateInput{})
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))
}

func TestCreateUser(t *testing.T) {
	service, store := newTestService(alice)

	user, err := service.CreateUser(context.Background(), CreateInput{Username: "carol", Email: "carol@example.com"})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.Contains(t, store.users, user.ID)

	user, err = service.CreateUser(context.Background(), CreateInput{Username: "dave", Email: "dave@example.com", Role: sec.RoleModerator})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, user.Role)

	_, err = service.CreateUser(context.Background(), CreateInput{Username: "erin", Email: "erin@example.com", Role: "overlord"})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = service.CreateUser(context.Background(), CreateInput{Username: "alice", Email: "new@example.com"})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

func TestUpdateUser_AdminSetsRole(t *testing.T) {
	service, _ := newTestService(alice)

	user, err := service.UpdateUser(context.Background(), "alice", UpdateInput{Role: ptr(sec.RoleModerator)})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, user.Role)

	_, err = service.UpdateUser(context.Background(), "nobody", UpdateInput{})
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteUser(t *testing.T) {
	service, store := newTestService(alice, mod)

	require.NoError(t, service.DeleteUser(context.Background(), "alice"))
	assert.Equal(t, []string{alice.ID}, store.deleted)
	assert.True(t, apperr.IsNotFound(service.DeleteUser(context.Background(), "alice")))
}

func TestListUsers_SearchAndPaging(t *testing.T) {
	service, _ := newTestService(alice, mod, boss)

	users, total, err := service.ListUsers(context.Background(), Filter{Search: "O"}, pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, users, 1)
	assert.Equal(t, "boss", users[0].Username)
}

func TestPromote(t *testing.T) {
	service, store := newTestService(alice)

	user, err := service.Promote(context.Background(), "alice", sec.RoleModerator, true)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, user.Role)
	assert.True(t, store.users["u-alice"].IsSuperuser)

	_, err = service.Promote(context.Background(), "alice", sec.Role("emperor"), false)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = service.Promote(context.Background(), "ghost", sec.RoleAdmin, false)
	assert.True(t, apperr.IsNotFound(err))
}
