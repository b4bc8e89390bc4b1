// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/sec"
)

/*
TestRolePredicates verifies that superuser satisfies every role check while
admin and moderator stay distinct.
*/
func TestRolePredicates(t *testing.T) {
	cases := []struct {
		name          string
		principal     *sec.Principal
		authenticated bool
		admin         bool
		moderator     bool
	}{
		{"anonymous", nil, false, false, false},
		{"user", &sec.Principal{UserID: "u1", Role: sec.RoleUser}, true, false, false},
		{"moderator", &sec.Principal{UserID: "u2", Role: sec.RoleModerator}, true, false, true},
		{"admin", &sec.Principal{UserID: "u3", Role: sec.RoleAdmin}, true, true, false},
		{"superuser with user role", &sec.Principal{UserID: "u4", Role: sec.RoleUser, IsSuperuser: true}, true, true, true},
		{"empty id", &sec.Principal{Role: sec.RoleAdmin}, false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.authenticated, sec.IsAuthenticated(tc.principal))
			assert.Equal(t, tc.admin, sec.IsAdmin(tc.principal))
			assert.Equal(t, tc.moderator, sec.IsModerator(tc.principal))
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, role := range sec.Roles {
		assert.True(t, role.IsValid(), role)
	}
	assert.False(t, sec.Role("superuser").IsValid())
	assert.False(t, sec.Role("").IsValid())
	assert.Equal(t, []string{"user", "moderator", "admin"}, sec.RoleNames())
}

func TestSecretHash(t *testing.T) {
	hash, err := sec.HashSecret("ABC123")
	require.NoError(t, err)

	assert.NotEqual(t, "ABC123", hash)
	assert.True(t, sec.CheckSecretHash("ABC123", hash))
	assert.False(t, sec.CheckSecretHash("abc123", hash))
}

func TestGenerateCode(t *testing.T) {
	code, err := sec.GenerateCode(10)
	require.NoError(t, err)
	assert.Len(t, code, 10)

	for _, r := range code {
		assert.NotContains(t, "01ILO", string(r))
		assert.Equal(t, strings.ToUpper(string(r)), string(r))
	}

	other, err := sec.GenerateCode(10)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)

	_, err = sec.GenerateCode(0)
	assert.Error(t, err)
}

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKeys(key, &key.PublicKey, "yamdb.test")
}

func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "alice", time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "alice", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

func TestTokenService_RejectsForeignKey(t *testing.T) {
	issuer := newTestTokenService(t)
	verifier := newTestTokenService(t)

	token, err := issuer.GenerateAccessToken("user-1", "alice", time.Minute)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

func TestTokenService_RejectsTamperedAndMalformed(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "alice", time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := parts[0] + "." + parts[1] + "x." + parts[2]

	for _, candidate := range []string{forged, "not-a-jwt", ""} {
		_, err := service.VerifyToken(candidate)
		assert.ErrorIs(t, err, sec.ErrInvalidToken, candidate)
	}
}

func TestTokenService_RejectsOtherIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	staging := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "yamdb.staging")
	production := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "yamdb.api")

	token, err := staging.GenerateAccessToken("user-1", "alice", time.Minute)
	require.NoError(t, err)

	_, err = production.VerifyToken(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}
