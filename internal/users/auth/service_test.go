// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/textproto"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/mail"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Fakes

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryUsers(users ...*User) *memoryUsers {
	store := &memoryUsers{users: map[string]*User{}}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (m *memoryUsers) find(match func(*User) bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	return m.find(func(u *User) bool { return u.ID == id })
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	return m.find(func(u *User) bool { return u.Email == email })
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*User, error) {
	return m.find(func(u *User) bool { return u.Username == username })
}

func (m *memoryUsers) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict("Resource already exists")
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUsers) LoadPrincipal(ctx context.Context, userID string) (*sec.Principal, error) {
	user, err := m.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Principal(), nil
}

type memoryCodes struct {
	mu     sync.Mutex
	hashes map[string]string
}

func (m *memoryCodes) SetIfAbsent(_ context.Context, userID, codeHash string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hashes[userID]; ok {
		return false, nil
	}
	m.hashes[userID] = codeHash
	return true, nil
}

func (m *memoryCodes) Get(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.hashes[userID]
	if !ok {
		return "", apperr.NotFound("Confirmation code")
	}
	return hash, nil
}

func (m *memoryCodes) Delete(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.hashes[userID]
	delete(m.hashes, userID)
	return ok, nil
}

type memoryAttempts struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *memoryAttempts) Count(_ context.Context, username string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[username], nil
}

func (m *memoryAttempts) Increment(_ context.Context, username string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[username]++
	return nil
}

func (m *memoryAttempts) Reset(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, username)
	return nil
}

type outbox struct {
	bodies map[string]string
	err    error
}

func (o *outbox) Send(_ context.Context, recipient, subject, body string) error {
	if o.err != nil {
		return o.err
	}
	o.bodies[recipient] = body
	return nil
}

var codePattern = regexp.MustCompile(`Your confirmation code: (\S+)`)

func (o *outbox) code(t *testing.T, recipient string) string {
	t.Helper()
	match := codePattern.FindStringSubmatch(o.bodies[recipient])
	require.Len(t, match, 2, "no code mailed to %s", recipient)
	return match[1]
}

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(userID, username string, _ time.Duration) (string, error) {
	return "token-for-" + username + "-" + userID, nil
}

type fixture struct {
	service  *Service
	users    *memoryUsers
	codes    *memoryCodes
	attempts *memoryAttempts
	outbox   *outbox
}

func newFixture(users ...*User) *fixture {
	f := &fixture{
		users:    newMemoryUsers(users...),
		codes:    &memoryCodes{hashes: map[string]string{}},
		attempts: &memoryAttempts{counts: map[string]int{}},
		outbox:   &outbox{bodies: map[string]string{}},
	}
	f.service = NewService(f.users, f.codes, f.attempts, stubTokens{}, f.outbox,
		Settings{CodeTTL: time.Hour, AccessTokenTTL: time.Hour},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
	if len(appErr.Details) == 0 {
		return ""
	}
	return appErr.Details[0].Field
}

// # Signup

func TestSignup_CreatesAccountAndMailsCode(t *testing.T) {
	f := newFixture()

	result, err := f.service.Signup(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, &SignupResult{Email: "alice@example.com", Username: "alice"}, result)

	user, err := f.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.False(t, user.IsSuperuser)

	code := f.outbox.code(t, "alice@example.com")
	assert.Len(t, code, ConfirmationCodeLength)
	assert.True(t, sec.CheckSecretHash(code, f.codes.hashes[user.ID]))
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"reserved username", SignupInput{Username: "me", Email: "me@example.com"}, FieldUsername},
		{"too short", SignupInput{Username: "a", Email: "a@example.com"}, FieldUsername},
		{"too long", SignupInput{Username: strings.Repeat("a", 21), Email: "a@example.com"}, FieldUsername},
		{"bad characters", SignupInput{Username: "al ice", Email: "a@example.com"}, FieldUsername},
		{"missing username", SignupInput{Email: "a@example.com"}, FieldUsername},
		{"missing email", SignupInput{Username: "alice"}, FieldEmail},
		{"bad email", SignupInput{Username: "alice", Email: "alice"}, FieldEmail},
		{"long email", SignupInput{Username: "alice", Email: strings.Repeat("a", 50) + "@example.com"}, FieldEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.service.Signup(context.Background(), tt.input)
			assert.Equal(t, tt.field, fieldOf(t, err))
			assert.Empty(t, f.outbox.bodies)
		})
	}
}

func TestSignup_IdentityClash(t *testing.T) {
	existing := &User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: sec.RoleUser}

	f := newFixture(existing)
	_, err := f.service.Signup(context.Background(), SignupInput{Username: "alice", Email: "other@example.com"})
	assert.Equal(t, FieldUsername, fieldOf(t, err))

	_, err = f.service.Signup(context.Background(), SignupInput{Username: "bob", Email: "alice@example.com"})
	assert.Equal(t, FieldEmail, fieldOf(t, err))
}

func TestSignup_PendingPairIsRejected(t *testing.T) {
	f := newFixture()
	input := SignupInput{Username: "alice", Email: "alice@example.com"}

	_, err := f.service.Signup(context.Background(), input)
	require.NoError(t, err)

	_, err = f.service.Signup(context.Background(), input)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, "User already exists", appErr.Message)
}

func TestSignup_ExistingPairWithoutCodeGetsOne(t *testing.T) {
	existing := &User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: sec.RoleModerator}
	f := newFixture(existing)

	_, err := f.service.Signup(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	assert.NotEmpty(t, f.outbox.code(t, "alice@example.com"))
	assert.Contains(t, f.codes.hashes, "u1")
	assert.Len(t, f.users.users, 1)
}

func TestSignup_MailFailureReleasesCode(t *testing.T) {
	f := newFixture()
	f.outbox.err = errors.New("relay down")
	input := SignupInput{Username: "alice", Email: "alice@example.com"}

	_, err := f.service.Signup(context.Background(), input)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 503, appErr.HTTPStatus)
	assert.Equal(t, "MAIL_UNAVAILABLE", appErr.Code)
	assert.Empty(t, f.codes.hashes)

	f.outbox.err = nil
	_, err = f.service.Signup(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, f.outbox.code(t, "alice@example.com"))
}

type queuedBodies struct {
	bodies [][]byte
}

func (q *queuedBodies) Publish(_ context.Context, body []byte) error {
	q.bodies = append(q.bodies, body)
	return nil
}

type bouncingSender struct {
	err error
}

func (b bouncingSender) Send(context.Context, string, string, string) error {
	return b.err
}

func TestSignup_UndeliveredQueuedMailReleasesCode(t *testing.T) {
	tests := []struct {
		name     string
		bounce   error
		attempts int
	}{
		{"mailbox rejected", &textproto.Error{Code: 550, Msg: "mailbox unavailable"}, 1},
		{"relay unreachable until budget runs out", errors.New("dial tcp: connection refused"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			queue := &queuedBodies{}
			f.service.mailer = mail.NewQueueSender(queue, "webmaster@localhost", logger)

			releaser := NewCodeReleaser(f.users, f.codes, logger)
			relay := mail.NewRelay(nil, bouncingSender{err: tt.bounce},
				mail.RelayPolicy{MaxAttempts: 3, OnUndeliverable: releaser.Release}, logger)

			input := SignupInput{Username: "alice", Email: "alice@example.com"}
			_, err := f.service.Signup(context.Background(), input)
			require.NoError(t, err)
			require.Len(t, queue.bodies, 1)

			_, err = f.service.Signup(context.Background(), input)
			require.Error(t, err)
			assert.Equal(t, "User already exists", apperr.As(err).Message)

			var last error
			for attempt := 1; attempt <= tt.attempts; attempt++ {
				last = relay.Handle(context.Background(), mail.Delivery{Body: queue.bodies[0], Attempt: attempt})
				require.Error(t, last)
			}
			assert.True(t, mail.IsPermanent(last))
			assert.Empty(t, f.codes.hashes)

			_, err = f.service.Signup(context.Background(), input)
			require.NoError(t, err)
			assert.Len(t, queue.bodies, 2)
		})
	}
}

func TestCodeReleaser_UnknownRecipient(t *testing.T) {
	f := newFixture()
	releaser := NewCodeReleaser(f.users, f.codes, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, releaser.Release(context.Background(), "nobody@example.com"))
}

// # Token Exchange

func TestExchangeCode_IssuesTokenOnce(t *testing.T) {
	f := newFixture()
	_, err := f.service.Signup(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	code := f.outbox.code(t, "alice@example.com")

	result, err := f.service.ExchangeCode(context.Background(), TokenInput{Username: "alice", ConfirmationCode: code})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.AccessToken, "token-for-alice-"))

	_, err = f.service.ExchangeCode(context.Background(), TokenInput{Username: "alice", ConfirmationCode: code})
	assert.True(t, apperr.HasCode(err, "INVALID_CREDENTIALS"))

	// A consumed code lets the same pair sign up again.
	_, err = f.service.Signup(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	assert.NoError(t, err)
}

func TestExchangeCode_ConcurrentExchangesIssueOneToken(t *testing.T) {
	f := newFixture()
	_, err := f.service.Signup(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	input := TokenInput{Username: "alice", ConfirmationCode: f.outbox.code(t, "alice@example.com")}

	const callers = constants.CodeAttemptLimit - 1
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		issued   int
		rejected int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.ExchangeCode(context.Background(), input)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				issued++
			case apperr.HasCode(err, "INVALID_CREDENTIALS"):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, issued)
	assert.Equal(t, callers-1, rejected)
}

func TestExchangeCode_UniformFailures(t *testing.T) {
	f := newFixture()
	_, err := f.service.Signup(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, unknownUser := f.service.ExchangeCode(context.Background(), TokenInput{Username: "nobody", ConfirmationCode: "ABCDEFGHJK"})
	_, wrongCode := f.service.ExchangeCode(context.Background(), TokenInput{Username: "alice", ConfirmationCode: "ABCDEFGHJK"})

	require.Error(t, unknownUser)
	require.Error(t, wrongCode)
	assert.Equal(t, apperr.As(unknownUser), apperr.As(wrongCode))
	assert.Equal(t, "Please check your credentials", unknownUser.Error())
}

func TestExchangeCode_RequiresFields(t *testing.T) {
	f := newFixture()
	_, err := f.service.ExchangeCode(context.Background(), TokenInput{Username: "alice"})
	assert.Equal(t, FieldConfirmationCode, fieldOf(t, err))
}

func TestExchangeCode_ThrottlesAfterRepeatedFailures(t *testing.T) {
	f := newFixture()
	_, err := f.service.Signup(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	code := f.outbox.code(t, "alice@example.com")

	for i := 0; i < constants.CodeAttemptLimit; i++ {
		_, err := f.service.ExchangeCode(context.Background(), TokenInput{Username: "alice", ConfirmationCode: "WRONGWRONG"})
		require.True(t, apperr.HasCode(err, "INVALID_CREDENTIALS"))
	}

	_, err = f.service.ExchangeCode(context.Background(), TokenInput{Username: "alice", ConfirmationCode: code})
	assert.True(t, apperr.HasCode(err, "RATE_LIMITED"))

	// Unknown usernames are throttled the same way.
	for i := 0; i < constants.CodeAttemptLimit; i++ {
		_, _ = f.service.ExchangeCode(context.Background(), TokenInput{Username: "ghost", ConfirmationCode: "WRONGWRONG"})
	}
	_, err = f.service.ExchangeCode(context.Background(), TokenInput{Username: "ghost", ConfirmationCode: "WRONGWRONG"})
	assert.True(t, apperr.HasCode(err, "RATE_LIMITED"))
}

func TestExchangeCode_SuccessResetsAttempts(t *testing.T) {
	f := newFixture()
	_, err := f.service.Signup(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, _ = f.service.ExchangeCode(context.Background(), TokenInput{Username: "alice", ConfirmationCode: "WRONGWRONG"})
	assert.Equal(t, 1, f.attempts.counts["alice"])

	_, err = f.service.ExchangeCode(context.Background(), TokenInput{Username: "alice", ConfirmationCode: f.outbox.code(t, "alice@example.com")})
	require.NoError(t, err)
	assert.Zero(t, f.attempts.counts["alice"])
}
