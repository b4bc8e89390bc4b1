// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/mail"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username string, timeToLive time.Duration) (string, error)
}

// Settings carries the lifetimes the service hands out.
type Settings struct {
	CodeTTL        time.Duration
	AccessTokenTTL time.Duration
}

// Service implements signup and confirmation-code exchange.
type Service struct {
	userRepository    UserRepository
	codeRepository    ConfirmationCodeRepository
	attemptRepository AttemptRepository
	tokenProvider     TokenProvider
	mailer            mail.Sender
	settings          Settings
	logger            *slog.Logger
	dummyHashOnce     sync.Once
	dummyHash         string
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	codeRepo ConfirmationCodeRepository,
	attemptRepo AttemptRepository,
	tokenProv TokenProvider,
	mailer mail.Sender,
	settings Settings,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		codeRepository:    codeRepo,
		attemptRepository: attemptRepo,
		tokenProvider:     tokenProv,
		mailer:            mailer,
		settings:          settings,
		logger:            logger,
	}
}

// # Identity Validation

// ValidateIdentity appends the username and email rules shared by signup and
// account administration to v.
func ValidateIdentity(v *validate.Validator, username, email string) *validate.Validator {
	v.Required(FieldUsername, username).
		MaxLen(FieldUsername, username, UsernameMaxLength).
		Required(FieldEmail, email).
		MaxLen(FieldEmail, email, EmailMaxLength)

	if username != "" {
		v.MinLen(FieldUsername, username, UsernameMinLength).
			Username(FieldUsername, username).
			Custom(FieldUsername, username == ReservedUsername, "This username is reserved")
	}
	if email != "" {
		v.Email(FieldEmail, email)
	}

	return v
}

// # Signup Flow

// SignupInput holds the identity pair submitted to /auth/signup.
type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SignupResult echoes the accepted pair.
type SignupResult struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

/*
Signup registers the (email, username) pair if needed and emails a confirmation code.

Description: The pair is matched against existing accounts. A username or email
owned by a different account is rejected. An unknown pair creates a plain user.
A known pair gets a fresh code unless it still holds a live one.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *SignupResult: The accepted pair
  - error: ValidationError, ServiceUnavailable (mail), or storage errors
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*SignupResult, error) {

	// ── 1. Shape ──
	if err := ValidateIdentity(&validate.Validator{}, input.Username, input.Email).Err(); err != nil {
		return nil, err
	}

	// ── 2. Resolve the pair ──
	byUsername, err := service.findOptional(context, service.userRepository.FindByUsername, input.Username)
	if err != nil {
		return nil, err
	}
	byEmail, err := service.findOptional(context, service.userRepository.FindByEmail, input.Email)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Custom(FieldUsername, byUsername != nil && byUsername.Email != input.Email, "A user with that username already exists")
	validator.Custom(FieldEmail, byEmail != nil && byEmail.Username != input.Username, "A user with that email already exists")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 3. Create on first contact ──
	user := byUsername
	if user == nil {
		user = &User{
			ID:       uuid.New(),
			Username: input.Username,
			Email:    input.Email,
			Role:     sec.RoleUser,
		}
		if err := service.userRepository.Create(context, user); err != nil {
			if duplicate := DuplicateIdentity(err); duplicate != err {
				return nil, duplicate
			}
			return nil, fmt.Errorf("auth_service_signup_create_failed: %w", err)
		}
		service.logger.InfoContext(context, "signup_account_created", slog.String("user_id", user.ID))
	}

	// ── 4. Issue the code ──
	if err := service.issueCode(context, user); err != nil {
		return nil, err
	}

	return &SignupResult{Email: user.Email, Username: user.Username}, nil
}

// issueCode stores a fresh code for user and emails it.
func (service *Service) issueCode(context context.Context, user *User) error {
	code, err := sec.GenerateCode(ConfirmationCodeLength)
	if err != nil {
		return fmt.Errorf("auth_service_code_generation_failed: %w", err)
	}

	codeHash, err := sec.HashSecret(code)
	if err != nil {
		return fmt.Errorf("auth_service_code_hash_failed: %w", err)
	}

	stored, err := service.codeRepository.SetIfAbsent(context, user.ID, codeHash, service.settings.CodeTTL)
	if err != nil {
		return err
	}
	if !stored {
		return apperr.ValidationError("User already exists")
	}

	if err := service.mailer.Send(context, user.Email, ConfirmationSubject, fmt.Sprintf(confirmationBodyFormat, code)); err != nil {
		service.logger.ErrorContext(context, "signup_mail_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)

		// Without the email the code is unreachable, so the next signup must be able to reissue it.
		if _, deleteErr := service.codeRepository.Delete(context, user.ID); deleteErr != nil {
			service.logger.ErrorContext(context, "signup_code_rollback_failed", slog.Any("error", deleteErr))
		}

		unavailable := apperr.ServiceUnavailable("Confirmation email could not be sent")
		unavailable.Code = "MAIL_UNAVAILABLE"
		unavailable.Cause = err
		return unavailable
	}

	service.logger.InfoContext(context, "signup_code_issued", slog.String("user_id", user.ID))
	return nil
}

// findOptional turns a NotFound lookup into a nil user.
func (service *Service) findOptional(context context.Context, find func(context.Context, string) (*User, error), value string) (*User, error) {
	user, err := find(context, value)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// # Token Exchange Flow

// TokenInput holds the credentials submitted to /auth/token.
type TokenInput struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

// TokenResult carries the issued access token.
type TokenResult struct {
	AccessToken string `json:"access_token"`
}

/*
ExchangeCode trades a username and confirmation code for an access token.

Description: Every credential failure returns the same error. Failures are
counted per submitted username; past the limit the caller is throttled even
if the username does not exist. A matched code is consumed.

Parameters:
  - context: context.Context
  - input: TokenInput

Returns:
  - *TokenResult: Signed access token
  - error: ValidationError, InvalidCredentials, RateLimited, or storage errors
*/
func (service *Service) ExchangeCode(context context.Context, input TokenInput) (*TokenResult, error) {

	// ── 1. Shape ──
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).Required(FieldConfirmationCode, input.ConfirmationCode)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Throttle ──
	attempts, err := service.attemptRepository.Count(context, input.Username)
	if err != nil {
		return nil, err
	}
	if attempts >= constants.CodeAttemptLimit {
		service.logger.WarnContext(context, "token_exchange_throttled", slog.String("username", input.Username))
		return nil, apperr.RateLimited(int(constants.CodeAttemptWindow.Seconds()))
	}

	// ── 3. Verify ──
	user, codeHash, err := service.lookupCode(context, input.Username)
	if err != nil {
		return nil, err
	}

	if codeHash == "" {
		// Same bcrypt cost as a real comparison so timing does not reveal which check failed.
		sec.CheckSecretHash(input.ConfirmationCode, service.placeholderHash())
		return nil, service.recordFailure(context, input.Username)
	}
	if !sec.CheckSecretHash(input.ConfirmationCode, codeHash) {
		return nil, service.recordFailure(context, input.Username)
	}

	// ── 4. Consume and issue ──
	consumed, err := service.codeRepository.Delete(context, user.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		service.logger.InfoContext(context, "token_exchange_code_already_used", slog.String("user_id", user.ID))
		return nil, apperr.InvalidCredentials()
	}
	if err := service.attemptRepository.Reset(context, input.Username); err != nil {
		service.logger.WarnContext(context, "token_exchange_reset_failed", slog.Any("error", err))
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, service.settings.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.InfoContext(context, "token_issued", slog.String("user_id", user.ID))
	return &TokenResult{AccessToken: accessToken}, nil
}

// lookupCode returns an empty hash when either the user or its code is missing.
func (service *Service) lookupCode(context context.Context, username string) (*User, string, error) {
	user, err := service.findOptional(context, service.userRepository.FindByUsername, username)
	if err != nil || user == nil {
		return nil, "", err
	}

	codeHash, err := service.codeRepository.Get(context, user.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return user, "", nil
		}
		return nil, "", err
	}

	return user, codeHash, nil
}

func (service *Service) recordFailure(context context.Context, username string) error {
	if err := service.attemptRepository.Increment(context, username, constants.CodeAttemptWindow); err != nil {
		service.logger.WarnContext(context, "token_exchange_count_failed", slog.Any("error", err))
	}
	service.logger.InfoContext(context, "token_exchange_rejected", slog.String("username", username))
	return apperr.InvalidCredentials()
}

func (service *Service) placeholderHash() string {
	service.dummyHashOnce.Do(func() {
		code, err := sec.GenerateCode(ConfirmationCodeLength)
		if err != nil {
			code = ReservedUsername
		}
		service.dummyHash, _ = sec.HashSecret(code)
	})
	return service.dummyHash
}
