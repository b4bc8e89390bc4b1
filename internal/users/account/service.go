// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/internal/users/auth"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # Service Layer

// Service orchestrates account administration and self-service profile edits.
type Service struct {
	accountRepository Repository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(accountRepo Repository, logger *slog.Logger) *Service {
	return &Service{accountRepository: accountRepo, logger: logger}
}

// # Administration

/*
ListUsers returns a page of accounts.

Parameters:
  - context: context.Context
  - filter: Filter
  - params: pagination.Params

Returns:
  - []*auth.User: Page of accounts
  - int: Total matches
  - error: Storage failures
*/
func (service *Service) ListUsers(context context.Context, filter Filter, params pagination.Params) ([]*auth.User, int, error) {
	users, total, err := service.accountRepository.List(context, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return users, total, nil
}

/*
CreateUser provisions an account on behalf of an administrator.

Description: Unlike signup, no confirmation code is issued. The account can
obtain one later through the public signup flow with the same pair.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *auth.User: The created account
  - error: ValidationError or storage failures
*/
func (service *Service) CreateUser(context context.Context, input CreateInput) (*auth.User, error) {
	if input.Role == "" {
		input.Role = sec.RoleUser
	}

	user := &auth.User{
		ID:        uuid.New(),
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		Role:      input.Role,
	}

	if err := validateProfile(user); err != nil {
		return nil, err
	}

	if err := service.accountRepository.Create(context, user); err != nil {
		return nil, auth.DuplicateIdentity(err)
	}

	service.logger.InfoContext(context, "user_created",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// GetUser returns the account with the given username.
func (service *Service) GetUser(context context.Context, username string) (*auth.User, error) {
	return service.accountRepository.FindByUsername(context, username)
}

/*
UpdateUser applies a partial update to any account, role included.

Parameters:
  - context: context.Context
  - username: string
  - input: UpdateInput

Returns:
  - *auth.User: The updated account
  - error: NotFound, ValidationError, or storage failures
*/
func (service *Service) UpdateUser(context context.Context, username string, input UpdateInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	input.apply(user)
	return service.save(context, user)
}

/*
Promote sets the role and superuser flag of an account. It backs the
operator CLI, which is the only way to grant superuser.

Returns:
  - *auth.User: The updated account
  - error: NotFound, ValidationError, or storage failures
*/
func (service *Service) Promote(context context.Context, username string, role sec.Role, superuser bool) (*auth.User, error) {
	user, err := service.accountRepository.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.IsSuperuser = superuser
	if _, err := service.save(context, user); err != nil {
		return nil, err
	}

	service.logger.WarnContext(context, "user_promoted",
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
		slog.Bool("superuser", superuser),
	)

	return user, nil
}

// DeleteUser removes the account with the given username.
func (service *Service) DeleteUser(context context.Context, username string) error {
	user, err := service.accountRepository.FindByUsername(context, username)
	if err != nil {
		return err
	}

	if err := service.accountRepository.Delete(context, user.ID); err != nil {
		return err
	}

	service.logger.WarnContext(context, "user_deleted", slog.String("user_id", user.ID))
	return nil
}

// # Self Service

// GetProfile returns the caller's own account.
func (service *Service) GetProfile(context context.Context, principal *sec.Principal) (*auth.User, error) {
	if !sec.IsAuthenticated(principal) {
		return nil, apperr.Unauthorized("Authentication credentials were not provided")
	}
	return service.accountRepository.FindByID(context, principal.UserID)
}

/*
UpdateProfile applies a partial update to the caller's own account.

Description: Staff (moderators and admins) may change their own role. For
anyone else the stored role is reset to user on every save, whatever the
payload says. Staff status is read from the stored account, not from the
principal, so a role changed since the token was checked takes effect.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - input: UpdateInput

Returns:
  - *auth.User: The updated account
  - error: Unauthorized, ValidationError, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, principal *sec.Principal, input UpdateInput) (*auth.User, error) {
	user, err := service.GetProfile(context, principal)
	if err != nil {
		return nil, err
	}

	stored := user.Principal()
	input.apply(user)
	if !sec.IsAdmin(stored) && !sec.IsModerator(stored) {
		user.Role = sec.RoleUser
	}

	return service.save(context, user)
}

func (service *Service) save(context context.Context, user *auth.User) (*auth.User, error) {
	if err := validateProfile(user); err != nil {
		return nil, err
	}

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, auth.DuplicateIdentity(err)
	}

	service.logger.InfoContext(context, "user_profile_updated",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// # Helpers

func validateProfile(user *auth.User) error {
	validator := auth.ValidateIdentity(&validate.Validator{}, user.Username, user.Email)
	validator.MaxLen(auth.FieldFirstName, user.FirstName, auth.NameMaxLength).
		MaxLen(auth.FieldLastName, user.LastName, auth.NameMaxLength).
		OneOf(auth.FieldRole, string(user.Role), sec.RoleNames()...)
	return validator.Err()
}

