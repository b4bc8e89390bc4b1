// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
)

// CodeReleaser drops the pending code of an account whose confirmation email
// was never delivered, so the next signup issues a new one.
type CodeReleaser struct {
	userRepository UserRepository
	codeRepository ConfirmationCodeRepository
	logger         *slog.Logger
}

// NewCodeReleaser constructs a [CodeReleaser].
func NewCodeReleaser(userRepo UserRepository, codeRepo ConfirmationCodeRepository, logger *slog.Logger) *CodeReleaser {
	return &CodeReleaser{userRepository: userRepo, codeRepository: codeRepo, logger: logger}
}

/*
Release deletes the pending code of the account owning email.

Parameters:
  - context: context.Context
  - email: string (the undelivered recipient)

Returns:
  - error: Storage failures. An unknown email is not an error.
*/
func (releaser *CodeReleaser) Release(context context.Context, email string) error {
	user, err := releaser.userRepository.FindByEmail(context, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			releaser.logger.WarnContext(context, "confirmation_code_release_unknown_recipient")
			return nil
		}
		return err
	}

	removed, err := releaser.codeRepository.Delete(context, user.ID)
	if err != nil {
		return err
	}

	releaser.logger.InfoContext(context, "confirmation_code_released",
		slog.String("user_id", user.ID),
		slog.Bool("removed", removed),
	)
	return nil
}
