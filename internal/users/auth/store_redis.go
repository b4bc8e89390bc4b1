// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
)

// # Confirmation Code Repository

// RedisConfirmationCodeRepository implements ConfirmationCodeRepository using Redis.
type RedisConfirmationCodeRepository struct {
	client *redis.Client
}

// NewConfirmationCodeRepository creates a new Redis-backed ConfirmationCodeRepository.
func NewConfirmationCodeRepository(client *redis.Client) *RedisConfirmationCodeRepository {
	return &RedisConfirmationCodeRepository{client: client}
}

/*
SetIfAbsent stores the hashed code with SET NX so two concurrent signups
for the same account cannot both issue a code.

Parameters:
  - context: context.Context
  - userID: string
  - codeHash: string
  - ttl: time.Duration

Returns:
  - bool: Whether the code was stored
  - error: Execution errors
*/
func (repository *RedisConfirmationCodeRepository) SetIfAbsent(context context.Context, userID, codeHash string, ttl time.Duration) (bool, error) {
	key := constants.RedisPrefixConfirmationCode + userID

	stored, err := repository.client.SetNX(context, key, codeHash, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis_confirmation_code_set_failed: %w", err)
	}

	return stored, nil
}

/*
Get retrieves the hashed code for an account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - string: bcrypt hash
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisConfirmationCodeRepository) Get(context context.Context, userID string) (string, error) {
	key := constants.RedisPrefixConfirmationCode + userID

	codeHash, err := repository.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Confirmation code")
		}
		return "", fmt.Errorf("redis_confirmation_code_get_failed: %w", err)
	}

	return codeHash, nil
}

// Delete removes the code from Redis. Only one of several racing callers sees true.
func (repository *RedisConfirmationCodeRepository) Delete(context context.Context, userID string) (bool, error) {
	key := constants.RedisPrefixConfirmationCode + userID

	removed, err := repository.client.Del(context, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis_confirmation_code_delete_failed: %w", err)
	}

	return removed == 1, nil
}

// # Attempt Repository

// RedisAttemptRepository implements AttemptRepository with INCR counters.
type RedisAttemptRepository struct {
	client *redis.Client
}

// NewAttemptRepository creates a new Redis-backed AttemptRepository.
func NewAttemptRepository(client *redis.Client) *RedisAttemptRepository {
	return &RedisAttemptRepository{client: client}
}

// Count returns the failures recorded for username, zero when none.
func (repository *RedisAttemptRepository) Count(context context.Context, username string) (int, error) {
	count, err := repository.client.Get(context, constants.RedisPrefixCodeAttempts+username).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_code_attempts_get_failed: %w", err)
	}

	return count, nil
}

/*
Increment bumps the failure counter. The window starts with the first failure
and is not extended by later ones.

Parameters:
  - context: context.Context
  - username: string
  - window: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisAttemptRepository) Increment(context context.Context, username string, window time.Duration) error {
	key := constants.RedisPrefixCodeAttempts + username

	pipe := repository.client.TxPipeline()
	pipe.Incr(context, key)
	pipe.ExpireNX(context, key, window)

	if _, err := pipe.Exec(context); err != nil {
		return fmt.Errorf("redis_code_attempts_incr_failed: %w", err)
	}

	return nil
}

// Reset clears the counter.
func (repository *RedisAttemptRepository) Reset(context context.Context, username string) error {
	if err := repository.client.Del(context, constants.RedisPrefixCodeAttempts+username).Err(); err != nil {
		return fmt.Errorf("redis_code_attempts_reset_failed: %w", err)
	}

	return nil
}
