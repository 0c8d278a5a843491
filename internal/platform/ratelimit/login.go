// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit throttles repeated failed logins per account email.

Counters live in Redis so every API replica sees the same budget. Each failure
extends the window, a successful login clears it. Redis being unavailable must
never lock users out, so every Redis error fails open and is only logged.
*/
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/constants"
)

// LoginLimiter counts failed logins in a sliding window.
type LoginLimiter struct {
	client      redis.Cmdable
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
}

// NewLoginLimiter returns a limiter. maxAttempts <= 0 disables throttling.
func NewLoginLimiter(client redis.Cmdable, maxAttempts int, window time.Duration, logger *slog.Logger) *LoginLimiter {
	return &LoginLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

func key(email string) string {
	return constants.RedisPrefixLoginAttempts + email
}

// Check returns a RateLimited error once the failure budget for email is spent.
func (limiter *LoginLimiter) Check(ctx context.Context, email string) error {
	if limiter.maxAttempts <= 0 {
		return nil
	}

	failures, err := limiter.client.Get(ctx, key(email)).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			limiter.logger.WarnContext(ctx, "login_limiter_check_failed", slog.Any("error", err))
		}
		return nil
	}

	if failures < limiter.maxAttempts {
		return nil
	}

	retryAfter, err := limiter.client.TTL(ctx, key(email)).Result()
	if err != nil || retryAfter <= 0 {
		retryAfter = limiter.window
	}

	return apperr.RateLimited(int(math.Ceil(retryAfter.Seconds())))
}

// Fail records one failed attempt and restarts the window.
func (limiter *LoginLimiter) Fail(ctx context.Context, email string) {
	if limiter.maxAttempts <= 0 {
		return
	}

	_, err := limiter.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key(email))
		pipe.Expire(ctx, key(email), limiter.window)
		return nil
	})
	if err != nil {
		limiter.logger.WarnContext(ctx, "login_limiter_record_failed", slog.Any("error", err))
	}
}

// Reset clears the failure counter after a successful login.
func (limiter *LoginLimiter) Reset(ctx context.Context, email string) {
	if limiter.maxAttempts <= 0 {
		return
	}

	if err := limiter.client.Del(ctx, key(email)).Err(); err != nil {
		limiter.logger.WarnContext(ctx, "login_limiter_reset_failed", slog.Any("error", err))
	}
}
