// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides the managed client behind the volatile auth state.

LifeQuest keeps nothing authoritative in Redis. Sessions live in Postgres; Redis
only holds the failed-login counters read by the login throttle, so an outage
degrades throttling and never blocks sign-in.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second

	defaultPoolSize = 10
)

// Settings tunes the connection pool. Zero values fall back to the defaults.
type Settings struct {
	PoolSize     int
	MinIdleConns int
}

/*
NewClient parses a Redis URL and returns a connected client.

Parameters:
  - context: Bounds the initial ping
  - redisURL: redis:// or rediss:// URL
  - settings: Pool tuning
  - logger: Structured logger for connection events

Returns:
  - *redis.Client: The live client; the caller owns Close
  - error: Parse or connectivity failure
*/
func NewClient(context context.Context, redisURL string, settings Settings, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis_url_parse_failed: %w", err)
	}

	options.PoolSize = defaultPoolSize
	if settings.PoolSize > 0 {
		options.PoolSize = settings.PoolSize
	}
	options.MinIdleConns = settings.MinIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies that Redis answers within a short deadline.
func Ping(ctx context.Context, client redis.Cmdable) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}
