// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/lifequest/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// Principal is the account an access token resolved to on this request.
type Principal struct {
	AccountID string
	Email     string
}

// WithPrincipal returns a new context carrying the authenticated account.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, ctxkey.KeyPrincipal, principal)
}

// GetPrincipal returns the authenticated account, or nil for anonymous requests.
func GetPrincipal(ctx context.Context) *Principal {
	principal, ok := ctx.Value(ctxkey.KeyPrincipal).(*Principal)
	if !ok {
		return nil
	}
	return principal
}

// # Client Descriptor

// Client describes where a request came from. Both fields are advisory.
type Client struct {
	DeviceInfo string
	IPAddress  string
}

// WithClient returns a new context carrying the caller's descriptor.
func WithClient(ctx context.Context, client Client) context.Context {
	return context.WithValue(ctx, ctxkey.KeyClient, client)
}

// GetClient returns the caller's descriptor, or the zero value when absent.
func GetClient(ctx context.Context) Client {
	client, _ := ctx.Value(ctxkey.KeyClient).(Client)
	return client
}
