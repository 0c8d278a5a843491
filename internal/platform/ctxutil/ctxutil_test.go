// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lifequest/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "test-request-id")
	assert.Equal(t, "test-request-id", ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Principal verifies that the resolved account survives the context.
*/
func TestContext_Principal(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetPrincipal(ctx))

	ctx = ctxutil.WithPrincipal(ctx, &ctxutil.Principal{AccountID: "account-123", Email: "a@x.com"})
	principal := ctxutil.GetPrincipal(ctx)

	assert.NotNil(t, principal)
	assert.Equal(t, "account-123", principal.AccountID)
	assert.Equal(t, "a@x.com", principal.Email)
}

/*
TestContext_Client returns the zero descriptor when nothing was attached.
*/
func TestContext_Client(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctxutil.Client{}, ctxutil.GetClient(ctx))

	ctx = ctxutil.WithClient(ctx, ctxutil.Client{DeviceInfo: "Firefox 128.0 on Linux", IPAddress: "10.0.0.1"})
	assert.Equal(t, "10.0.0.1", ctxutil.GetClient(ctx).IPAddress)
}
