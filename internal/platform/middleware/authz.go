// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/constants"
	"github.com/taibuivan/lifequest/internal/platform/ctxutil"
	"github.com/taibuivan/lifequest/internal/platform/respond"
)

// PrincipalResolver turns a raw access token into the account it belongs to.
//
// The session manager implements it. Declaring it here keeps the middleware
// free of any dependency on the users packages.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, accessToken string) (*ctxutil.Principal, error)
}

// RequireAuth resolves the bearer token and blocks the request when it fails.
//
// # Flow
//  1. Require an 'Authorization: Bearer <token>' header (scheme is case-insensitive).
//  2. Resolve the token through [PrincipalResolver]. Its error is returned as is,
//     so an expired token reads INVALID_TOKEN and a deleted account ACCOUNT_NOT_FOUND.
//  3. Inject the [ctxutil.Principal] and an account-scoped logger into the context.
//
// Mount it only on protected groups. The public auth routes must keep working
// with a stale token in the header.
func RequireAuth(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			accessToken, err := BearerToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			principal, err := resolver.ResolvePrincipal(request.Context(), accessToken)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			logger := ctxutil.GetLogger(ctx).With(slog.String("account_id", principal.AccountID))
			ctx = ctxutil.WithLogger(ctx, logger)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// BearerToken extracts the credential from the Authorization header.
func BearerToken(request *http.Request) (string, error) {
	header := request.Header.Get(constants.HeaderAuthorization)
	if strings.TrimSpace(header) == "" {
		return "", apperr.Unauthorized("Missing authorization header")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], constants.AuthScheme) {
		return "", apperr.Unauthorized("Invalid authorization header format")
	}
	return parts[1], nil
}
