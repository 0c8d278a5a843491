// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/lifequest/internal/users/auth"
	"github.com/taibuivan/lifequest/pkg/slice"
)

// # Contracts

// SessionManager is the slice of [auth.Service] this package reads through.
type SessionManager interface {
	GetAccount(ctx context.Context, accountID string) (*auth.Account, error)
	ListSessions(ctx context.Context, accountID string) ([]*auth.Session, error)
	RevokeSession(ctx context.Context, accountID, sessionID string) error
}

// # Service Layer

// Service shapes account and session data for the signed-in caller.
type Service struct {
	sessionManager SessionManager
	logger         *slog.Logger
}

// NewService constructs a new [Service].
func NewService(sessionManager SessionManager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sessionManager: sessionManager, logger: logger}
}

/*
GetCurrent returns the caller's account view.

Parameters:
  - context: context.Context
  - accountID: string (from the resolved principal)

Returns:
  - *View: The account
  - error: apperr.AccountNotFound if the row vanished after authentication
*/
func (service *Service) GetCurrent(context context.Context, accountID string) (*View, error) {
	account, err := service.sessionManager.GetAccount(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_current_failed: %w", err)
	}
	return newView(account), nil
}

// ListSessions returns the caller's live sessions, newest first.
func (service *Service) ListSessions(context context.Context, accountID string) ([]SessionView, error) {
	sessions, err := service.sessionManager.ListSessions(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}

	views := slice.Map(sessions, newSessionView)
	if views == nil {
		views = []SessionView{}
	}
	return views, nil
}

/*
RevokeSession signs one of the caller's devices out.

Description: The session must belong to accountID. A session owned by someone
else is reported exactly like a missing one.

Returns:
  - error: apperr.NotFound when no owned session matches
*/
func (service *Service) RevokeSession(context context.Context, accountID, sessionID string) error {
	if err := service.sessionManager.RevokeSession(context, accountID, sessionID); err != nil {
		return fmt.Errorf("account_service_revoke_session_failed: %w", err)
	}

	service.logger.Info("account_session_revoked",
		slog.String("account_id", accountID),
		slog.String("session_id", sessionID),
	)
	return nil
}
