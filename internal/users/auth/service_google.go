// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/ctxutil"
	"github.com/taibuivan/lifequest/internal/platform/oauth"
	"github.com/taibuivan/lifequest/pkg/uuid"
)

/*
GoogleLogin signs in, links or registers an account from a Google ID token.

Description: Resolution order inside one transaction:
 1. An existing (google, sub) identity resolves to its account.
 2. Otherwise an account with the asserted email is reused and the identity is
    linked to it, unless it already holds a different Google subject.
 3. Otherwise a password-less account is created together with the identity.

Parameters:
  - context: context.Context
  - idToken: string (Google ID token from the client)
  - client: Client

Returns:
  - *TokenPair: Fresh tokens; IsNewUser is true only for branch 3
  - error: OAuth, InvalidCredentials or storage errors
*/
func (service *Service) GoogleLogin(context context.Context, idToken string, client Client) (pair *TokenPair, err error) {
	defer service.observe(FlowGoogleLogin, time.Now(), &err)

	identity, err := service.google.Verify(context, idToken)
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(identity.Email)
	if email == "" || identity.Subject == "" {
		return nil, apperr.InvalidCredentials(msgGoogleMissingClaim)
	}

	var isNewUser bool

	err = service.transactor.WithinTx(context, func(context context.Context) error {
		account, created, err := service.resolveGoogleAccount(context, email, identity)
		if err != nil {
			return err
		}
		isNewUser = created

		if !account.IsActive {
			return apperr.InvalidCredentials(msgAccountDeactivated)
		}

		if err := service.accountRepository.TouchLastLogin(context, account.ID, service.now()); err != nil {
			return err
		}

		pair, err = service.openSession(context, account.ID, client)
		return err
	})
	if err != nil {
		return nil, err
	}

	pair.IsNewUser = isNewUser
	if isNewUser {
		ctxutil.GetLogger(context).InfoContext(context, "account_registered_via_google",
			slog.String("provider", oauth.ProviderGoogle),
		)
	}
	return pair, nil
}

// resolveGoogleAccount walks the three resolution branches and reports whether
// a new account was created.
func (service *Service) resolveGoogleAccount(context context.Context, email string, identity *oauth.GoogleIdentity) (*Account, bool, error) {

	// 1. Known Google subject
	linked, err := service.identityRepository.FindByProviderSubject(context, oauth.ProviderGoogle, identity.Subject)
	switch {
	case err == nil:
		if err := service.identityRepository.UpdateProviderData(context, linked.ID, identity.ProviderData()); err != nil {
			return nil, false, err
		}
		account, err := service.accountRepository.FindByID(context, linked.AccountID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, false, apperr.InvalidCredentials(msgInvalidCredentials)
			}
			return nil, false, err
		}
		return account, false, nil
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, false, err
	}

	// 2. Existing account with the same email
	account, err := service.accountRepository.FindByEmail(context, email)
	switch {
	case err == nil:
		existing, err := service.identityRepository.FindByAccountProvider(context, account.ID, oauth.ProviderGoogle)
		if err == nil && existing.ProviderUserID != identity.Subject {
			return nil, false, apperr.InvalidCredentials(msgGoogleLinkConflict)
		}
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return nil, false, err
		}
		if err := service.linkGoogle(context, account.ID, identity); err != nil {
			return nil, false, err
		}
		return account, false, nil
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, false, err
	}

	// 3. Brand-new, password-less account
	account = &Account{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  nil,
		EmailVerified: identity.EmailVerified,
		IsActive:      true,
	}
	if err := service.accountRepository.Create(context, account); err != nil {
		return nil, false, err
	}
	if err := service.linkGoogle(context, account.ID, identity); err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func (service *Service) linkGoogle(context context.Context, accountID string, identity *oauth.GoogleIdentity) error {
	return service.identityRepository.Create(context, &ExternalIdentity{
		ID:             uuid.New(),
		AccountID:      accountID,
		Provider:       oauth.ProviderGoogle,
		ProviderUserID: identity.Subject,
		ProviderData:   identity.ProviderData(),
	})
}
