// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package oauth verifies third-party identity assertions.

Only Google ID tokens are supported. Signature, audience and expiry checks are
delegated to google.golang.org/api/idtoken, which fetches and caches Google's
public key set. This package adds the issuer check, a bounded timeout and the
extraction of the profile fields the session layer needs.

Every failure is reported as a single [apperr.KindOAuth] error. Callers can only
tell causes apart by message text.
*/
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
)

// ProviderGoogle is the provider name stored on external identities.
const ProviderGoogle = "google"

// googleIssuers are the canonical issuer strings Google signs ID tokens with.
var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// # Types

// GoogleIdentity holds the fields extracted from a verified Google ID token.
type GoogleIdentity struct {
	Email         string
	Subject       string
	EmailVerified bool
	Name          string
	Picture       string
	GivenName     string
	FamilyName    string
	Locale        string
}

// ProviderData returns the opaque profile blob persisted on the external identity.
func (identity *GoogleIdentity) ProviderData() map[string]string {
	return map[string]string{
		"picture":     identity.Picture,
		"given_name":  identity.GivenName,
		"family_name": identity.FamilyName,
		"locale":      identity.Locale,
	}
}

// TokenValidator is satisfied by [*idtoken.Validator].
type TokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier checks Google ID tokens issued for a single OAuth client.
type GoogleVerifier struct {
	validator TokenValidator
	clientID  string
	timeout   time.Duration
}

// NewGoogleVerifier builds a verifier backed by Google's published key set.
func NewGoogleVerifier(ctx context.Context, clientID string, timeout time.Duration) (*GoogleVerifier, error) {
	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("oauth: failed to create google validator: %w", err)
	}
	return NewGoogleVerifierWith(validator, clientID, timeout), nil
}

// NewGoogleVerifierWith builds a verifier around a custom [TokenValidator].
func NewGoogleVerifierWith(validator TokenValidator, clientID string, timeout time.Duration) *GoogleVerifier {
	return &GoogleVerifier{validator: validator, clientID: clientID, timeout: timeout}
}

// # Verification

/*
Verify validates a Google ID token and extracts the caller's identity.

Steps:
 1. Signature, audience and expiry (delegated to idtoken) under a bounded timeout.
 2. Issuer must be one of Google's canonical issuers.
 3. Field extraction. Missing email or subject is left for the caller to reject.

Returns:
  - *GoogleIdentity: Verified identity
  - error: apperr.KindOAuth on any failure
*/
func (verifier *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if verifier.clientID == "" {
		return nil, apperr.OAuth("Google OAuth verification failed: sign-in is not configured")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, verifier.timeout)
	defer cancel()

	payload, err := verifier.validator.Validate(verifyCtx, idToken, verifier.clientID)
	if err != nil {
		if isTransportFailure(verifyCtx, err) {
			return nil, apperr.OAuth("Google OAuth verification failed: " + err.Error()).WithCause(err)
		}
		return nil, apperr.OAuth("Invalid Google token: " + err.Error()).WithCause(err)
	}

	if _, ok := googleIssuers[payload.Issuer]; !ok {
		return nil, apperr.OAuth("Invalid Google token: wrong issuer")
	}

	return &GoogleIdentity{
		Email:         stringClaim(payload.Claims, "email"),
		Subject:       payload.Subject,
		EmailVerified: boolClaim(payload.Claims, "email_verified"),
		Name:          stringClaim(payload.Claims, "name"),
		Picture:       stringClaim(payload.Claims, "picture"),
		GivenName:     stringClaim(payload.Claims, "given_name"),
		FamilyName:    stringClaim(payload.Claims, "family_name"),
		Locale:        stringClaim(payload.Claims, "locale"),
	}, nil
}

// isTransportFailure separates key-endpoint and timeout failures from bad tokens.
func isTransportFailure(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func stringClaim(claims map[string]interface{}, name string) string {
	value, _ := claims[name].(string)
	return value
}

// boolClaim accepts both JSON booleans and the "true" string some Google endpoints emit.
func boolClaim(claims map[string]interface{}, name string) bool {
	switch value := claims[name].(type) {
	case bool:
		return value
	case string:
		return value == "true"
	default:
		return false
	}
}
