// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, JWT signing,
// refresh token fingerprints) from the domain logic. Its types are constructed once
// from [config.Config] in main and injected into the services that need them.
package sec

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/pkg/uuid"
)

// # Claims

// TokenType discriminates access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the payload of every token minted by [TokenCodec].
//
// The subject is the account ID. The type claim must be checked by every
// consumer, an access token is never a refresh token and vice versa.
type Claims struct {
	jwt.RegisteredClaims

	Type  TokenType      `json:"typ"`
	Extra map[string]any `json:"ext,omitempty"`
}

// AccountID returns the subject claim.
func (claims *Claims) AccountID() string {
	return claims.Subject
}

// # Codec

const errInvalidToken = "Could not validate credentials"

// TokenCodec signs and verifies HMAC JWTs with a server-held secret.
type TokenCodec struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenCodec builds a codec for one of HS256, HS384 or HS512.
func NewTokenCodec(secret, algorithm, issuer string, accessTTL, refreshTTL time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: empty signing secret")
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(algorithm) {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("sec: unsupported signing algorithm %q", algorithm)
	}

	return &TokenCodec{
		secret:     []byte(secret),
		method:     method,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock replaces the time source. It is meant for tests.
func (codec *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	codec.now = now
	return codec
}

// AccessTTL returns the configured access token lifetime.
func (codec *TokenCodec) AccessTTL() time.Duration { return codec.accessTTL }

// IssueAccess mints a short-lived access token for the account.
func (codec *TokenCodec) IssueAccess(accountID string, extra map[string]any) (string, error) {
	token, _, err := codec.issue(accountID, TokenTypeAccess, codec.accessTTL, extra)
	return token, err
}

// IssueRefresh mints a long-lived refresh token and returns its expiry so the
// caller can mirror it on the session row.
func (codec *TokenCodec) IssueRefresh(accountID string) (string, time.Time, error) {
	return codec.issue(accountID, TokenTypeRefresh, codec.refreshTTL, nil)
}

func (codec *TokenCodec) issue(accountID string, tokenType TokenType, timeToLive time.Duration, extra map[string]any) (string, time.Time, error) {
	issuedAt := codec.now()
	expiresAt := issuedAt.Add(timeToLive)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   accountID,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Type:  tokenType,
		Extra: extra,
	}

	signedToken, err := jwt.NewWithClaims(codec.method, claims).SignedString(codec.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec_token_sign_failed: %w", err)
	}

	return signedToken, expiresAt, nil
}

/*
Decode verifies the signature and expiry of a token and returns its claims.

Every failure (wrong algorithm, bad signature, malformed structure, expiry,
foreign issuer) collapses into a single InvalidToken error. The cause is kept
for logging only.
*/
func (codec *TokenCodec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return codec.secret, nil
		},
		jwt.WithValidMethods([]string{codec.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(codec.issuer),
		jwt.WithTimeFunc(codec.now),
	)
	if err != nil {
		return nil, apperr.InvalidToken(errInvalidToken).WithCause(err)
	}

	if !token.Valid {
		return nil, apperr.InvalidToken(errInvalidToken)
	}

	return claims, nil
}

// SubjectOf decodes the token and returns its non-empty subject.
func (codec *TokenCodec) SubjectOf(tokenString string) (string, error) {
	claims, err := codec.Decode(tokenString)
	if err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", apperr.InvalidToken(errInvalidToken)
	}

	return claims.Subject, nil
}
