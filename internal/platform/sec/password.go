// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
)

// # Password Policy

const (
	// PasswordMinLength is counted in characters, not bytes.
	PasswordMinLength = 8

	// PasswordSpecialChars is the fixed set a password must draw at least one symbol from.
	PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

	fieldPassword = "password"
)

var (
	errPasswordTooShort = fmt.Sprintf("Password must be at least %d characters long", PasswordMinLength)
	errPasswordNoSymbol = "Password must contain at least one special character (" + PasswordSpecialChars + ")"
)

// ValidatePassword checks the password policy and reports only the first violated rule.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return policyError(errPasswordTooShort)
	}

	if !strings.ContainsAny(password, PasswordSpecialChars) {
		return policyError(errPasswordNoSymbol)
	}

	return nil
}

func policyError(message string) *apperr.AppError {
	return apperr.ValidationError(message, apperr.FieldError{Field: fieldPassword, Message: message})
}

// # Hashing

// PasswordHasher hashes and verifies passwords with bcrypt at a fixed cost.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher builds a hasher. Costs outside bcrypt's range fall back to [bcrypt.DefaultCost].
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted one-way hash of the password.
func (hasher *PasswordHasher) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), hasher.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", policyError("Password must be at most 72 bytes long")
		}
		return "", fmt.Errorf("sec_password_hash_failed: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares in constant time. A malformed or empty hash is a mismatch.
func (hasher *PasswordHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
