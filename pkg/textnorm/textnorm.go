// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm canonicalizes user-chosen display text such as player names.
//
// # Usage
//
// [Name] produces the form that is stored and shown. [Key] produces the form
// that uniqueness is enforced on, so composed and decomposed spellings of
// one name collide regardless of case.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name returns s composed to NFC with control characters removed, outer
// whitespace trimmed and inner whitespace runs collapsed to one space.
//
// # Transformation Pipeline
//
// 1. Removes control characters (Cc).
// 2. Composes to NFC (e + combining acute → é).
// 3. Collapses whitespace.
func Name(s string) string {
	chain := transform.Chain(runes.Remove(runes.In(unicode.Cc)), norm.NFC)
	result, _, err := transform.String(chain, s)
	if err != nil {
		result = s
	}

	return strings.Join(strings.Fields(result), " ")
}

// Key returns the case-folded [Name] of s.
func Key(s string) string {
	return cases.Fold().String(Name(s))
}

// Length counts user-perceived characters of the normalized name.
func Length(s string) int {
	return len([]rune(Name(s)))
}
