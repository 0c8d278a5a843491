// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer converts between values and the nullable pointers used for
// optional columns and PATCH request fields.
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, returning the zero value when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// NilIfZero maps the zero value to nil so it is stored as SQL NULL.
func NilIfZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// Changed reports whether an optional update carries a value different from current.
func Changed[T comparable](update *T, current T) bool {
	return update != nil && *update != current
}
