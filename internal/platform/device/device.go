// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package device turns a raw User-Agent header into the short descriptor
// stored on sessions, e.g. "Chrome 126.0.0.0 on Windows 10 (mobile)".
package device

import (
	"strings"
	"unicode/utf8"

	"github.com/mssola/user_agent"
)

// MaxDescriptorLength bounds what is persisted in the session's device_info column.
const MaxDescriptorLength = 255

// Unknown is returned when nothing useful can be read from the header.
const Unknown = "Unknown Device"

// Describe builds a human-readable descriptor from a User-Agent string.
func Describe(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return Unknown
	}

	agent := user_agent.New(userAgent)

	var builder strings.Builder

	name, version := agent.Browser()
	if name != "" {
		builder.WriteString(name)
		if version != "" {
			builder.WriteString(" " + version)
		}
	}

	if os := agent.OS(); os != "" {
		if builder.Len() > 0 {
			builder.WriteString(" on ")
		}
		builder.WriteString(os)
	}

	switch {
	case agent.Bot():
		builder.WriteString(" (bot)")
	case agent.Mobile():
		builder.WriteString(" (mobile)")
	}

	descriptor := strings.TrimSpace(builder.String())
	if descriptor == "" {
		return Truncate(userAgent)
	}

	return Truncate(descriptor)
}

// Truncate caps a client-supplied descriptor at [MaxDescriptorLength] runes.
// Invalid UTF-8 sequences are replaced with U+FFFD.
func Truncate(descriptor string) string {
	descriptor = strings.ToValidUTF8(descriptor, "\uFFFD")
	if utf8.RuneCountInString(descriptor) <= MaxDescriptorLength {
		return descriptor
	}
	return string([]rune(descriptor)[:MaxDescriptorLength])
}
