// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Flow Names

// Flow labels used for metrics and logs.
const (
	FlowRegister    = "register"
	FlowLogin       = "login"
	FlowRefresh     = "refresh"
	FlowLogout      = "logout"
	FlowLogoutAll   = "logout_all"
	FlowGoogleLogin = "google_login"
	FlowResolve     = "resolve"
)

// # Client-Facing Messages

const (
	msgAccountExists      = "User with this email already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgAccountDeactivated = "Account is deactivated"
	msgInvalidToken       = "Invalid token"
	msgInvalidTokenType   = "Invalid token type"
	msgAccountNotFound    = "User not found"
	msgGoogleMissingClaim = "Invalid Google token: missing email or user ID"
	msgGoogleLinkConflict = "This account is already linked to a different Google account"
)

// # Field Identifiers

const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRefreshToken = "refresh_token"
	FieldIDToken      = "id_token"
	FieldDeviceInfo   = "device_info"
)

// maxEmailLength matches the users.account.email column.
const maxEmailLength = 255
