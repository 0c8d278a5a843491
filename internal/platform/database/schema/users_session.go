// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserSessionTable represents the 'users.session' table
type UserSessionTable struct {
	Table      string
	ID         string
	AccountID  string
	TokenHash  string
	DeviceInfo string
	IPAddress  string
	CreatedAt  string
	ExpiresAt  string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:      "users.session",
	ID:         "id",
	AccountID:  "account_id",
	TokenHash:  "token_hash",
	DeviceInfo: "device_info",
	IPAddress:  "ip_address",
	CreatedAt:  "created_at",
	ExpiresAt:  "expires_at",
}

// Columns returns all standard column names
func (t UserSessionTable) Columns() []string {
	return []string{
		t.ID, t.AccountID, t.TokenHash, t.DeviceInfo, t.IPAddress, t.CreatedAt, t.ExpiresAt,
	}
}
