// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table         string
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified string
	IsActive      string
	LastLoginAt   string
	CreatedAt     string
	UpdatedAt     string

	// UniqueEmail guards against concurrent registrations of one address.
	UniqueEmail string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:         "users.account",
	ID:            "id",
	Email:         "email",
	PasswordHash:  "password_hash",
	EmailVerified: "email_verified",
	IsActive:      "is_active",
	LastLoginAt:   "last_login_at",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
	UniqueEmail:   "uq_account_email",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.PasswordHash, t.EmailVerified, t.IsActive,
		t.LastLoginAt, t.CreatedAt, t.UpdatedAt,
	}
}
