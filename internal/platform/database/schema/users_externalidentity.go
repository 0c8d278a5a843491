// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserExternalIdentityTable represents the 'users.external_identity' table
type UserExternalIdentityTable struct {
	Table          string
	ID             string
	AccountID      string
	Provider       string
	ProviderUserID string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      string
	ProviderData   string
	CreatedAt      string
	UpdatedAt      string
}

// UserExternalIdentity is the schema definition for users.external_identity
var UserExternalIdentity = UserExternalIdentityTable{
	Table:          "users.external_identity",
	ID:             "id",
	AccountID:      "account_id",
	Provider:       "provider",
	ProviderUserID: "provider_user_id",
	AccessToken:    "access_token",
	RefreshToken:   "refresh_token",
	ExpiresAt:      "expires_at",
	ProviderData:   "provider_data",
	CreatedAt:      "created_at",
	UpdatedAt:      "updated_at",
}

// Columns returns all standard column names
func (t UserExternalIdentityTable) Columns() []string {
	return []string{
		t.ID, t.AccountID, t.Provider, t.ProviderUserID, t.AccessToken,
		t.RefreshToken, t.ExpiresAt, t.ProviderData, t.CreatedAt, t.UpdatedAt,
	}
}
