package domain

import "time"

// Token types recorded in the ledger. API keys are long-lived access tokens.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPair is what the login and refresh endpoints return.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // seconds until access token expiry
}

// TokenRecord is the ledger entry for an issued token. Every token the
// service mints is recorded here; verification consults the ledger so a
// token unknown to it is treated as revoked.
type TokenRecord struct {
	ID        string
	JTI       string // unique token identifier embedded in the JWT
	TokenType string
	UserID    string
	Revoked   bool
	ExpiresAt *time.Time // nil for permanent API keys
	CreatedAt time.Time
}

// Active reports whether the record still authorises its token at the given
// instant.
func (t TokenRecord) Active(now time.Time) bool {
	if t.Revoked {
		return false
	}
	if t.ExpiresAt != nil && !t.ExpiresAt.After(now) {
		return false
	}
	return true
}
