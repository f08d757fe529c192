package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type values carried in the "type" claim. Refresh endpoints must not
// accept access tokens and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Default token TTLs. API keys override these (trial keys run for a year,
// permanent keys never expire).
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims are the token claims shared by access tokens, refresh tokens and
// API keys. Roles are minted into the token so the role gate never has to
// hit the database per request.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType distinguishes access tokens from refresh tokens.
	TokenType string `json:"type,omitempty"`

	// Roles granted to the subject at mint time, e.g. ["basic"].
	Roles []string `json:"roles,omitempty"`

	// Username for the authenticated user.
	Username string `json:"username,omitempty"`
}

// NewTokenClaims builds minimally-correct claims. A zero ttl means the token
// never expires (permanent API key) and no "exp" claim is set.
func NewTokenClaims(
	subject, username, tokenType string,
	roles []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	rc := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        NewJTI(),
	}
	if ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return Claims{
		RegisteredClaims: rc,
		TokenType:        tokenType,
		Roles:            roles,
		Username:         username,
	}
}

// NewJTI returns a unique identifier for the "jti" claim. The ledger keys
// its records on this value, so collisions surface as integrity violations.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf). Tokens without an exp claim never expire.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
