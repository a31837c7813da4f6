package domain

import "time"

// Token is a stored bearer credential. The opaque access and refresh token
// strings are never persisted; only their SHA-256 fingerprints are, so a
// database leak does not yield usable credentials.
type Token struct {
	ID               string
	ClientID         string // Client.ID
	UserID           string
	AccessTokenHash  string
	RefreshTokenHash string // empty when no refresh token was issued
	TokenType        string // "Bearer"
	Scopes           []string
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

// Expired reports whether the token's validity window has passed. Full
// validity additionally requires the referenced client and an active user to
// still exist; that check needs store access and lives in the token service.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenResponse is the standard OAuth2 token endpoint payload (RFC 6749 §5.1).
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
