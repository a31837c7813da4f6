package domain

import "time"

// Grant is a one-time authorization code issued at consent and exchanged for
// an access token. There is no status column: redemption deletes the row, and
// expiry is computed from ExpiresAt. Only the SHA-256 fingerprint of the code
// is stored.
type Grant struct {
	ID          string
	UserID      string
	ClientID    string // Client.ID, not the opaque client_id
	CodeHash    string
	RedirectURI string
	Scopes      []string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired reports whether the grant's validity window has passed.
func (g Grant) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
