// Package jwtx issues and verifies the HS256 session tokens used by the
// interactive login subsystem. API access tokens are opaque database-backed
// credentials and never pass through this package.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("jwtx: invalid session token")
)

// SessionClaims are the claims embedded in a login session token.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c SessionClaims) UserID() string { return c.Subject }

// Signer mints and verifies session tokens with a shared HMAC secret.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSigner constructs a Signer. The secret must be at least 32 bytes of
// CSPRNG output; ttl bounds how long a login session stays valid.
func NewSigner(secret []byte, issuer string, ttl time.Duration) (*Signer, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwtx: session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Signer{secret: secret, issuer: issuer, ttl: ttl}, nil
}

// Sign issues a session token for the given user id.
func (s *Signer) Sign(userID string, now time.Time) (string, error) {
	if userID == "" {
		return "", errors.New("jwtx: refusing to sign a session without a subject")
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify parses and validates a session token, returning its claims.
// Expired, malformed, or foreign-issuer tokens all map to ErrInvalidToken.
func (s *Signer) Verify(raw string) (SessionClaims, error) {
	var claims SessionClaims

	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return SessionClaims{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return SessionClaims{}, ErrInvalidToken
	}

	return claims, nil
}

// TTL reports the configured session lifetime.
func (s *Signer) TTL() time.Duration { return s.ttl }
