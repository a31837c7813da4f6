package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// GenerateToken creates a cryptographically secure random token of the
// specified byte length, returned as base64url without padding.
//
// TokenSize128 suits short-lived authorization codes; TokenSize256 is the
// recommended size for bearer and refresh tokens.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error.
// Use this only during initialization or in tests.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// Stored credentials are kept as fingerprints so a database leak does not
// leak usable tokens, while lookups remain a single indexed equality check.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateKey produces an alphanumeric credential of the given length from a
// CSPRNG. Used for client_id/client_secret pairs where the value travels in
// URLs and config files and should stay free of URL-significant characters.
func GenerateKey(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	if length <= 0 {
		return "", fmt.Errorf("key length must be positive, got %d", length)
	}
	key := make([]byte, length)
	for i := range key {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random key: %w", err)
		}
		key[i] = charset[n.Int64()]
	}
	return string(key), nil
}

// MustGenerateKey is like GenerateKey but panics on error.
func MustGenerateKey(length int) string {
	key, err := GenerateKey(length)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate key: %v", err))
	}
	return key
}
