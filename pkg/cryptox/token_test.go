package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("produces url-safe tokens of the right entropy", func(t *testing.T) {
		tok, err := GenerateToken(TokenSize256)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		require.Len(t, raw, TokenSize256)
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
		_, err = GenerateToken(-1)
		require.Error(t, err)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 100 {
			tok, err := GenerateToken(TokenSize128)
			require.NoError(t, err)
			_, dup := seen[tok]
			require.False(t, dup, "generated duplicate token")
			seen[tok] = struct{}{}
		}
	})
}

func TestFingerprintToken(t *testing.T) {
	fp1 := FingerprintToken("abc123")
	fp2 := FingerprintToken("abc123")
	fp3 := FingerprintToken("abc124")

	require.Equal(t, fp1, fp2, "fingerprint must be deterministic")
	require.NotEqual(t, fp1, fp3)
	require.Len(t, fp1, 43, "base64url SHA-256 is 43 chars")
}

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey(40)
	require.NoError(t, err)
	require.Len(t, key, 40)
	for _, c := range key {
		require.True(t,
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'),
			"key must be alphanumeric, got %q", c)
	}

	_, err = GenerateKey(0)
	require.Error(t, err)
}
