package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "rith-test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Contains(t, parts[3], "m=")
			require.Contains(t, parts[3], "t=")
			require.Contains(t, parts[3], "p=")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "digest should not be empty")
		})
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	password := "samepassword"

	hash1, err := HashPassword(password)
	require.NoError(t, err)
	hash2, err := HashPassword(password)
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")

	require.NoError(t, VerifyPassword(password, hash1))
	require.NoError(t, VerifyPassword(password, hash2))
}

func TestVerifyPasswordWrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
	} {
		require.Error(t, VerifyPassword(wrong, hash))
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	// Malformed stored hashes must fail verification, never panic.
	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"invalid base64 digest", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, VerifyPassword("test-password", tt.invalidHash))
		})
	}
}
