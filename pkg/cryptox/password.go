package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// HashPassword generates a PHC-format Argon2id hash string including salt and parameters.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	digest := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash. A malformed stored hash verifies exactly like a wrong password: the
// caller gets a non-nil error either way and must not distinguish the two.
func VerifyPassword(password, encodedHash string) error {
	// Expected structure: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, hash]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - digest lengths are small
	)

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return errors.New("password does not match")
}
