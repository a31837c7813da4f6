package domain

import "time"

// User is a system account. Roles are attached many-to-many and resolved at
// authorization time; a user with Active=false cannot authenticate or act on
// any resource.
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id encoded
	Active       bool

	// Login audit trail.
	LastLoginAt *time.Time
	LastLoginIP string
	LoginCount  int

	// TOTP multi-factor state. Secret is set at enrollment; Enabled is the
	// timestamp verification succeeded (nil means MFA is off).
	MFASecret  *string
	MFAEnabled *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
