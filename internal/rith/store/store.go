package store

import (
	"context"
	"errors"
	"time"

	"github.com/rithlabs/rith/internal/rith/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrExpired is returned by ConsumeGrant when the matched grant existed
	// but its validity window had passed. The row is consumed either way.
	ErrExpired = errors.New("store: expired")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. Sub-repositories keep concerns tidy and make it
// harder to accidentally nest transactions.
type Store interface {
	Users() Users
	Roles() Roles
	Clients() Clients
	Grants() Grants
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back if fn returns an
	// error and committing otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during interactive login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdateUser mutates email/active and bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2id) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// RecordLogin updates the login audit fields in one statement.
	RecordLogin(ctx context.Context, userID string, at time.Time, ip string) error

	// UpdateMFASecret sets the pending TOTP secret for a user.
	UpdateMFASecret(ctx context.Context, userID string, secret string) error

	// EnableMFA marks MFA as verified for a user (sets mfa_enabled timestamp).
	EnableMFA(ctx context.Context, userID string, at time.Time) error

	// DeleteUser cascades to grants and tokens (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// GetUserRoles resolves the user's roles through the join table.
	GetUserRoles(ctx context.Context, userID string) ([]domain.Role, error)

	// AssignRole attaches a role to a user; assigning twice is a no-op.
	AssignRole(ctx context.Context, userID, roleID string) error

	// IsEmpty returns true if there are no users (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	// GetRoleByName fetches a role by its unique name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns all roles in the system.
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a new role (id is ULID).
	CreateRole(ctx context.Context, r domain.Role) error
}

type Clients interface {
	// GetClientByID fetches a client by its internal id.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// GetClientByClientID fetches a client by its opaque client_id.
	GetClientByClientID(ctx context.Context, clientID string) (domain.Client, error)

	// CreateClient inserts a new client.
	CreateClient(ctx context.Context, c domain.Client) error

	// ListClientsByUser returns the clients owned by a user.
	ListClientsByUser(ctx context.Context, userID string) ([]domain.Client, error)

	// DeleteClient cascades to grants and tokens (per schema).
	DeleteClient(ctx context.Context, id string) error
}

type Grants interface {
	// CreateGrant stores a freshly minted authorization code.
	CreateGrant(ctx context.Context, g domain.Grant) error

	// ConsumeGrant atomically deletes the grant matching (clientID, codeHash)
	// and returns the deleted row. This is a single conditional delete, not
	// check-then-delete: of two concurrent redemptions exactly one gets the
	// row and the other gets ErrNotFound. A consumed-but-expired grant
	// returns ErrExpired.
	ConsumeGrant(ctx context.Context, clientID, codeHash string, now time.Time) (domain.Grant, error)

	// DeleteExpiredGrants is housekeeping.
	DeleteExpiredGrants(ctx context.Context, now time.Time) error
}

type Tokens interface {
	// CreateToken stores a new token record.
	CreateToken(ctx context.Context, t domain.Token) error

	// GetTokenByHash resolves a token whose access OR refresh fingerprint
	// matches hash, in a single lookup.
	GetTokenByHash(ctx context.Context, hash string) (domain.Token, error)

	// DeleteToken removes a token by id; deleting an absent token is not an
	// error (revocation is idempotent).
	DeleteToken(ctx context.Context, id string) error

	// DeleteExpiredTokens is housekeeping.
	DeleteExpiredTokens(ctx context.Context, now time.Time) error
}
