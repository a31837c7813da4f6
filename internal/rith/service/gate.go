package service

import (
	"context"
	"errors"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/slogx"
)

var (
	// ErrUnauthenticated means no usable credential was presented. Mapped to
	// HTTP 403, matching the legacy wire contract.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnauthorized means an authenticated caller lacks the admin role for
	// an admin-only operation. Mapped to HTTP 401 (legacy inversion kept so
	// existing clients keep working).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller's identity does not satisfy the
	// operation's ownership rule. Mapped to HTTP 403.
	ErrForbidden = errors.New("forbidden")
)

// Identity is the authenticated principal attached to a request after the
// gate admits it.
type Identity struct {
	User  domain.User
	Token domain.Token
	Roles []domain.Role
}

// HasRole reports whether the identity holds the named role. Roles are flat
// capability tags: admin does not imply generic.
func (id Identity) HasRole(name string) bool {
	for _, r := range id.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Gate is the single authorization choke point. Every protected operation
// authenticates through it and then applies exactly one of the Require rules.
type Gate struct {
	Tokens *TokenService
	Store  store.Store
}

// Authenticate resolves a bearer credential to an Identity. It fails closed:
// a missing credential, unknown fingerprint, expired token, missing client,
// or inactive user all collapse to ErrUnauthenticated with no distinguishing
// detail for the caller.
func (g *Gate) Authenticate(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrUnauthenticated
	}

	tok, user, err := g.Tokens.Resolve(ctx, credential)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}

	roles, err := g.Store.Users().GetUserRoles(ctx, user.ID)
	if err != nil {
		slogx.FromContext(ctx).Error("role lookup failed during authentication",
			"user_id", user.ID, "error", err)
		return Identity{}, ErrUnauthenticated
	}

	return Identity{User: user, Token: tok, Roles: roles}, nil
}

// RequireAdmin admits only identities holding the admin role. A caller
// holding generic but not admin gets ErrUnauthorized; a caller with no
// recognised role at all gets ErrForbidden.
func (g *Gate) RequireAdmin(id Identity) error {
	if id.HasRole(domain.RoleAdmin) {
		return nil
	}
	if id.HasRole(domain.RoleGeneric) {
		return ErrUnauthorized
	}
	return ErrForbidden
}

// RequireSelfOrAdmin admits the target user acting on themselves, or any
// admin.
func (g *Gate) RequireSelfOrAdmin(id Identity, targetUserID string) error {
	if id.User.ID == targetUserID {
		return nil
	}
	if id.HasRole(domain.RoleAdmin) {
		return nil
	}
	return ErrForbidden
}

// RequireRead admits any authenticated identity. Authentication already
// guarantees an active user, so there is nothing further to check.
func (g *Gate) RequireRead(id Identity) error {
	return nil
}
