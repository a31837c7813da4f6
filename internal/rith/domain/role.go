package domain

import "time"

// Role names used by the authorization gate. Roles are capability tags, not
// a hierarchy: holding "admin" does not imply "generic".
const (
	RoleGeneric = "generic"
	RoleAdmin   = "admin"
)

type Role struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
