package service

import (
	"context"
	"errors"
	"time"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/idx"
)

// EnsureRoles seeds the built-in roles at startup. Re-running against a
// seeded database is a no-op.
func EnsureRoles(ctx context.Context, st store.Store) error {
	builtin := []domain.Role{
		{Name: domain.RoleGeneric, Description: "Standard account with read access"},
		{Name: domain.RoleAdmin, Description: "Administrative account"},
	}

	for _, role := range builtin {
		if _, err := st.Roles().GetRoleByName(ctx, role.Name); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		now := time.Now().UTC()
		role.ID = idx.New().String()
		role.CreatedAt = now
		role.UpdatedAt = now
		if err := st.Roles().CreateRole(ctx, role); err != nil &&
			!errors.Is(err, store.ErrAlreadyExists) {
			return err
		}
	}
	return nil
}
