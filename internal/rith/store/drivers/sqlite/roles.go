package sqlite

import (
	"context"

	"github.com/rithlabs/rith/internal/rith/domain"
)

type rolesRepo struct {
	q dbtx
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM roles WHERE name = ?`, name)

	var role domain.Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description,
			&role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO roles (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		role.ID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt,
	)
	return mapConstraint(err)
}
