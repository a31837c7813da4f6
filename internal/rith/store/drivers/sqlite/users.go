package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rithlabs/rith/internal/rith/domain"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, email, password_hash, active, last_login_at, last_login_ip,
	login_count, mfa_secret, mfa_enabled, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var (
		u           domain.User
		active      int
		lastLoginAt sql.NullTime
		mfaSecret   sql.NullString
		mfaEnabled  sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &active, &lastLoginAt, &u.LastLoginIP,
		&u.LoginCount, &mfaSecret, &mfaEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.Active = active != 0
	u.LastLoginAt = mapNullTimePtr(lastLoginAt)
	u.MFASecret = mapNullStringPtr(mfaSecret)
	u.MFAEnabled = mapNullTimePtr(mfaEnabled)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, active, last_login_at, last_login_ip,
			login_count, mfa_secret, mfa_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, boolToInt(u.Active),
		mapOptionalTime(u.LastLoginAt), u.LastLoginIP, u.LoginCount,
		mapOptionalString(u.MFASecret), mapOptionalTime(u.MFAEnabled),
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET email = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, boolToInt(u.Active), u.UpdatedAt, u.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return mustAffect(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *usersRepo) RecordLogin(ctx context.Context, userID string, at time.Time, ip string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET last_login_at = ?, last_login_ip = ?, login_count = login_count + 1, updated_at = ?
		WHERE id = ?`,
		at, ip, at, userID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID string, secret string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET mfa_secret = ?, mfa_enabled = NULL, updated_at = ? WHERE id = ?`,
		mapStringNull(secret), time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET mfa_enabled = ?, updated_at = ? WHERE id = ?`,
		at, at, userID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

func (r *usersRepo) GetUserRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.name, r.description, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.name`, userID)
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

func (r *usersRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)
		ON CONFLICT (user_id, role_id) DO NOTHING`,
		userID, roleID,
	)
	return err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	row := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
