package sqlite

import (
	"context"

	"github.com/rithlabs/rith/internal/rith/domain"
)

type clientsRepo struct {
	q dbtx
}

const clientColumns = `id, client_id, secret_hash, user_id, redirect_uris, scopes,
	created_at, updated_at`

func scanClient(row interface{ Scan(dest ...any) error }) (domain.Client, error) {
	var (
		c            domain.Client
		redirectURIs string
		scopes       string
	)
	err := row.Scan(&c.ID, &c.ClientID, &c.SecretHash, &c.UserID,
		&redirectURIs, &scopes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Client{}, err
	}
	c.RedirectURIs = splitFields(redirectURIs)
	c.Scopes = splitFields(scopes)
	return c, nil
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) GetClientByClientID(ctx context.Context, clientID string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE client_id = ?`, clientID)
	c, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO clients (id, client_id, secret_hash, user_id, redirect_uris, scopes,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ClientID, c.SecretHash, c.UserID,
		joinFields(c.RedirectURIs), joinFields(c.Scopes),
		c.CreatedAt, c.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *clientsRepo) ListClientsByUser(ctx context.Context, userID string) ([]domain.Client, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}
