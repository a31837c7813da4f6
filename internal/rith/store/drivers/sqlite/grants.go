package sqlite

import (
	"context"
	"time"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/store"
)

type grantsRepo struct {
	q dbtx
}

func (r *grantsRepo) CreateGrant(ctx context.Context, g domain.Grant) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO grants (id, user_id, client_id, code_hash, redirect_uri, scopes,
			expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.ClientID, g.CodeHash, g.RedirectURI,
		joinFields(g.Scopes), g.ExpiresAt, g.CreatedAt,
	)
	return mapConstraint(err)
}

// ConsumeGrant deletes and returns the grant in a single conditional
// statement. Two concurrent redemptions of the same code race on the delete:
// exactly one sees the row, the other gets ErrNotFound.
func (r *grantsRepo) ConsumeGrant(ctx context.Context, clientID, codeHash string, now time.Time) (domain.Grant, error) {
	row := r.q.QueryRowContext(ctx, `
		DELETE FROM grants
		WHERE client_id = ? AND code_hash = ?
		RETURNING id, user_id, client_id, code_hash, redirect_uri, scopes,
			expires_at, created_at`,
		clientID, codeHash)

	var (
		g      domain.Grant
		scopes string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.ClientID, &g.CodeHash, &g.RedirectURI,
		&scopes, &g.ExpiresAt, &g.CreatedAt)
	if err != nil {
		return domain.Grant{}, mapNotFound(err)
	}
	g.Scopes = splitFields(scopes)

	// The row is gone either way; an expired match is reported distinctly so
	// callers can tell a stale code from a bogus one.
	if g.Expired(now) {
		return domain.Grant{}, store.ErrExpired
	}
	return g, nil
}

func (r *grantsRepo) DeleteExpiredGrants(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM grants WHERE expires_at <= ?`, now)
	return err
}
