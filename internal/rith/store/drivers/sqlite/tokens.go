package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rithlabs/rith/internal/rith/domain"
)

type tokensRepo struct {
	q dbtx
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tokens (id, client_id, user_id, access_token_hash, refresh_token_hash,
			token_type, scopes, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ClientID, t.UserID, t.AccessTokenHash,
		mapStringNull(t.RefreshTokenHash), t.TokenType, joinFields(t.Scopes),
		t.ExpiresAt, t.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *tokensRepo) GetTokenByHash(ctx context.Context, hash string) (domain.Token, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, client_id, user_id, access_token_hash, refresh_token_hash,
			token_type, scopes, expires_at, created_at
		FROM tokens
		WHERE access_token_hash = ? OR refresh_token_hash = ?`,
		hash, hash)

	var (
		t           domain.Token
		refreshHash sql.NullString
		scopes      string
	)
	err := row.Scan(&t.ID, &t.ClientID, &t.UserID, &t.AccessTokenHash, &refreshHash,
		&t.TokenType, &scopes, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	t.RefreshTokenHash = mapNullString(refreshHash)
	t.Scopes = splitFields(scopes)
	return t, nil
}

func (r *tokensRepo) DeleteToken(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM tokens WHERE id = ?`, id)
	return err
}

func (r *tokensRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at <= ?`, now)
	return err
}
