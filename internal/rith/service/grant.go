package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/cryptox"
	"github.com/rithlabs/rith/pkg/idx"
	"github.com/rithlabs/rith/pkg/slogx"
)

var (
	ErrInvalidGrant   = errors.New("invalid_grant")
	ErrExpiredGrant   = errors.New("expired_grant")
	ErrInvalidClient  = errors.New("invalid_client")
	ErrInvalidRequest = errors.New("invalid_request")
)

// DefaultGrantTTL is how long an authorization code stays redeemable.
const DefaultGrantTTL = 10 * time.Minute

type GrantService struct {
	Store store.Store
	TTL   time.Duration
}

func (s *GrantService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultGrantTTL
}

// Issue mints a one-time authorization code for (user, client). The plaintext
// code is returned to the caller exactly once; only its fingerprint is stored.
func (s *GrantService) Issue(
	ctx context.Context,
	userID string,
	client domain.Client,
	redirectURI string,
	scopes []string,
) (string, domain.Grant, error) {
	l := slogx.FromContext(ctx)

	redirectURI = strings.TrimSpace(redirectURI)
	if userID == "" || redirectURI == "" {
		return "", domain.Grant{}, ErrInvalidRequest
	}
	if !client.AllowsRedirectURI(redirectURI) {
		l.Info("authorization rejected: unregistered redirect_uri",
			slog.String("client_id", client.ClientID))
		return "", domain.Grant{}, ErrInvalidRequest
	}

	// No requested scopes means the client's registered defaults.
	if len(scopes) == 0 {
		scopes = client.Scopes
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", domain.Grant{}, err
	}

	now := time.Now().UTC()
	grant := domain.Grant{
		ID:          idx.New().String(),
		UserID:      userID,
		ClientID:    client.ID,
		CodeHash:    cryptox.FingerprintToken(code),
		RedirectURI: redirectURI,
		Scopes:      scopes,
		ExpiresAt:   now.Add(s.ttl()),
		CreatedAt:   now,
	}

	if err := s.Store.Grants().CreateGrant(ctx, grant); err != nil {
		return "", domain.Grant{}, err
	}

	l.Info("authorization code issued",
		slog.String("client_id", client.ClientID),
		slog.String("user_id", userID))

	return code, grant, nil
}

// Redeem consumes a code for the given client. Redemption is at-most-once:
// the underlying store operation deletes and returns the grant in a single
// conditional statement, so a replayed or raced code fails with
// ErrInvalidGrant. A matched-but-stale code fails with ErrExpiredGrant and is
// consumed anyway.
func (s *GrantService) Redeem(ctx context.Context, client domain.Client, code string) (domain.Grant, error) {
	return redeemGrant(ctx, s.Store, client, code)
}

// redeemGrant is the transaction-friendly core of Redeem; it accepts any
// Store so token exchange can run it inside the same transaction that
// persists the issued token.
func redeemGrant(ctx context.Context, st store.Store, client domain.Client, code string) (domain.Grant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Grant{}, ErrInvalidGrant
	}

	grant, err := st.Grants().ConsumeGrant(ctx, client.ID, cryptox.FingerprintToken(code), time.Now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Grant{}, ErrInvalidGrant
	case errors.Is(err, store.ErrExpired):
		return domain.Grant{}, ErrExpiredGrant
	case err != nil:
		return domain.Grant{}, err
	}
	return grant, nil
}
