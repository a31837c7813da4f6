package service

import (
	"context"
	"testing"
	"time"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestIssueRejectsAnonymousUser(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	user := createUser(t, st, "anon@example.com", domain.RoleGeneric)
	client, _ := createClient(t, st, user.ID)

	svc := &TokenService{Store: st}
	_, err := svc.Issue(context.Background(), client, "", []string{"read"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestExchangeHappyPath(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, st, "exchange@example.com", domain.RoleGeneric)
	client, secret := createClient(t, st, user.ID)
	code, grant := issueGrant(t, st, user.ID, client)

	svc := &TokenService{Store: st}
	issued, err := svc.Exchange(ctx, client.ClientID, secret, code)
	require.NoError(t, err)
	require.NotEmpty(t, issued.AccessToken)
	require.NotEmpty(t, issued.RefreshToken)
	require.NotEqual(t, issued.AccessToken, issued.RefreshToken)
	require.Equal(t, "Bearer", issued.Token.TokenType)
	require.Equal(t, user.ID, issued.Token.UserID)
	require.Equal(t, grant.Scopes, issued.Token.Scopes)

	// Only fingerprints hit the database.
	stored, err := st.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(issued.AccessToken))
	require.NoError(t, err)
	require.NotEqual(t, issued.AccessToken, stored.AccessTokenHash)
}

func TestExchangeRejectsBadClientSecret(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, st, "badsecret@example.com", domain.RoleGeneric)
	client, _ := createClient(t, st, user.ID)
	code, _ := issueGrant(t, st, user.ID, client)

	svc := &TokenService{Store: st}

	_, err := svc.Exchange(ctx, client.ClientID, "wrong-secret", code)
	require.ErrorIs(t, err, ErrInvalidClient)

	_, err = svc.Exchange(ctx, "no-such-client", "whatever", code)
	require.ErrorIs(t, err, ErrInvalidClient)
}

func TestExchangeReplayFails(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, st, "replay@example.com", domain.RoleGeneric)
	client, secret := createClient(t, st, user.ID)
	code, _ := issueGrant(t, st, user.ID, client)

	svc := &TokenService{Store: st}

	_, err := svc.Exchange(ctx, client.ClientID, secret, code)
	require.NoError(t, err)

	_, err = svc.Exchange(ctx, client.ClientID, secret, code)
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestExchangeExpiredCode(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	user := createUser(t, st, "stalecode@example.com", domain.RoleGeneric)
	client, secret := createClient(t, st, user.ID)
	code := expireGrant(t, st, user.ID, client)

	svc := &TokenService{Store: st}
	_, err := svc.Exchange(context.Background(), client.ClientID, secret, code)
	require.ErrorIs(t, err, ErrExpiredGrant)
}

func exchange(t *testing.T, st store.Store) (domain.User, domain.Client, IssuedToken) {
	t.Helper()

	user := createUser(t, st, "resolve@example.com", domain.RoleGeneric)
	client, secret := createClient(t, st, user.ID)
	code, _ := issueGrant(t, st, user.ID, client)

	svc := &TokenService{Store: st}
	issued, err := svc.Exchange(context.Background(), client.ClientID, secret, code)
	require.NoError(t, err)
	return user, client, issued
}

func TestResolveByAccessAndRefresh(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	user, _, issued := exchange(t, st)

	svc := &TokenService{Store: st}

	tok, got, err := svc.Resolve(ctx, issued.AccessToken)
	require.NoError(t, err)
	require.Equal(t, issued.Token.ID, tok.ID)
	require.Equal(t, user.ID, got.ID)

	tok, _, err = svc.Resolve(ctx, issued.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, issued.Token.ID, tok.ID)
}

func TestResolveUnknownCredential(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &TokenService{Store: st}

	_, _, err := svc.Resolve(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveExpiredToken(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, st, "decay@example.com", domain.RoleGeneric)
	client, _ := createClient(t, st, user.ID)

	// Issue with a negative TTL so the token is born expired.
	svc := &TokenService{Store: st, TTL: -time.Minute}
	issued, err := svc.Issue(ctx, client, user.ID, nil)
	require.NoError(t, err)

	_, _, err = svc.Resolve(ctx, issued.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveInactiveUser(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	user, _, issued := exchange(t, st)

	inactive := false
	users := &UserService{Store: st}
	_, err := users.Update(ctx, user.ID, UserUpdate{Active: &inactive})
	require.NoError(t, err)

	svc := &TokenService{Store: st}
	_, _, err = svc.Resolve(ctx, issued.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveAfterClientDeleted(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	user, client, issued := exchange(t, st)

	clients := &ClientService{Store: st}
	require.NoError(t, clients.Delete(ctx, user.ID, client.ID))

	svc := &TokenService{Store: st}
	_, _, err := svc.Resolve(ctx, issued.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeIsIdempotent(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	_, _, issued := exchange(t, st)

	svc := &TokenService{Store: st}

	require.NoError(t, svc.Revoke(ctx, issued.AccessToken))

	_, _, err := svc.Resolve(ctx, issued.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Revoking again, or revoking garbage, still succeeds.
	require.NoError(t, svc.Revoke(ctx, issued.AccessToken))
	require.NoError(t, svc.Revoke(ctx, "never-issued"))
}
