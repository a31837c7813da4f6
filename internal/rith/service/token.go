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

// DefaultTokenTTL matches the legacy system's one-day access token lifetime,
// surfaced to clients as expires_in=86400.
const DefaultTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid_token")

type TokenService struct {
	Store store.Store
	TTL   time.Duration
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTokenTTL
}

// IssuedToken pairs the stored record with the plaintext credentials, which
// exist only in this value and the wire response.
type IssuedToken struct {
	Token        domain.Token
	AccessToken  string
	RefreshToken string
}

// Issue mints a new bearer token for (client, user). An anonymous user is
// refused: every token must be attributable to an account.
func (s *TokenService) Issue(
	ctx context.Context,
	client domain.Client,
	userID string,
	scopes []string,
) (IssuedToken, error) {
	return issueToken(ctx, s.Store, client, userID, scopes, s.ttl())
}

func issueToken(
	ctx context.Context,
	st store.Store,
	client domain.Client,
	userID string,
	scopes []string,
	ttl time.Duration,
) (IssuedToken, error) {
	if userID == "" {
		return IssuedToken{}, ErrInvalidRequest
	}

	access, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return IssuedToken{}, err
	}
	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return IssuedToken{}, err
	}

	now := time.Now().UTC()
	tok := domain.Token{
		ID:               idx.New().String(),
		ClientID:         client.ID,
		UserID:           userID,
		AccessTokenHash:  cryptox.FingerprintToken(access),
		RefreshTokenHash: cryptox.FingerprintToken(refresh),
		TokenType:        "Bearer",
		Scopes:           scopes,
		ExpiresAt:        now.Add(ttl),
		CreatedAt:        now,
	}

	if err := st.Tokens().CreateToken(ctx, tok); err != nil {
		return IssuedToken{}, err
	}

	return IssuedToken{Token: tok, AccessToken: access, RefreshToken: refresh}, nil
}

// Exchange implements the authorization_code token grant: authenticate the
// client, redeem the code, and issue a token. Redemption and issuance share
// one transaction so a failed insert does not burn the grant.
func (s *TokenService) Exchange(
	ctx context.Context,
	clientID, clientSecret, code string,
) (IssuedToken, error) {
	l := slogx.FromContext(ctx)

	clientID = strings.TrimSpace(clientID)
	if clientID == "" || strings.TrimSpace(code) == "" {
		return IssuedToken{}, ErrInvalidRequest
	}

	client, err := s.Store.Clients().GetClientByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return IssuedToken{}, ErrInvalidClient
		}
		return IssuedToken{}, err
	}

	if cryptox.VerifyPassword(clientSecret, client.SecretHash) != nil {
		l.Info("token exchange client authentication failed",
			slog.String("client_id", clientID))
		return IssuedToken{}, ErrInvalidClient
	}

	var issued IssuedToken
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		grant, err := redeemGrant(ctx, tx, client, code)
		if err != nil {
			return err
		}

		issued, err = issueToken(ctx, tx, client, grant.UserID, grant.Scopes, s.ttl())
		return err
	})
	if err != nil {
		return IssuedToken{}, err
	}

	l.Info("access token issued",
		slog.String("client_id", clientID),
		slog.String("user_id", issued.Token.UserID))

	return issued, nil
}

// Resolve looks up a presented credential by fingerprint, matching either the
// access or refresh token in a single query, and checks full validity: the
// token is unexpired, its client still exists, and its user exists and is
// active. Any failure is ErrInvalidToken.
func (s *TokenService) Resolve(ctx context.Context, credential string) (domain.Token, domain.User, error) {
	if credential == "" {
		return domain.Token{}, domain.User{}, ErrInvalidToken
	}

	tok, err := s.Store.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(credential))
	if err != nil {
		return domain.Token{}, domain.User{}, ErrInvalidToken
	}
	if tok.Expired(time.Now()) {
		return domain.Token{}, domain.User{}, ErrInvalidToken
	}

	// The referenced client must still exist; a deleted client revokes its
	// tokens immediately.
	if _, err := s.Store.Clients().GetClientByID(ctx, tok.ClientID); err != nil {
		return domain.Token{}, domain.User{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, tok.UserID)
	if err != nil || !user.Active {
		return domain.Token{}, domain.User{}, ErrInvalidToken
	}

	return tok, user, nil
}

// Revoke deletes the token matching the presented credential. Revoking an
// unknown credential succeeds: the desired end state already holds.
func (s *TokenService) Revoke(ctx context.Context, credential string) error {
	tok, err := s.Store.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(credential))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.Store.Tokens().DeleteToken(ctx, tok.ID)
}
