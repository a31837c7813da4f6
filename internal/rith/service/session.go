package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/cryptox"
	"github.com/rithlabs/rith/pkg/jwtx"
	"github.com/rithlabs/rith/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrMFARequired is returned when the account has TOTP enabled and no
	// (or a wrong) code accompanied the login.
	ErrMFARequired = errors.New("mfa_required")
)

// SessionService handles interactive logins. Sessions are short-lived HS256
// JWTs, distinct from the opaque API bearer tokens: a session identifies a
// person at the consent and registration screens, a token identifies an
// application acting for them.
type SessionService struct {
	Store  store.Store
	Signer *jwtx.Signer
}

// Login verifies email+password (and the TOTP code when the account has MFA
// enabled), records the login audit trail, and returns a signed session
// token. Unknown email, wrong password, and inactive account are
// indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, email, password, otpCode, remoteIP string) (string, domain.User, error) {
	l := slogx.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}

	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		l.Info("login failed: bad password", slog.String("user_id", user.ID))
		return "", domain.User{}, ErrInvalidCredentials
	}

	if !user.Active {
		l.Info("login refused: inactive account", slog.String("user_id", user.ID))
		return "", domain.User{}, ErrInvalidCredentials
	}

	if user.MFAEnabled != nil && user.MFASecret != nil {
		if otpCode == "" || !totp.Validate(otpCode, *user.MFASecret) {
			l.Info("login requires MFA", slog.String("user_id", user.ID))
			return "", domain.User{}, ErrMFARequired
		}
	}

	now := time.Now().UTC()
	if err := s.Store.Users().RecordLogin(ctx, user.ID, now, remoteIP); err != nil {
		return "", domain.User{}, err
	}

	session, err := s.Signer.Sign(user.ID, now)
	if err != nil {
		return "", domain.User{}, err
	}

	l.Info("login succeeded", slog.String("user_id", user.ID))
	return session, user, nil
}

// Resolve verifies a session token and loads its user. An inactive or
// deleted user invalidates outstanding sessions.
func (s *SessionService) Resolve(ctx context.Context, session string) (domain.User, error) {
	claims, err := s.Signer.Verify(session)
	if err != nil {
		return domain.User{}, ErrUnauthenticated
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil || !user.Active {
		return domain.User{}, ErrUnauthenticated
	}
	return user, nil
}
