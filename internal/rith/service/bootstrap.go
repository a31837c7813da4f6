package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapService creates the first admin account. It only works while the
// user table is empty; after that the normal admin-gated user endpoints take
// over.
type BootstrapService struct {
	Store store.Store
	Users *UserService
	Token string // optional shared secret required to bootstrap
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

func (s *BootstrapService) Bootstrap(ctx context.Context, token, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return domain.User{}, err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.User{}, ErrBootstrapAlready
	}

	if s.Token != "" && token != s.Token {
		l.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	user, err := s.Users.Create(ctx, email, password, domain.RoleAdmin)
	if err != nil {
		return domain.User{}, err
	}

	l.Info("system bootstrapped", slog.String("admin_id", user.ID))
	return user, nil
}
