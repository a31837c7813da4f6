package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/cryptox"
	"github.com/rithlabs/rith/pkg/idx"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

type UserService struct {
	Store store.Store
}

// UserUpdate carries the mutable fields of a user. Nil means "leave as is".
type UserUpdate struct {
	Email    *string
	Password *string
	Active   *bool
}

// Create registers a new user with the named role.
func (s *UserService) Create(ctx context.Context, email, password, roleName string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidRequest
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	role, err := s.Store.Roles().GetRoleByName(ctx, roleName)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Users().AssignRole(ctx, user.ID, role.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// Update applies the non-nil fields of upd to the user.
func (s *UserService) Update(ctx context.Context, id string, upd UserUpdate) (domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if email == "" {
			return domain.User{}, ErrInvalidRequest
		}
		user.Email = email
	}
	if upd.Active != nil {
		user.Active = *upd.Active
	}
	user.UpdatedAt = time.Now().UTC()

	var hash string
	if upd.Password != nil {
		if *upd.Password == "" {
			return domain.User{}, ErrInvalidRequest
		}
		hash, err = cryptox.HashPassword(*upd.Password)
		if err != nil {
			return domain.User{}, err
		}
	}

	// Both writes land or neither does.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUser(ctx, user); err != nil {
			return err
		}
		if hash != "" {
			return tx.Users().UpdatePasswordHash(ctx, id, hash)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return s.Get(ctx, id)
}

// Delete removes the user; the schema cascades their clients, grants, and
// tokens.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.Store.Users().DeleteUser(ctx, id)
}
