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

// Credential lengths match the legacy registration flow.
const (
	clientKeyLength    = 40
	clientSecretLength = 50
)

type ClientService struct {
	Store store.Store
}

// RegisteredClient carries the one-time plaintext secret back to the
// registrant. The secret is never recoverable afterwards.
type RegisteredClient struct {
	Client       domain.Client
	ClientSecret string
}

// Register creates a client application owned by userID. The client_id and
// client_secret are server-generated; only the secret's argon2id hash is
// stored.
func (s *ClientService) Register(
	ctx context.Context,
	userID string,
	redirectURIs []string,
	scopes []string,
) (RegisteredClient, error) {
	l := slogx.FromContext(ctx)

	if userID == "" {
		return RegisteredClient{}, ErrInvalidRequest
	}
	for _, uri := range redirectURIs {
		if strings.TrimSpace(uri) == "" {
			return RegisteredClient{}, ErrInvalidRequest
		}
	}

	clientKey, err := cryptox.GenerateKey(clientKeyLength)
	if err != nil {
		return RegisteredClient{}, err
	}
	secret, err := cryptox.GenerateKey(clientSecretLength)
	if err != nil {
		return RegisteredClient{}, err
	}
	secretHash, err := cryptox.HashPassword(secret)
	if err != nil {
		return RegisteredClient{}, err
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:           idx.New().String(),
		ClientID:     clientKey,
		SecretHash:   secretHash,
		UserID:       userID,
		RedirectURIs: redirectURIs,
		Scopes:       scopes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		return RegisteredClient{}, err
	}

	l.Info("client registered",
		slog.String("client_id", client.ClientID),
		slog.String("user_id", userID))

	return RegisteredClient{Client: client, ClientSecret: secret}, nil
}

// List returns the clients owned by userID.
func (s *ClientService) List(ctx context.Context, userID string) ([]domain.Client, error) {
	return s.Store.Clients().ListClientsByUser(ctx, userID)
}

// Delete removes a client owned by userID. Deleting another user's client is
// ErrForbidden; the cascade removes its grants and tokens.
func (s *ClientService) Delete(ctx context.Context, userID, id string) error {
	client, err := s.Store.Clients().GetClientByID(ctx, id)
	if err != nil {
		return err
	}
	if client.UserID != userID {
		return ErrForbidden
	}
	return s.Store.Clients().DeleteClient(ctx, id)
}

// Lookup resolves a client by its opaque client_id, mapping absence to
// ErrInvalidClient.
func (s *ClientService) Lookup(ctx context.Context, clientID string) (domain.Client, error) {
	client, err := s.Store.Clients().GetClientByClientID(ctx, strings.TrimSpace(clientID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}
	return client, nil
}
