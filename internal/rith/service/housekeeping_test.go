package service

import (
	"context"
	"testing"
	"time"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/cryptox"
	"github.com/rithlabs/rith/pkg/idx"
	"github.com/rithlabs/rith/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweepsExpiredRecords(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, st, "sweeper@example.com", domain.RoleGeneric)
	client, _ := createClient(t, st, user.ID)

	staleCode := expireGrant(t, st, user.ID, client)
	freshCode, _ := issueGrant(t, st, user.ID, client)

	staleAccess := cryptox.MustGenerateToken(cryptox.TokenSize256)
	require.NoError(t, st.Tokens().CreateToken(ctx, domain.Token{
		ID:              idx.New().String(),
		ClientID:        client.ID,
		UserID:          user.ID,
		AccessTokenHash: cryptox.FingerprintToken(staleAccess),
		TokenType:       "Bearer",
		ExpiresAt:       time.Now().Add(-time.Minute),
		CreatedAt:       time.Now().Add(-25 * time.Hour),
	}))

	svc := NewHousekeepingService(st, slogx.Discard(), time.Hour)
	svc.Start()
	svc.Stop() // Start runs one sweep before ticking; Stop waits for it.

	grants := &GrantService{Store: st}
	_, err := grants.Redeem(ctx, client, staleCode)
	require.ErrorIs(t, err, ErrInvalidGrant)

	_, err = grants.Redeem(ctx, client, freshCode)
	require.NoError(t, err)

	_, err = st.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(staleAccess))
	require.ErrorIs(t, err, store.ErrNotFound)
}
