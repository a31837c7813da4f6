package sqlite

import (
	"context"
	"database/sql"

	"github.com/rithlabs/rith/internal/rith/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Users() store.Users     { return &usersRepo{q: t.tx} }
func (t *txStore) Roles() store.Roles     { return &rolesRepo{q: t.tx} }
func (t *txStore) Clients() store.Clients { return &clientsRepo{q: t.tx} }
func (t *txStore) Grants() store.Grants   { return &grantsRepo{q: t.tx} }
func (t *txStore) Tokens() store.Tokens   { return &tokensRepo{q: t.tx} }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return sql.ErrTxDone }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Close() error { return t.tx.Rollback() }
