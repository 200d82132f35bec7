package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("store not found")

// DB is satisfied by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

const columns = `id, store_hash, access_token, scope, owner_email, status, installed_at`

func scan(row pgx.Row) (*Store, error) {
	s := &Store{}
	if err := row.Scan(&s.ID, &s.Hash, &s.AccessToken, &s.Scope, &s.OwnerEmail, &s.Status, &s.InstalledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Upsert records an install. Reinstalling refreshes the token and reactivates the store.
func (r *Repository) Upsert(ctx context.Context, hash, accessToken, scope, ownerEmail string) (*Store, error) {
	const q = `
INSERT INTO stores (store_hash, access_token, scope, owner_email, status)
VALUES ($1, $2, $3, $4, 'active')
ON CONFLICT (store_hash) DO UPDATE SET
  access_token = EXCLUDED.access_token,
  scope = EXCLUDED.scope,
  owner_email = CASE WHEN EXCLUDED.owner_email = '' THEN stores.owner_email ELSE EXCLUDED.owner_email END,
  status = 'active',
  updated_at = now()
RETURNING ` + columns
	return scan(r.db.QueryRow(ctx, q, hash, accessToken, scope, ownerEmail))
}

// FindByHash returns only active stores.
func (r *Repository) FindByHash(ctx context.Context, hash string) (*Store, error) {
	const q = `SELECT ` + columns + ` FROM stores WHERE store_hash = $1 AND status = 'active'`
	return scan(r.db.QueryRow(ctx, q, hash))
}

// DeleteByHash marks the store uninstalled and drops its token.
func (r *Repository) DeleteByHash(ctx context.Context, hash string) error {
	const q = `
UPDATE stores SET status = 'uninstalled', access_token = '', updated_at = now()
WHERE store_hash = $1 AND status = 'active'`
	tag, err := r.db.Exec(ctx, q, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
