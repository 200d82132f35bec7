// Package ledger remembers carts and orders created by dev tooling so they
// can be removed from the store later.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Kind string

const (
	KindCart  Kind = "cart"
	KindOrder Kind = "order"
)

type Resource struct {
	ID        int64
	StoreHash string
	Kind      Kind
	RemoteID  string
	CreatedAt time.Time
}

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Record is idempotent per (store, kind, remote id).
func (r *Repository) Record(ctx context.Context, storeHash string, kind Kind, remoteID string) error {
	const q = `
INSERT INTO resources (store_hash, kind, remote_id)
VALUES ($1, $2, $3)
ON CONFLICT (store_hash, kind, remote_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, q, storeHash, string(kind), remoteID); err != nil {
		return fmt.Errorf("record %s %s: %w", kind, remoteID, err)
	}
	return nil
}

// ListPending returns resources not yet cleaned, oldest first.
func (r *Repository) ListPending(ctx context.Context, storeHash string) ([]Resource, error) {
	const q = `
SELECT id, store_hash, kind, remote_id, created_at
FROM resources
WHERE store_hash = $1 AND cleaned_at IS NULL
ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, q, storeHash)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Resource, error) {
		var res Resource
		var kind string
		err := row.Scan(&res.ID, &res.StoreHash, &kind, &res.RemoteID, &res.CreatedAt)
		res.Kind = Kind(kind)
		return res, err
	})
}

func (r *Repository) MarkCleaned(ctx context.Context, id int64) error {
	const q = `UPDATE resources SET cleaned_at = now() WHERE id = $1 AND cleaned_at IS NULL`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

// MarkCleanedRemote marks a resource cleaned by its store-side id. Unknown ids are ignored.
func (r *Repository) MarkCleanedRemote(ctx context.Context, storeHash string, kind Kind, remoteID string) error {
	const q = `
UPDATE resources SET cleaned_at = now()
WHERE store_hash = $1 AND kind = $2 AND remote_id = $3 AND cleaned_at IS NULL`
	_, err := r.db.Exec(ctx, q, storeHash, string(kind), remoteID)
	return err
}
