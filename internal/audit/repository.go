// Package audit keeps an append-only trail of store lifecycle actions.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	ActionInstalled   = "store.installed"
	ActionLoaded      = "store.loaded"
	ActionUninstalled = "store.uninstalled"
)

// DB is satisfied by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Insert appends an entry. A nil metadata is stored as NULL.
func (r *Repository) Insert(ctx context.Context, storeHash, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("audit metadata: %w", err)
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (store_hash, action, actor, metadata)
VALUES ($1, $2, $3, CAST($4 AS jsonb))
`
	_, err := r.db.Exec(ctx, q, storeHash, action, actor, s)
	return err
}
