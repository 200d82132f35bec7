package webhook

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bigcommerce-sdk/internal/ledger"
	"bigcommerce-sdk/internal/store"
	"bigcommerce-sdk/pkg/db"
)

// Apply runs an event's side effects against stores and the ledger.
type Apply func(ctx context.Context, stores Stores, led Ledger) error

// Journal makes deliveries idempotent: Process runs apply at most once per
// (store, event hash) and reports false for a repeat delivery.
type Journal interface {
	Process(ctx context.Context, ev Event, apply Apply) (bool, error)
}

// PgJournal records events in webhook_events and applies them in the same transaction.
type PgJournal struct {
	Pool *pgxpool.Pool
}

func (j PgJournal) Process(ctx context.Context, ev Event, apply Apply) (bool, error) {
	processed := false
	err := db.WithTx(ctx, j.Pool, func(tx pgx.Tx) error {
		// DO NOTHING keeps the transaction usable on a repeat delivery.
		const q = `
INSERT INTO webhook_events (store_hash, scope, event_hash, resource_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (store_hash, event_hash) DO NOTHING
`
		tag, err := tx.Exec(ctx, q, ev.StoreHash(), ev.Scope, ev.Hash, ev.Data.ID.String())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		processed = true
		return apply(ctx, store.NewRepository(tx), ledger.NewRepository(tx))
	})
	if err != nil {
		return false, err
	}
	return processed, nil
}
