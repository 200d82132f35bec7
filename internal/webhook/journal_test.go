package webhook

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigcommerce-sdk/internal/ledger"
	"bigcommerce-sdk/internal/pgtest"
	"bigcommerce-sdk/internal/store"
)

func pgEvent(storeHash, scope, hash, id string) Event {
	ev := Event{Scope: scope, Hash: hash, Producer: "stores/" + storeHash}
	ev.Data.ID = ResourceID(id)
	return ev
}

func countEvents(t *testing.T, pool *pgxpool.Pool, storeHash string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT count(*) FROM webhook_events WHERE store_hash = $1`, storeHash).Scan(&n))
	return n
}

func TestPgJournalRedelivery(t *testing.T) {
	pool := pgtest.Pool(t)
	ctx := context.Background()
	hash := pgtest.StoreHash()

	_, err := store.NewRepository(pool).Upsert(ctx, hash, "tok", "store_cart", "")
	require.NoError(t, err)
	led := ledger.NewRepository(pool)
	require.NoError(t, led.Record(ctx, hash, ledger.KindCart, "c1"))

	j := PgJournal{Pool: pool}
	ev := pgEvent(hash, "store/cart/deleted", "evt-1", "c1")
	applyEvent := func(ctx context.Context, stores Stores, l Ledger) error {
		return apply(ctx, ev, stores, l)
	}

	processed, err := j.Process(ctx, ev, applyEvent)
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = j.Process(ctx, ev, applyEvent)
	require.NoError(t, err)
	assert.False(t, processed)

	pending, err := led.ListPending(ctx, hash)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, 1, countEvents(t, pool, hash))
}

func TestPgJournalRollsBackFailedApply(t *testing.T) {
	pool := pgtest.Pool(t)
	ctx := context.Background()
	hash := pgtest.StoreHash()

	j := PgJournal{Pool: pool}
	ev := pgEvent(hash, "store/cart/deleted", "evt-1", "c1")

	_, err := j.Process(ctx, ev, func(context.Context, Stores, Ledger) error { return errors.New("boom") })
	require.Error(t, err)
	assert.Zero(t, countEvents(t, pool, hash))

	processed, err := j.Process(ctx, ev, func(context.Context, Stores, Ledger) error { return nil })
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestHandlerUninstallRedeliveredAgainstPostgres(t *testing.T) {
	pool := pgtest.Pool(t)
	ctx := context.Background()
	hash := pgtest.StoreHash()

	stores := store.NewRepository(pool)
	_, err := stores.Upsert(ctx, hash, "tok", "store_cart", "owner@example.com")
	require.NoError(t, err)

	h := Handler{Secret: testSecret, Stores: stores, Journal: PgJournal{Pool: pool}}
	body := `{"scope":"store/app/uninstalled","store_id":"1","hash":"evt-u","created_at":1700000000,"producer":"stores/` + hash + `","data":{"type":"store","id":1}}`

	assert.Equal(t, http.StatusOK, deliver(h, testSecret, body).Code)
	_, err = stores.FindByHash(ctx, hash)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, http.StatusOK, deliver(h, testSecret, body).Code)

	// A redelivery racing the uninstall reaches the journal while the store is
	// still active; it must be skipped, not fail.
	_, err = stores.Upsert(ctx, hash, "tok2", "store_cart", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, deliver(h, testSecret, body).Code)
	s, err := stores.FindByHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "tok2", s.AccessToken)
	assert.Equal(t, 1, countEvents(t, pool, hash))
}
