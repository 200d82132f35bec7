package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigcommerce-sdk/internal/ledger"
	"bigcommerce-sdk/internal/store"
)

type memStores struct {
	mu     sync.Mutex
	stores map[string]*store.Store
	err    error
}

func (m *memStores) FindByHash(_ context.Context, hash string) (*store.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.stores[hash]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (m *memStores) DeleteByHash(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stores[hash]; !ok {
		return store.ErrNotFound
	}
	delete(m.stores, hash)
	return nil
}

type cleaned struct {
	hash     string
	kind     ledger.Kind
	remoteID string
}

type memLedger struct {
	marks []cleaned
}

func (m *memLedger) MarkCleanedRemote(_ context.Context, storeHash string, kind ledger.Kind, remoteID string) error {
	m.marks = append(m.marks, cleaned{storeHash, kind, remoteID})
	return nil
}

// memJournal dedups on (store, hash) the way the webhook_events unique key does.
type memJournal struct {
	seen   map[string]bool
	stores Stores
	ledger Ledger
	err    error
}

func (j *memJournal) Process(ctx context.Context, ev Event, apply Apply) (bool, error) {
	if j.err != nil {
		return false, j.err
	}
	key := ev.StoreHash() + "/" + ev.Hash
	if j.seen[key] {
		return false, nil
	}
	if err := apply(ctx, j.stores, j.ledger); err != nil {
		return false, err
	}
	j.seen[key] = true
	return true, nil
}

const testSecret = "hook-secret"

type harness struct {
	stores  *memStores
	ledger  *memLedger
	journal *memJournal
	handler Handler
}

func newHarness() *harness {
	st := &memStores{stores: map[string]*store.Store{
		"abc123": {ID: 1, Hash: "abc123", AccessToken: "tok", Status: store.StatusActive},
	}}
	led := &memLedger{}
	j := &memJournal{seen: map[string]bool{}, stores: st, ledger: led}
	return &harness{
		stores:  st,
		ledger:  led,
		journal: j,
		handler: Handler{Secret: testSecret, Stores: st, Journal: j},
	}
}

func deliver(h Handler, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(HeaderSecret, secret)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func eventBody(t *testing.T, scope, hash string, data map[string]any) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"scope":      scope,
		"store_id":   "1001",
		"hash":       hash,
		"created_at": 1700000000,
		"producer":   "stores/abc123",
		"data":       data,
	})
	require.NoError(t, err)
	return string(b)
}

func TestHandlerRejectsBadSecret(t *testing.T) {
	h := newHarness()
	body := eventBody(t, "store/cart/deleted", "e1", map[string]any{"type": "cart", "id": "c1"})

	assert.Equal(t, http.StatusUnauthorized, deliver(h.handler, "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, deliver(h.handler, "wrong", body).Code)

	h.handler.Secret = ""
	assert.Equal(t, http.StatusUnauthorized, deliver(h.handler, "anything", body).Code)
	assert.Empty(t, h.ledger.marks)
}

func TestHandlerRejectsBadPayload(t *testing.T) {
	h := newHarness()
	for _, body := range []string{
		`not json`,
		`{"scope":"","producer":"stores/abc123","hash":"x"}`,
		`{"scope":"store/cart/deleted","producer":"","hash":"x"}`,
		`{"scope":"store/cart/deleted","producer":"stores/abc123"}`,
		`{"scope":"store/cart/deleted","producer":"stores/abc123","hash":"x","data":{"id":true}}`,
	} {
		assert.Equal(t, http.StatusBadRequest, deliver(h.handler, testSecret, body).Code, body)
	}
}

func TestHandlerUnknownStoreAcknowledged(t *testing.T) {
	h := newHarness()
	body := strings.Replace(eventBody(t, "store/cart/deleted", "e1", map[string]any{"id": "c1"}), "stores/abc123", "stores/zzz", 1)

	rec := deliver(h.handler, testSecret, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.journal.seen)
}

func TestHandlerStoreLookupError(t *testing.T) {
	h := newHarness()
	h.stores.err = errors.New("db down")

	rec := deliver(h.handler, testSecret, eventBody(t, "store/cart/deleted", "e1", map[string]any{"id": "c1"}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlerCartDeleted(t *testing.T) {
	h := newHarness()
	body := eventBody(t, "store/cart/deleted", "e1", map[string]any{"type": "cart", "id": "c1"})

	require.Equal(t, http.StatusOK, deliver(h.handler, testSecret, body).Code)
	require.Equal(t, http.StatusOK, deliver(h.handler, testSecret, body).Code)

	assert.Equal(t, []cleaned{{"abc123", ledger.KindCart, "c1"}}, h.ledger.marks)
}

func TestHandlerOrderCancelled(t *testing.T) {
	h := newHarness()

	shipped := eventBody(t, "store/order/statusUpdated", "e1", map[string]any{
		"type": "order", "id": 100,
		"status": map[string]any{"previous_status_id": 11, "new_status_id": 2},
	})
	require.Equal(t, http.StatusOK, deliver(h.handler, testSecret, shipped).Code)
	assert.Empty(t, h.ledger.marks)

	cancelled := eventBody(t, "store/order/statusUpdated", "e2", map[string]any{
		"type": "order", "id": 100,
		"status": map[string]any{"previous_status_id": 11, "new_status_id": 5},
	})
	require.Equal(t, http.StatusOK, deliver(h.handler, testSecret, cancelled).Code)
	assert.Equal(t, []cleaned{{"abc123", ledger.KindOrder, "100"}}, h.ledger.marks)
}

func TestHandlerAppUninstalled(t *testing.T) {
	h := newHarness()
	body := eventBody(t, "store/app/uninstalled", "e1", map[string]any{"type": "store", "id": 1001})

	require.Equal(t, http.StatusOK, deliver(h.handler, testSecret, body).Code)
	_, err := h.stores.FindByHash(context.Background(), "abc123")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHandlerJournalFailure(t *testing.T) {
	h := newHarness()
	h.journal.err = errors.New("tx failed")

	rec := deliver(h.handler, testSecret, eventBody(t, "store/cart/deleted", "e1", map[string]any{"id": "c1"}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResourceID(t *testing.T) {
	var ids struct {
		Cart  ResourceID `json:"cart"`
		Order ResourceID `json:"order"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"cart":"a-b-c","order":4021}`), &ids))
	assert.Equal(t, "a-b-c", ids.Cart.String())
	assert.Equal(t, "4021", ids.Order.String())
}

func TestVerifyHeaders(t *testing.T) {
	h := http.Header{}
	assert.False(t, VerifyHeaders(h, "s"))
	h.Set(HeaderSecret, "s")
	assert.True(t, VerifyHeaders(h, "s"))
	assert.False(t, VerifyHeaders(h, "other"))
	assert.False(t, VerifyHeaders(h, ""))
}
