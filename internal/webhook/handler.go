package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bigcommerce-sdk/internal/api"
	"bigcommerce-sdk/internal/ledger"
	"bigcommerce-sdk/internal/store"
	"bigcommerce-sdk/pkg/bigcommerce"
)

type Stores interface {
	FindByHash(ctx context.Context, hash string) (*store.Store, error)
	DeleteByHash(ctx context.Context, hash string) error
}

type Ledger interface {
	MarkCleanedRemote(ctx context.Context, storeHash string, kind ledger.Kind, remoteID string) error
}

// ResourceID is a cart uuid or a numeric order id.
type ResourceID string

func (r *ResourceID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = ResourceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("resource id: %w", err)
	}
	*r = ResourceID(n.String())
	return nil
}

func (r ResourceID) String() string { return string(r) }

// Event is a webhook delivery body.
type Event struct {
	Scope     string `json:"scope"`
	StoreID   string `json:"store_id"`
	Hash      string `json:"hash"`
	CreatedAt int64  `json:"created_at"`
	Producer  string `json:"producer"`
	Data      struct {
		Type   string     `json:"type"`
		ID     ResourceID `json:"id"`
		Status *struct {
			PreviousStatusID int `json:"previous_status_id"`
			NewStatusID      int `json:"new_status_id"`
		} `json:"status,omitempty"`
	} `json:"data"`
}

// StoreHash extracts {hash} from the "stores/{hash}" producer.
func (e Event) StoreHash() string {
	return strings.TrimPrefix(strings.TrimSpace(e.Producer), "stores/")
}

type Handler struct {
	Secret  string
	Stores  Stores
	Journal Journal
	Log     *zap.Logger
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !VerifyHeaders(r.Header, h.Secret) {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook secret")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil || ev.Scope == "" || ev.StoreHash() == "" || ev.Hash == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid webhook payload")
		return
	}

	log := h.logger().With(
		zap.String("store_hash", ev.StoreHash()),
		zap.String("scope", NormalizeScope(ev.Scope)),
		zap.String("resource_id", ev.Data.ID.String()),
	)

	// Unknown stores are acknowledged so BigCommerce stops retrying.
	if _, err := h.Stores.FindByHash(r.Context(), ev.StoreHash()); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("webhook store lookup failed", zap.Error(err))
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "store lookup failed")
			return
		}
		log.Info("webhook for unknown store")
		w.WriteHeader(http.StatusOK)
		return
	}

	processed, err := h.Journal.Process(r.Context(), ev, func(ctx context.Context, stores Stores, led Ledger) error {
		return apply(ctx, ev, stores, led)
	})
	if err != nil {
		// A non-2xx makes BigCommerce redeliver; the journal keeps the retry idempotent.
		log.Error("webhook processing failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "webhook processing failed")
		return
	}
	if !processed {
		log.Debug("webhook already processed", zap.String("hash", ev.Hash))
	} else {
		log.Info("webhook processed")
	}
	w.WriteHeader(http.StatusOK)
}

func apply(ctx context.Context, ev Event, stores Stores, led Ledger) error {
	hash := ev.StoreHash()
	switch ev.Scope {
	case bigcommerce.ScopeAppUninstalled:
		if err := stores.DeleteByHash(ctx, hash); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	case bigcommerce.ScopeCartDeleted:
		return led.MarkCleanedRemote(ctx, hash, ledger.KindCart, ev.Data.ID.String())
	case bigcommerce.ScopeOrderUpdated:
		if ev.Data.Status != nil && ev.Data.Status.NewStatusID == int(bigcommerce.OrderStatusCancelled) {
			return led.MarkCleanedRemote(ctx, hash, ledger.KindOrder, ev.Data.ID.String())
		}
	}
	return nil
}

// Scopes are the subscriptions Handler acts on.
var Scopes = []string{
	bigcommerce.ScopeAppUninstalled,
	bigcommerce.ScopeCartDeleted,
	bigcommerce.ScopeOrderUpdated,
}

func (h Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}
