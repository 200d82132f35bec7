package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"bigcommerce-sdk/internal/api"
	"bigcommerce-sdk/internal/audit"
	"bigcommerce-sdk/internal/store"
	"bigcommerce-sdk/internal/webhook"
	"bigcommerce-sdk/pkg/bigcommerce"
	"bigcommerce-sdk/pkg/config"
)

// Registry is the installed-store storage the callbacks write to.
type Registry interface {
	Upsert(ctx context.Context, hash, accessToken, scope, ownerEmail string) (*store.Store, error)
	FindByHash(ctx context.Context, hash string) (*store.Store, error)
	DeleteByHash(ctx context.Context, hash string) error
}

// Auditor records store lifecycle actions.
type Auditor interface {
	Insert(ctx context.Context, storeHash, action, actor string, metadata any) error
}

// HookRegistration describes the webhooks created on install. An empty URL
// disables registration.
type HookRegistration struct {
	URL    string
	Secret string
	Scopes []string
}

// Handlers serves the app callbacks BigCommerce calls on install, load and uninstall.
type Handlers struct {
	Cfg       config.BigCommerceConfig
	Stores    Registry
	Exchanger bigcommerce.OAuthExchanger

	// Client is rebound to each newly installed store to register webhooks.
	Client bigcommerce.Client
	Hooks  HookRegistration
	Audit  Auditor
	Log    *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

type storeResponse struct {
	StoreHash string `json:"store_hash"`
	Scope     string `json:"scope,omitempty"`
	User      string `json:"user,omitempty"`
	URL       string `json:"url,omitempty"`
}

func (h Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	code := strings.TrimSpace(qs.Get("code"))
	storeContext := strings.TrimSpace(qs.Get("context"))
	if code == "" || storeContext == "" {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "missing code or context")
		return
	}

	ex := h.Exchanger
	ex.ClientID = h.Cfg.ClientID
	ex.ClientSecret = h.Cfg.ClientSecret
	ex.RedirectURL = h.Cfg.RedirectURL

	inst, err := ex.ExchangeCode(r.Context(), code, qs.Get("scope"), storeContext)
	if err != nil {
		h.logger().Warn("token exchange failed", zap.String("context", storeContext), zap.Error(err))
		api.WriteError(w, http.StatusBadGateway, "TOKEN_EXCHANGE", "token exchange failed")
		return
	}

	s, err := h.Stores.Upsert(r.Context(), inst.StoreHash(), inst.AccessToken, inst.Scope, inst.User.Email)
	if err != nil {
		h.logger().Error("save store failed", zap.String("store_hash", inst.StoreHash()), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to save store")
		return
	}

	h.logger().Info("store installed", zap.String("store_hash", s.Hash), zap.String("scope", s.Scope))
	h.record(r.Context(), s.Hash, audit.ActionInstalled, inst.User.Email, map[string]string{"scope": s.Scope})
	h.registerHooks(r.Context(), s)
	api.WriteJSON(w, http.StatusOK, storeResponse{StoreHash: s.Hash, Scope: s.Scope, User: inst.User.Email})
}

// registerHooks failures are logged only; the install itself succeeded.
func (h Handlers) registerHooks(ctx context.Context, s *store.Store) {
	if h.Hooks.URL == "" || h.Hooks.Secret == "" {
		return
	}
	c := h.Client.ForStore(s.Hash, s.AccessToken)
	for _, scope := range h.Hooks.Scopes {
		res, err := c.EnsureHook(ctx, bigcommerce.HookCreate{
			Scope:       scope,
			Destination: h.Hooks.URL,
			Headers:     map[string]string{webhook.HeaderSecret: h.Hooks.Secret},
		})
		if err != nil || !res.Success() {
			h.logger().Warn("webhook register failed",
				zap.String("store_hash", s.Hash), zap.String("scope", scope),
				zap.String("result", res.Error()), zap.Error(err))
		}
	}
}

func (h Handlers) Load(w http.ResponseWriter, r *http.Request) {
	p, ok := h.verify(w, r)
	if !ok {
		return
	}
	s, err := h.Stores.FindByHash(r.Context(), p.StoreHash)
	if errors.Is(err, store.ErrNotFound) {
		api.WriteError(w, http.StatusNotFound, "NOT_INSTALLED", "store is not installed")
		return
	}
	if err != nil {
		h.logger().Error("store lookup failed", zap.String("store_hash", p.StoreHash), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "store lookup failed")
		return
	}
	h.record(r.Context(), s.Hash, audit.ActionLoaded, p.User.Email, nil)
	api.WriteJSON(w, http.StatusOK, storeResponse{StoreHash: s.Hash, Scope: s.Scope, User: p.User.Email, URL: p.URL})
}

// Uninstall is idempotent: an already removed store still answers 204.
func (h Handlers) Uninstall(w http.ResponseWriter, r *http.Request) {
	p, ok := h.verify(w, r)
	if !ok {
		return
	}
	if err := h.Stores.DeleteByHash(r.Context(), p.StoreHash); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger().Error("uninstall failed", zap.String("store_hash", p.StoreHash), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to remove store")
		return
	}
	h.record(r.Context(), p.StoreHash, audit.ActionUninstalled, p.User.Email, nil)
	h.logger().Info("store uninstalled", zap.String("store_hash", p.StoreHash))
	w.WriteHeader(http.StatusNoContent)
}

// verify accepts signed_payload_jwt and falls back to the legacy signed_payload.
func (h Handlers) verify(w http.ResponseWriter, r *http.Request) (*bigcommerce.VerifiedPayload, bool) {
	qs := r.URL.Query()
	var (
		p   *bigcommerce.VerifiedPayload
		err error
	)
	switch {
	case qs.Get("signed_payload_jwt") != "":
		p, err = bigcommerce.VerifySignedPayload(qs.Get("signed_payload_jwt"), h.Cfg.ClientID, h.Cfg.ClientSecret, h.now())
	case qs.Get("signed_payload") != "":
		p, err = VerifyLegacyPayload(qs.Get("signed_payload"), h.Cfg.ClientSecret)
	default:
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "missing signed payload")
		return nil, false
	}
	if err != nil {
		h.logger().Warn("signed payload rejected", zap.Error(err))
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid signed payload")
		return nil, false
	}
	return p, true
}

func (h Handlers) record(ctx context.Context, storeHash, action, actor string, metadata any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Insert(ctx, storeHash, action, actor, metadata); err != nil {
		h.logger().Warn("audit insert failed", zap.String("store_hash", storeHash), zap.String("action", action), zap.Error(err))
	}
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h Handlers) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}
