// Package carts proxies storefront cart reads and checkout links through the
// SDK for the store resolved by api.StoreAuth.
package carts

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bigcommerce-sdk/internal/api"
	"bigcommerce-sdk/pkg/bigcommerce"
)

type Handlers struct {
	// Client carries host, logger and rate limit; ForStore binds it per request.
	Client bigcommerce.Client
	Log    *zap.Logger
}

// envelope mirrors bigcommerce.Result on the wire.
type envelope[T any] struct {
	Outcome string `json:"outcome"`
	Status  int    `json:"status"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeResult[T any](w http.ResponseWriter, res bigcommerce.Result[T]) {
	env := envelope[T]{Outcome: res.Outcome.String(), Status: res.StatusCode, Error: res.Error()}
	status := http.StatusOK
	switch res.Outcome {
	case bigcommerce.OutcomeData:
		env.Data = &res.Data
	case bigcommerce.OutcomeFailure:
		status = http.StatusBadGateway
		if res.StatusCode >= 400 && res.StatusCode < 500 {
			status = res.StatusCode
		}
	}
	api.WriteJSON(w, status, env)
}

func (h Handlers) client(r *http.Request) (bigcommerce.Client, bool) {
	s := api.StoreFromContext(r.Context())
	if s == nil {
		return bigcommerce.Client{}, false
	}
	return h.Client.ForStore(s.Hash, s.AccessToken), true
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(r)
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing store")
		return
	}
	f := bigcommerce.NewFilter()
	if inc := r.URL.Query().Get("include"); inc != "" {
		f = f.Add("include", inc)
	}
	res, err := c.GetCart(r.Context(), chi.URLParam(r, "cartID"), f)
	if err != nil {
		h.transportError(w, err)
		return
	}
	writeResult(w, res)
}

func (h Handlers) RedirectURLs(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(r)
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing store")
		return
	}
	var q bigcommerce.CartRedirectQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil && !errors.Is(err, io.EOF) {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	res, err := c.CreateCartRedirectURLs(r.Context(), chi.URLParam(r, "cartID"), q)
	if err != nil {
		h.transportError(w, err)
		return
	}
	writeResult(w, res)
}

func (h Handlers) transportError(w http.ResponseWriter, err error) {
	if errors.Is(err, bigcommerce.ErrMissingCartID) {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if h.Log != nil {
		h.Log.Warn("bigcommerce call failed", zap.Error(err))
	}
	api.WriteError(w, http.StatusBadGateway, "UPSTREAM", "bigcommerce unreachable")
}
