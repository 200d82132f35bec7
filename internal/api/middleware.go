package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"bigcommerce-sdk/internal/store"
)

const HeaderStoreHash = "X-Store-Hash"

// StoreFinder resolves an installed store by hash.
type StoreFinder interface {
	FindByHash(ctx context.Context, hash string) (*store.Store, error)
}

// StoreAuth resolves the calling store from X-Store-Hash (or ?store_hash=)
// and attaches it to the request context. Unknown or uninstalled stores get 401.
func StoreAuth(stores StoreFinder, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hash := strings.TrimSpace(r.Header.Get(HeaderStoreHash))
			if hash == "" {
				hash = strings.TrimSpace(r.URL.Query().Get("store_hash"))
			}
			if hash == "" {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing store identity")
				return
			}

			s, err := stores.FindByHash(r.Context(), hash)
			if errors.Is(err, store.ErrNotFound) {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown store")
				return
			}
			if err != nil {
				log.Error("store lookup failed", zap.String("store_hash", hash), zap.Error(err))
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "store lookup failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), s)))
		})
	}
}

// RequestLogger logs one line per request with the chi request id.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
