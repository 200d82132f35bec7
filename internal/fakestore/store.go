// Package fakestore is an in-memory BigCommerce store served over HTTP.
// It implements the subset of the v2/v3 REST APIs the SDK calls, with the
// same envelopes, status codes and error bodies as the real API.
package fakestore

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	defaultLimit = 50
	maxLimit     = 250
)

// Request is one call received by the store, recorded for assertions.
type Request struct {
	Method string
	// Path is store-relative, e.g. v3/carts/{id}.
	Path     string
	RawQuery string
	Query    url.Values
}

type Store struct {
	Hash  string
	Token string

	// DeleteLineEmptyBody makes a cart line delete that leaves lines behind
	// answer 200 with an empty body, as some stores do.
	DeleteLineEmptyBody bool

	mu          sync.Mutex
	now         func() time.Time
	requests    []Request
	products    map[int64]*Product
	carts       map[string]*cart
	orders      map[int64]*order
	metafields  map[int64]*metafield
	hooks       map[int64]*hook
	nextOrderID int64
	nextID      int64
}

func New(hash, token string) *Store {
	return &Store{
		Hash:        hash,
		Token:       token,
		now:         time.Now,
		products:    map[int64]*Product{},
		carts:       map[string]*cart{},
		orders:      map[int64]*order{},
		metafields:  map[int64]*metafield{},
		hooks:       map[int64]*hook{},
		nextOrderID: 100,
		nextID:      1000,
	}
}

// SetClock replaces the store clock. Order dates and search bounds use it.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/stores/{hash}", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.record)

		r.Route("/v3", func(r chi.Router) {
			r.Post("/carts", s.createCart)
			r.Get("/carts/{cartID}", s.getCart)
			r.Put("/carts/{cartID}", s.updateCartCustomer)
			r.Delete("/carts/{cartID}", s.deleteCart)
			r.Post("/carts/{cartID}/items", s.addCartItems)
			r.Put("/carts/{cartID}/items/{lineID}", s.updateCartItem)
			r.Delete("/carts/{cartID}/items/{lineID}", s.deleteCartItem)
			r.Post("/carts/{cartID}/redirect_urls", s.createRedirectURLs)

			r.Post("/orders/metafields", s.createMetafields(resourceOrder))
			r.Get("/orders/{orderID}/metafields", s.listMetafields(resourceOrder))
			r.Delete("/orders/{orderID}/metafields/{metafieldID}", s.deleteMetafield(resourceOrder))

			r.Get("/catalog/products", s.listProducts)
			r.Get("/catalog/products/{productID}", s.getProduct)
			r.Post("/catalog/products/{productID}/images", s.createProductImage)
			r.Post("/catalog/products/metafields", s.createMetafields(resourceProduct))
			r.Get("/catalog/products/{productID}/metafields", s.listMetafields(resourceProduct))
			r.Delete("/catalog/products/{productID}/metafields/{metafieldID}", s.deleteMetafield(resourceProduct))

			r.Post("/hooks", s.createHook)
			r.Get("/hooks", s.listHooks)
			r.Delete("/hooks/{hookID}", s.deleteHook)
		})

		r.Route("/v2", func(r chi.Router) {
			r.Post("/orders", s.createOrder)
			r.Get("/orders", s.searchOrders)
			r.Get("/orders/count", s.countOrders)
			r.Get("/orders/{orderID}", s.getOrder)
			r.Put("/orders/{orderID}", s.updateOrder)
			r.Post("/orders/{orderID}/shipments", s.createShipment)
			r.Get("/orders/{orderID}/shipping_addresses", s.shippingAddresses)
		})
	})
	return r
}

// Requests returns a copy of the calls received so far.
func (s *Store) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Store) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// CartCount and OrderCount report stored resources.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// OrderStatus returns the status id of an order, or -1 if it does not exist.
func (s *Store) OrderStatus(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return -1
	}
	return o.statusID
}

func (s *Store) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "hash") != s.Hash {
			writeV3Error(w, http.StatusNotFound, "Store not found")
			return
		}
		if r.Header.Get("X-Auth-Token") != s.Token {
			writeV3Error(w, http.StatusUnauthorized, "You are not authorized to access this resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Store) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/stores/"+s.Hash+"/")
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:   r.Method,
			Path:     path,
			RawQuery: r.URL.RawQuery,
			Query:    r.URL.Query(),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Store) newID() int64 {
	s.nextID++
	return s.nextID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	writeJSON(w, status, map[string]any{"data": data, "meta": meta})
}

func writeV3Error(w http.ResponseWriter, status int, title string) {
	writeJSON(w, status, map[string]any{
		"status": status,
		"title":  title,
		"type":   "https://developer.bigcommerce.com/api-docs/getting-started/api-status-codes",
		"errors": map[string]string{},
	})
}

func writeV2Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, []map[string]any{{"status": status, "message": message}})
}

// v3 money is a JSON number, v2 money a string with four decimals.
func v3Amount(d decimal.Decimal) json.Number { return json.Number(d.String()) }

func v2Amount(d decimal.Decimal) string { return d.StringFixed(4) }

func parseAmount(n *json.Number) (decimal.Decimal, bool, error) {
	if n == nil {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

func csvSet(raw string) map[string]bool {
	out := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out[p] = true
		}
	}
	return out
}

func pathInt(r *http.Request, name string) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return n, err == nil && n > 0
}

// pageBounds applies page/limit to n rows.
func pageBounds(q url.Values, n int) (start, end, page, limit int) {
	page = atoi(q.Get("page"), 1)
	limit = atoi(q.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	start = (page - 1) * limit
	if start > n {
		start = n
	}
	end = start + limit
	if end > n {
		end = n
	}
	return start, end, page, limit
}

func paginationMeta(total, count, page, limit int) map[string]any {
	pages := (total + limit - 1) / limit
	if pages == 0 {
		pages = 1
	}
	links := map[string]string{"current": "?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)}
	if page < pages {
		links["next"] = "?page=" + strconv.Itoa(page+1) + "&limit=" + strconv.Itoa(limit)
	}
	return map[string]any{"pagination": map[string]any{
		"total":        total,
		"count":        count,
		"per_page":     limit,
		"current_page": page,
		"total_pages":  pages,
		"links":        links,
	}}
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
