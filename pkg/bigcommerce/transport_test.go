package bigcommerce

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bigcommerce-sdk/pkg/config"
)

type widget struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestBuildResult(t *testing.T) {
	v3 := CartsEndpoint()
	v2 := OrdersEndpoint()

	t.Run("v3 envelope", func(t *testing.T) {
		res, meta := buildResult[widget](v3, 200, []byte(`{"data":{"id":7,"name":"a"},"meta":{}}`))
		assert.Equal(t, OutcomeData, res.Outcome)
		assert.Equal(t, widget{ID: 7, Name: "a"}, res.Data)
		require.NotNil(t, meta)
		assert.Nil(t, meta.Pagination)
	})

	t.Run("v3 pagination", func(t *testing.T) {
		body := `{"data":[{"id":1}],"meta":{"pagination":{"total":9,"count":1,"per_page":1,"current_page":2,"total_pages":9}}}`
		res, meta := buildResult[[]widget](v3, 200, []byte(body))
		assert.True(t, res.HasData())
		require.NotNil(t, meta.Pagination)
		assert.Equal(t, Pagination{Total: 9, Count: 1, PerPage: 1, CurrentPage: 2, TotalPages: 9}, *meta.Pagination)
	})

	t.Run("v2 bare", func(t *testing.T) {
		res, meta := buildResult[widget](v2, 201, []byte(`{"id":3,"name":"b"}`))
		assert.True(t, res.HasData())
		assert.Equal(t, int64(3), res.Data.ID)
		assert.Nil(t, meta)
	})

	t.Run("no content", func(t *testing.T) {
		res, _ := buildResult[widget](v2, 204, nil)
		assert.Equal(t, OutcomeEmpty, res.Outcome)
		assert.True(t, res.Success())
		assert.False(t, res.HasData())
		assert.Equal(t, "", res.Error())
	})

	t.Run("null data", func(t *testing.T) {
		res, _ := buildResult[widget](v3, 200, []byte(`{"data":null}`))
		assert.Equal(t, OutcomeEmpty, res.Outcome)
	})

	t.Run("undecodable body keeps the raw bytes", func(t *testing.T) {
		body := []byte(`{"data":{"id":"seven"}}`)
		res, _ := buildResult[widget](v3, 200, body)
		assert.False(t, res.Success())
		assert.False(t, res.HasData())
		assert.Equal(t, body, res.Body)
		assert.Contains(t, res.Error(), "decode bigcommerce response failed")
	})

	t.Run("v3 problem document", func(t *testing.T) {
		body := []byte(`{"status":422,"title":"Missing line items","type":"x","errors":{"line_items":"required"}}`)
		res, _ := buildResult[widget](v3, 422, body)
		assert.Equal(t, OutcomeFailure, res.Outcome)
		require.NotNil(t, res.Err)
		assert.Equal(t, "Missing line items", res.Err.Title)
		assert.Equal(t, map[string]string{"line_items": "required"}, res.Err.Errors)
		assert.Equal(t, "bigcommerce api error: status=422 body=Missing line items", res.Error())
		assert.Equal(t, body, res.Body)
	})

	t.Run("v2 error array", func(t *testing.T) {
		body := []byte(`[{"status":400,"message":"The field 'status_id' is invalid."}]`)
		res, _ := buildResult[widget](v2, 400, body)
		require.NotNil(t, res.Err)
		assert.Equal(t, "The field 'status_id' is invalid.", res.Err.Title)
	})

	t.Run("plain text error", func(t *testing.T) {
		res, _ := buildResult[widget](v2, 502, []byte("bad gateway"))
		assert.Equal(t, "bigcommerce api error: status=502 body=bad gateway", res.Error())
	})

	t.Run("empty error body", func(t *testing.T) {
		res, _ := buildResult[widget](v2, 500, nil)
		assert.Equal(t, "bigcommerce api error: status=500", res.Error())
	})
}

func TestDerivePagination(t *testing.T) {
	cases := []struct {
		name  string
		f     Filter
		count int
		want  Pagination
	}{
		{"full first page", NewFilter().Add("limit", "3"), 3, Pagination{Total: 3, Count: 3, PerPage: 3, CurrentPage: 1, TotalPages: 2}},
		{"short page", NewFilter().Add("limit", "3").Add("page", "4"), 1, Pagination{Total: 10, Count: 1, PerPage: 3, CurrentPage: 4, TotalPages: 4}},
		{"empty page", NewFilter().Add("page", "2"), 0, Pagination{Total: 50, Count: 0, PerPage: 50, CurrentPage: 2, TotalPages: 2}},
		{"defaults", NewFilter(), 50, Pagination{Total: 50, Count: 50, PerPage: 50, CurrentPage: 1, TotalPages: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, derivePagination(tc.f, tc.count))
		})
	}
}

func TestPaginationFromTotal(t *testing.T) {
	f := NewFilter().Add("limit", "3").Add("page", "2")
	assert.Equal(t, Pagination{Total: 6, Count: 3, PerPage: 3, CurrentPage: 2, TotalPages: 2}, paginationFromTotal(f, 3, 6))
	assert.Equal(t, Pagination{Total: 7, Count: 3, PerPage: 3, CurrentPage: 2, TotalPages: 3}, paginationFromTotal(f, 3, 7))
	assert.Equal(t, Pagination{Total: 0, Count: 0, PerPage: 50, CurrentPage: 1, TotalPages: 0}, paginationFromTotal(NewFilter(), 0, 0))
}

func TestSearchOrdersCountFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/stores/abc/v2/orders/count" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`[{"status":500,"message":"count unavailable"}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	t.Cleanup(srv.Close)

	c := New(config.BigCommerceConfig{Host: srv.URL, StoreHash: "abc", AccessToken: "tok"})
	res, err := c.SearchOrders(context.Background(), OrderSearch{Limit: 2})
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Empty(t, res.Data)
	assert.False(t, res.HasNextPage())
}

func TestClientSendsHeaders(t *testing.T) {
	reqs := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":1},"meta":{}}`))
	}))
	t.Cleanup(srv.Close)

	c := New(config.BigCommerceConfig{Host: srv.URL, StoreHash: "abc", AccessToken: "tok"})
	res, err := Post[widget](context.Background(), c, CartsEndpoint(), NewFilter().Add("include", "a,b"), map[string]int{"x": 1})
	require.NoError(t, err)
	require.True(t, res.HasData())

	got := <-reqs
	assert.Equal(t, "/stores/abc/v3/carts", got.URL.Path)
	assert.Equal(t, "include=a,b", got.URL.RawQuery)
	assert.Equal(t, "tok", got.Header.Get("X-Auth-Token"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
}

func TestClientMissingCredentials(t *testing.T) {
	c := New(config.BigCommerceConfig{Host: "127.0.0.1:1"})
	_, err := Get[widget](context.Background(), c, CartsEndpoint(), Filter{})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestClientCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(config.BigCommerceConfig{Host: srv.URL, StoreHash: "abc", AccessToken: "tok"})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := c.GetCart(ctx, "cart-1", NewFilter())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, Result[Cart]{}, res)
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := New(config.BigCommerceConfig{Host: srv.URL, StoreHash: "abc", AccessToken: "tok", RateLimit: 0.001})
	require.NotNil(t, c.Limiter)

	_, err := Delete[NoContent](context.Background(), c, CartEndpoint("a"), Filter{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = Delete[NoContent](ctx, c, CartEndpoint("b"), Filter{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientLogsCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	core, logs := observer.New(zap.DebugLevel)
	c := New(config.BigCommerceConfig{Host: srv.URL, StoreHash: "abc", AccessToken: "tok"}, WithLogger(zap.New(core)))

	_, err := Delete[NoContent](context.Background(), c, CartEndpoint("a"), Filter{})
	require.NoError(t, err)

	entries := logs.FilterMessage("bigcommerce call").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "DELETE", fields["method"])
	assert.Equal(t, "v3/carts/a", fields["path"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.bigcommerce.com/stores/h/", Client{StoreHash: "h"}.baseURL())
	assert.Equal(t, "https://example.test/stores/h/", Client{Host: "example.test/", StoreHash: "h"}.baseURL())
	assert.Equal(t, "http://127.0.0.1:9/stores/h/", Client{Host: "http://127.0.0.1:9", StoreHash: "h"}.baseURL())
}

func TestForStore(t *testing.T) {
	base := New(config.BigCommerceConfig{Host: "api.bigcommerce.com", StoreHash: "one", AccessToken: "t1"})
	other := base.ForStore("two", "t2")
	assert.Equal(t, "one", base.StoreHash)
	assert.Equal(t, "two", other.StoreHash)
	assert.Same(t, base.HTTPClient, other.HTTPClient)
}
