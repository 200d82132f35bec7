package bigcommerce_test

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"bigcommerce-sdk/internal/fakestore"
	"bigcommerce-sdk/pkg/bigcommerce"
	"bigcommerce-sdk/pkg/config"
)

const (
	testHash  = "abc123"
	testToken = "test-token"

	productShirt int64 = 23376
	productMug   int64 = 23379
)

func newFakeStore(t *testing.T) (bigcommerce.Client, *fakestore.Store) {
	t.Helper()

	store := fakestore.New(testHash, testToken)
	store.AddProduct(fakestore.Product{
		ID:    productShirt,
		Name:  "Shirt",
		SKU:   "SHIRT",
		Price: decimal.RequireFromString("19.99"),
	})
	store.AddProduct(fakestore.Product{
		ID:    productMug,
		Name:  "Mug",
		SKU:   "MUG",
		Price: decimal.RequireFromString("7.50"),
	})

	srv := httptest.NewServer(store.Handler())
	t.Cleanup(srv.Close)

	c := bigcommerce.New(config.BigCommerceConfig{
		Host:        srv.URL,
		StoreHash:   testHash,
		AccessToken: testToken,
	}, bigcommerce.WithHTTPClient(srv.Client()))
	return c, store
}

func requestsTo(store *fakestore.Store, method, path string) []fakestore.Request {
	var out []fakestore.Request
	for _, r := range store.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}
