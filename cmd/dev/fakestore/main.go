package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bigcommerce-sdk/internal/fakestore"
	"bigcommerce-sdk/pkg/config"
	"bigcommerce-sdk/pkg/logger"
)

// fakestore serves an in-memory store so the SDK and the smoke run can work
// offline. Point BIGCOMMERCE_HOST at http://localhost<addr>.
func main() {
	var (
		addr  = flag.String("addr", "", "listen address (defaults to HTTP_ADDR)")
		seed  = flag.Int("seed", 20, "number of sample products to add")
		hash  = flag.String("store", "", "store hash (defaults to BIGCOMMERCE_STORE_HASH or abc123)")
		token = flag.String("token", "", "access token (defaults to BIGCOMMERCE_ACCESS_TOKEN or dev-token)")
	)
	flag.Parse()

	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	*addr = firstNonEmpty(*addr, cfg.HTTPAddr)
	*hash = firstNonEmpty(*hash, cfg.BigCommerce.StoreHash, "abc123")
	*token = firstNonEmpty(*token, cfg.BigCommerce.AccessToken, "dev-token")

	store := fakestore.New(*hash, *token)
	// The two products used by the cart scenario, then generated filler.
	store.AddProduct(fakestore.Product{ID: 23376, Name: "Shirt", SKU: "SHIRT", Price: decimal.RequireFromString("19.99"), Inventory: 100})
	store.AddProduct(fakestore.Product{ID: 23379, Name: "Mug", SKU: "MUG", Price: decimal.RequireFromString("7.50"), Inventory: 100})
	store.Seed(*seed)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           middleware.Recoverer(store.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("fake store listening", zap.String("addr", *addr), zap.String("store_hash", *hash))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
