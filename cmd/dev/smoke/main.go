package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"bigcommerce-sdk/internal/ledger"
	"bigcommerce-sdk/internal/smoke"
	"bigcommerce-sdk/pkg/bigcommerce"
	"bigcommerce-sdk/pkg/config"
	"bigcommerce-sdk/pkg/db"
	"bigcommerce-sdk/pkg/logger"
)

// errFailed marks a run whose failure was already reported.
var errFailed = errors.New("smoke failed")

// smoke runs the cart round trip against BIGCOMMERCE_HOST (a live store or
// cmd/dev/fakestore) and prints each checked step.
func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run() error {
	var (
		first     = flag.Int64("product", 23376, "product id for the first cart line")
		second    = flag.Int64("second-product", 23379, "product id for the added cart line")
		order     = flag.Bool("order", false, "also place, ship and cancel an order")
		keepCart  = flag.Bool("keep-cart", false, "leave the cart in place")
		useDB     = flag.Bool("ledger", false, "record created carts and orders in the database")
		cleanup   = flag.Bool("cleanup", false, "delete carts and cancel orders recorded by earlier runs, then exit")
		loginAs   = flag.Int64("login-customer", 0, "print a storefront login link for this customer id, then exit")
		loginPath = flag.String("login-redirect", "", "storefront path to land on after -login-customer")
		timeout   = flag.Duration("timeout", 2*time.Minute, "overall deadline")
	)
	flag.Parse()

	cfg := config.MustLoad()
	if !cfg.BigCommerce.HasStoreCredentials() {
		return errors.New("missing BIGCOMMERCE_STORE_HASH or BIGCOMMERCE_ACCESS_TOKEN")
	}

	if *loginAs != 0 {
		link, err := smoke.LoginURL(cfg.BigCommerce, *loginAs, *loginPath, time.Now())
		if err != nil {
			return fmt.Errorf("login link: %w", err)
		}
		fmt.Println(link)
		return nil
	}

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	runner := smoke.Runner{
		Client: bigcommerce.New(cfg.BigCommerce, bigcommerce.WithLogger(log)),
		Log:    log,
	}

	var led *ledger.Repository
	if *useDB || *cleanup {
		pool, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer pool.Close()
		if err := db.MigrateUp(cfg); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		led = ledger.NewRepository(pool)
		runner.Recorder = led
	}

	if *cleanup {
		n, err := runner.Cleanup(ctx, led)
		if err != nil {
			return fmt.Errorf("cleanup: %w (cleaned %d)", err, n)
		}
		fmt.Printf("cleaned %d resources for store %s\n", n, cfg.BigCommerce.StoreHash)
		return nil
	}

	steps, err := runner.Run(ctx, smoke.Options{
		FirstProduct:  *first,
		SecondProduct: *second,
		KeepCart:      *keepCart,
		Order:         *order,
		ChannelID:     cfg.BigCommerce.ChannelID,
	})
	for _, s := range steps {
		fmt.Printf("ok   %-18s %s\n", s.Name, s.Detail)
	}
	if err != nil {
		fmt.Printf("FAIL %s\n", err)
		if led == nil {
			fmt.Println("tip: run with -ledger so leftovers can be removed with -cleanup")
		}
		return errFailed
	}
	fmt.Printf("smoke passed against store %s\n", cfg.BigCommerce.StoreHash)
	return nil
}
