package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bigcommerce-sdk/pkg/config"
	"bigcommerce-sdk/pkg/db"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfg := config.MustLoad()

	var err error
	if *down > 0 {
		err = db.MigrateDown(cfg, *down)
	} else {
		// Uses DIRECT_URL when set so poolers are bypassed.
		err = db.MigrateUp(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	version, dirty, ok, err := db.Version(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read version failed: %v\n", err)
		os.Exit(1)
	}

	// Runtime connection check (DATABASE_URL if set). DSNs are never printed.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	if !ok {
		fmt.Println("no migrations applied")
		return
	}
	fmt.Printf("schema at version %d (dirty=%t)\n", version, dirty)
}
