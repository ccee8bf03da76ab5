package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/liveauction/go/internal/catalog"
	"github.com/mcdev12/liveauction/go/internal/config"
)

// Usage: seed_catalog [catalog.yaml|.toml|.json]
// Without an argument the embedded default catalog is seeded.
func main() {
	ctx := context.Background()

	// 1) Load catalog
	var (
		seed catalog.Seed
		err  error
	)
	if len(os.Args) > 1 {
		seed, err = catalog.Load(os.Args[1])
	} else {
		seed, err = catalog.Default()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load catalog: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to DB
	cfg := config.FromEnv()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Seed teams and players
	source := catalog.NewPostgresSource(pool)
	if err := source.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "schema: %v\n", err)
		os.Exit(1)
	}
	res, err := source.Save(ctx, seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf(
		"Catalog seed: teams=%d/%d players=%d/%d\n",
		res.Teams, len(seed.Teams), res.Players, len(seed.Players),
	)
}
