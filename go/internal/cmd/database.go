package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/mcdev12/liveauction/go/internal/catalog"
	"github.com/mcdev12/liveauction/go/internal/config"
	"github.com/rs/zerolog/log"
)

func setupDatabase(ctx context.Context, dbConfig config.DatabaseConfig) (*sql.DB, error) {
	database, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("user", dbConfig.User).
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("connected to database")
	return database, nil
}

// loadCatalog reads the teams and players the auction starts from
func loadCatalog(ctx context.Context, cfg config.Config) (catalog.Seed, error) {
	switch cfg.Catalog.Source {
	case config.CatalogFile:
		return catalog.Load(cfg.Catalog.Path)
	case config.CatalogPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return catalog.Seed{}, fmt.Errorf("failed to connect to catalog database: %w", err)
		}
		defer pool.Close()

		seed, err := catalog.NewPostgresSource(pool).Load(ctx)
		if err != nil {
			return catalog.Seed{}, err
		}
		if err := seed.Validate(); err != nil {
			return catalog.Seed{}, err
		}
		return seed, nil
	default:
		return catalog.Default()
	}
}
