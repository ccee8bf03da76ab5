package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/liveauction/go/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS auction_teams (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    short_name TEXT NOT NULL,
    city       TEXT NOT NULL DEFAULT '',
    color      TEXT NOT NULL DEFAULT '',
    logo       TEXT NOT NULL DEFAULT '',
    budget     BIGINT NOT NULL CHECK (budget > 0)
);

CREATE TABLE IF NOT EXISTS auction_players (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    position    TEXT NOT NULL DEFAULT '',
    nationality TEXT NOT NULL DEFAULT '',
    age         INTEGER NOT NULL DEFAULT 0,
    rating      INTEGER NOT NULL DEFAULT 0,
    avatar      TEXT NOT NULL DEFAULT '',
    base_price  BIGINT NOT NULL CHECK (base_price > 0),
    sort_order  INTEGER NOT NULL
);
`

// PostgresSource reads and writes catalogs in Postgres
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// EnsureSchema creates the catalog tables if they do not exist
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create catalog schema: %w", err)
	}
	return nil
}

// Load reads the catalog, players in their stored auction order.
func (s *PostgresSource) Load(ctx context.Context) (Seed, error) {
	var seed Seed

	rows, err := s.pool.Query(ctx, `
        SELECT id, name, short_name, city, color, logo, budget
        FROM auction_teams
        ORDER BY id
    `)
	if err != nil {
		return Seed{}, fmt.Errorf("query teams: %w", err)
	}
	seed.Teams, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Team, error) {
		var t models.Team
		err := row.Scan(&t.ID, &t.Name, &t.ShortName, &t.City, &t.Color, &t.Logo, &t.Budget)
		return t, err
	})
	if err != nil {
		return Seed{}, fmt.Errorf("scan teams: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
        SELECT id, name, position, nationality, age, rating, avatar, base_price
        FROM auction_players
        ORDER BY sort_order, id
    `)
	if err != nil {
		return Seed{}, fmt.Errorf("query players: %w", err)
	}
	seed.Players, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Player, error) {
		var p models.Player
		err := row.Scan(&p.ID, &p.Name, &p.Position, &p.Nationality, &p.Age, &p.Rating, &p.Avatar, &p.BasePrice)
		return p, err
	})
	if err != nil {
		return Seed{}, fmt.Errorf("scan players: %w", err)
	}

	seed = seed.Clone()
	if err := seed.Validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

// SaveResult counts what Save did per table
type SaveResult struct {
	Teams   int
	Players int
}

// Save upserts every team and player of seed in one transaction. Players are
// stored with their position in seed as the auction order.
func (s *PostgresSource) Save(ctx context.Context, seed Seed) (SaveResult, error) {
	var res SaveResult
	if err := seed.Validate(); err != nil {
		return res, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range seed.Teams {
		tag, err := tx.Exec(ctx, `
            INSERT INTO auction_teams (id, name, short_name, city, color, logo, budget)
            VALUES ($1,$2,$3,$4,$5,$6,$7)
            ON CONFLICT (id) DO UPDATE SET
              name = EXCLUDED.name, short_name = EXCLUDED.short_name,
              city = EXCLUDED.city, color = EXCLUDED.color,
              logo = EXCLUDED.logo, budget = EXCLUDED.budget
        `, t.ID, t.Name, t.ShortName, t.City, t.Color, t.Logo, t.Budget)
		if err != nil {
			return res, fmt.Errorf("upsert team %d: %w", t.ID, err)
		}
		res.Teams += int(tag.RowsAffected())
	}

	for i, p := range seed.Players {
		tag, err := tx.Exec(ctx, `
            INSERT INTO auction_players (
              id, name, position, nationality, age, rating, avatar, base_price, sort_order
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
            ON CONFLICT (id) DO UPDATE SET
              name = EXCLUDED.name, position = EXCLUDED.position,
              nationality = EXCLUDED.nationality, age = EXCLUDED.age,
              rating = EXCLUDED.rating, avatar = EXCLUDED.avatar,
              base_price = EXCLUDED.base_price, sort_order = EXCLUDED.sort_order
        `, p.ID, p.Name, p.Position, p.Nationality, p.Age, p.Rating, p.Avatar, p.BasePrice, i)
		if err != nil {
			return res, fmt.Errorf("upsert player %d: %w", p.ID, err)
		}
		res.Players += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}
