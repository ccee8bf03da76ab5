package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveauction/go/internal/auction/broadcast"
	"github.com/mcdev12/liveauction/go/internal/auction/engine"
	"github.com/mcdev12/liveauction/go/internal/auction/metrics"
	"github.com/mcdev12/liveauction/go/internal/catalog"
	"github.com/mcdev12/liveauction/go/internal/config"
	"github.com/mcdev12/liveauction/go/internal/gateway"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Engine    *engine.Engine
	Gateway   *gateway.Service
	Debouncer *broadcast.Debouncer
	Registry  *prometheus.Registry

	db   *sql.DB
	nats *nats.Conn
}

func setupServices(ctx context.Context, cfg config.Config, seed catalog.Seed) (*Services, error) {
	// Wire up the publish chain
	// Engine → Debouncer → Fanout → {websocket observers, log, NATS, Postgres}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewPrometheusMetrics(registry)

	s := &Services{Registry: registry}
	fanout := broadcast.NewFanout(collector, broadcast.LogSink{})
	var deps gateway.HealthDeps

	if cfg.NATS.Enabled {
		nc, js, err := broadcast.ConnectNATS(cfg.NATS.URL)
		if err != nil {
			return nil, err
		}
		s.nats = nc
		if err := broadcast.EnsureStream(ctx, js, cfg.NATS.Stream, cfg.NATS.SubjectPrefix); err != nil {
			s.Close()
			return nil, err
		}
		fanout.Add(broadcast.NewNATSSink(js, cfg.NATS.SubjectPrefix))
		deps.NATS = nc
	}

	if cfg.Database.Enabled {
		db, err := setupDatabase(ctx, cfg.Database)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.db = db
		store := broadcast.NewStateStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		fanout.Add(store)
		deps.DB = db
	}

	clock := clockwork.NewRealClock()
	s.Debouncer = broadcast.NewDebouncer(clock, cfg.PublishDebounce, fanout, collector)

	eng, err := engine.New(cfg.Auction, seed, clock, s.Debouncer, collector)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create auction engine: %w", err)
	}
	s.Engine = eng

	gatewayConfig := gateway.DefaultConfig()
	s.Gateway = gateway.NewService(gatewayConfig, eng, deps)
	fanout.Add(s.Gateway.Connections())

	if cfg.AutoStart {
		if err := eng.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start auction")
		}
	}

	log.Info().
		Int("teams", len(seed.Teams)).
		Int("players", len(seed.Players)).
		Bool("nats", cfg.NATS.Enabled).
		Bool("postgres", cfg.Database.Enabled).
		Str("phase", string(eng.Snapshot().Phase)).
		Msg("auction services ready")
	return s, nil
}

// Close stops the engine, flushes the last snapshot and closes connections.
func (s *Services) Close() {
	if s.Engine != nil {
		s.Engine.Close()
	}
	if s.Debouncer != nil {
		s.Debouncer.Close()
	}
	if s.nats != nil {
		if err := s.nats.Drain(); err != nil {
			log.Warn().Err(err).Msg("failed to drain NATS connection")
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}
}
