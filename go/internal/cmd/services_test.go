package main

import (
	"context"
	"testing"

	"github.com/mcdev12/liveauction/go/internal/auction/engine"
	"github.com/mcdev12/liveauction/go/internal/catalog"
	"github.com/mcdev12/liveauction/go/internal/config"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func testServices(t *testing.T, autoStart bool) *Services {
	t.Helper()
	seed, err := catalog.Default()
	assert.NoError(t, err)

	cfg := config.Config{
		Catalog:   config.CatalogConfig{Source: config.CatalogDefault},
		Auction:   engine.DefaultConfig(),
		AutoStart: autoStart,
	}
	services, err := setupServices(context.Background(), cfg, seed)
	assert.NoError(t, err)
	t.Cleanup(services.Close)
	return services
}

func TestSetupServices_AutoStart(t *testing.T) {
	s := testServices(t, true).Engine.Snapshot()

	check.Equal(t, engine.PhaseLotWaiting, s.Phase)
	check.True(t, s.Running)
	check.True(t, s.CurrentPlayer != nil)
	check.Equal(t, uint64(1), s.Version)
}

func TestSetupServices_WaitsForStart(t *testing.T) {
	services := testServices(t, false)
	s := services.Engine.Snapshot()
	check.Equal(t, engine.PhaseIdle, s.Phase)
	check.False(t, s.Running)

	assert.NoError(t, services.Engine.Start())
	check.True(t, services.Engine.Snapshot().Running)
}
