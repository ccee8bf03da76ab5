package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveauction/go/internal/auction/broadcast"
	"github.com/mcdev12/liveauction/go/internal/auction/engine"
	"github.com/mcdev12/liveauction/go/internal/auction/events"
	"github.com/mcdev12/liveauction/go/internal/catalog"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

type testGateway struct {
	engine  *engine.Engine
	service *Service
	server  *httptest.Server
}

func newTestGateway(t *testing.T, deps HealthDeps) *testGateway {
	t.Helper()
	seed, err := catalog.Default()
	assert.NoError(t, err)

	e, err := engine.New(engine.DefaultConfig(), seed, clockwork.NewFakeClock(), nil, nil)
	assert.NoError(t, err)
	t.Cleanup(e.Close)

	svc := NewService(DefaultConfig(), e, deps)
	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Start(ctx)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &testGateway{engine: e, service: svc, server: srv}
}

func (g *testGateway) post(t *testing.T, path, body string) (int, CommandResponse) {
	t.Helper()
	resp, err := http.Post(g.server.URL+path, "application/json", strings.NewReader(body))
	assert.NoError(t, err)
	defer resp.Body.Close()

	var out CommandResponse
	if resp.Header.Get("Content-Type") == "application/json" {
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (g *testGateway) get(t *testing.T, path string, v any) int {
	t.Helper()
	resp, err := http.Get(g.server.URL + path)
	assert.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestCommands(t *testing.T) {
	g := newTestGateway(t, HealthDeps{})

	var state engine.Snapshot
	check.Equal(t, http.StatusOK, g.get(t, "/api/auction/state", &state))
	check.Equal(t, engine.PhaseIdle, state.Phase)

	code, resp := g.post(t, "/api/auction/start", "")
	check.Equal(t, http.StatusOK, code)
	check.True(t, resp.Accepted)
	assert.NotNil(t, resp.Snapshot)
	check.Equal(t, engine.PhaseLotWaiting, resp.Snapshot.Phase)
	check.Equal(t, "Arjun Mehta", resp.Snapshot.CurrentPlayer.Name)

	code, resp = g.post(t, "/api/auction/start", "")
	check.Equal(t, http.StatusConflict, code)
	check.False(t, resp.Accepted)
	check.Equal(t, "already_running", resp.Code)

	code, resp = g.post(t, "/api/auction/bid", `{"team":"svs"}`)
	check.Equal(t, http.StatusOK, code)
	check.Equal(t, 1, *resp.Snapshot.LeaderID)
	check.Equal(t, int64(1_500_000), resp.Snapshot.CurrentPrice)

	code, resp = g.post(t, "/api/auction/bid", `{"team_id":1}`)
	check.Equal(t, http.StatusConflict, code)
	check.Equal(t, "already_leading", resp.Code)

	code, resp = g.post(t, "/api/auction/bid", `{"team":"Storm"}`)
	check.Equal(t, http.StatusOK, code)
	check.Equal(t, 2, *resp.Snapshot.LeaderID)
	check.Equal(t, int64(1_600_000), resp.Snapshot.CurrentPrice)

	code, resp = g.post(t, "/api/auction/bid", `{"team":"zzzqqq"}`)
	check.Equal(t, http.StatusConflict, code)
	check.Equal(t, "unknown_team", resp.Code)

	code, _ = g.post(t, "/api/auction/bid", `not json`)
	check.Equal(t, http.StatusBadRequest, code)
	code, _ = g.post(t, "/api/auction/bid", `{}`)
	check.Equal(t, http.StatusBadRequest, code)

	code, resp = g.post(t, "/api/auction/undo", "")
	check.Equal(t, http.StatusOK, code)
	check.Equal(t, 1, *resp.Snapshot.LeaderID)

	code, resp = g.post(t, "/api/auction/sell", "")
	check.Equal(t, http.StatusOK, code)
	check.Equal(t, engine.PhaseResolving, resp.Snapshot.Phase)
	assert.NotNil(t, resp.Snapshot.LastSale)
	check.Equal(t, "Sarvam Spikers", resp.Snapshot.LastSale.TeamName)

	var team TeamView
	check.Equal(t, http.StatusOK, g.get(t, "/api/auction/teams/1", &team))
	check.Equal(t, int64(1_500_000), team.Spent)
	check.Equal(t, int64(8_500_000), team.Remaining)
	assert.Equal(t, 1, len(team.Squad))
	check.Equal(t, "Arjun Mehta", team.Squad[0].Name)
	check.Equal(t, int64(1_500_000), *team.Squad[0].SoldPrice)

	check.Equal(t, http.StatusNotFound, g.get(t, "/api/auction/teams/42", nil))
	check.Equal(t, http.StatusBadRequest, g.get(t, "/api/auction/teams/abc", nil))

	code, resp = g.post(t, "/api/auction/reset", "")
	check.Equal(t, http.StatusOK, code)
	check.Equal(t, 0, resp.Snapshot.Stats.Sold)

	code, _ = g.post(t, "/api/auction/skip", "")
	check.Equal(t, http.StatusOK, code)
	code, resp = g.post(t, "/api/auction/unsold", "")
	check.Equal(t, http.StatusConflict, code)
	check.Equal(t, "lot_resolving", resp.Code)
	code, _ = g.post(t, "/api/auction/pause", "")
	check.Equal(t, http.StatusOK, code)
}

func TestCommands_MethodNotAllowed(t *testing.T) {
	g := newTestGateway(t, HealthDeps{})
	check.Equal(t, http.StatusMethodNotAllowed, g.get(t, "/api/auction/start", nil))
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

type fakeNATS struct{ connected bool }

func (n fakeNATS) IsConnected() bool { return n.connected }

func TestHealth(t *testing.T) {
	g := newTestGateway(t, HealthDeps{DB: fakePinger{}, NATS: fakeNATS{connected: true}})

	var status HealthStatus
	check.Equal(t, http.StatusOK, g.get(t, "/health", &status))
	check.True(t, status.Healthy)
	check.True(t, status.LedgerConsistent)
	check.True(t, *status.DatabaseConnected)
	check.True(t, *status.NATSConnected)
	check.Equal(t, "idle", status.Phase)

	down := newTestGateway(t, HealthDeps{DB: fakePinger{err: errors.New("refused")}, NATS: fakeNATS{}})
	resp, err := http.Get(down.server.URL + "/health")
	assert.NoError(t, err)
	defer resp.Body.Close()
	check.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	check.False(t, status.Healthy)
	check.Equal(t, 2, len(status.Errors))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) events.Envelope {
	t.Helper()
	assert.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	assert.NoError(t, err)
	var env events.Envelope
	assert.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestWebSocket_SyncThenBroadcast(t *testing.T) {
	g := newTestGateway(t, HealthDeps{})
	assert.NoError(t, g.engine.Start())

	url := "ws" + strings.TrimPrefix(g.server.URL, "http") + "/ws/auction?observer=projector"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	first := readEnvelope(t, conn)
	check.Equal(t, g.engine.Snapshot().Version, first.Version)
	var s engine.Snapshot
	assert.NoError(t, json.Unmarshal(first.Data, &s))
	check.Equal(t, engine.PhaseLotWaiting, s.Phase)

	var stats ConnectionStats
	check.Equal(t, http.StatusOK, g.get(t, "/ws/stats", &stats))
	check.Equal(t, 1, stats.TotalConnections)
	check.Equal(t, 1, stats.Observers["projector"])

	assert.NoError(t, g.engine.PlaceBid(3))
	env, err := broadcast.NewEnvelope(g.engine.Snapshot())
	assert.NoError(t, err)
	assert.NoError(t, g.service.Connections().Publish(context.Background(), env))

	next := readEnvelope(t, conn)
	check.Equal(t, events.EventTypeBidPlaced, next.Type)
	check.True(t, bytes.Contains(next.Data, []byte(`"current_bidder":3`)))
}
