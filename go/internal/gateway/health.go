package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type HealthStatus struct {
	Healthy           bool     `json:"healthy"`
	Version           uint64   `json:"version"`
	Phase             string   `json:"phase"`
	Connections       int      `json:"connections"`
	LedgerConsistent  bool     `json:"ledger_consistent"`
	DatabaseConnected *bool    `json:"database_connected,omitempty"`
	NATSConnected     *bool    `json:"nats_connected,omitempty"`
	Errors            []string `json:"errors"`
}

// Verifier checks the engine's own invariants
type Verifier interface {
	SnapshotSource
	Verify() error
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type connectedness interface {
	IsConnected() bool
}

// HealthChecker reports on the engine and whichever sinks are configured.
type HealthChecker struct {
	auction     Verifier
	connections *ConnectionManager
	db          pinger
	nats        connectedness
}

// NewHealthChecker creates a checker. db and nats may be nil when the
// corresponding sink is disabled.
func NewHealthChecker(auction Verifier, connections *ConnectionManager, db pinger, nats connectedness) *HealthChecker {
	return &HealthChecker{auction: auction, connections: connections, db: db, nats: nats}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	s := h.auction.Snapshot()
	status := HealthStatus{
		Healthy:          true,
		Version:          s.Version,
		Phase:            string(s.Phase),
		LedgerConsistent: true,
		Errors:           []string{},
	}
	if h.connections != nil {
		status.Connections = h.connections.GetConnectionStats().TotalConnections
	}

	if err := h.auction.Verify(); err != nil {
		status.Healthy = false
		status.LedgerConsistent = false
		status.Errors = append(status.Errors, fmt.Sprintf("ledger check failed: %v", err))
	}

	if h.db != nil {
		connected := h.db.PingContext(ctx) == nil
		status.DatabaseConnected = &connected
		if !connected {
			status.Healthy = false
			status.Errors = append(status.Errors, "database ping failed")
		}
	}

	if h.nats != nil {
		connected := h.nats.IsConnected()
		status.NATSConnected = &connected
		if !connected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
