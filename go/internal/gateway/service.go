package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service is the observer and operator gateway: websocket fan-out, state
// queries, commands and health.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	commandHandler    *CommandHandler
	health            *HealthChecker
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
}

func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// HealthDeps are the optional connections /health reports on
type HealthDeps struct {
	DB   pinger
	NATS connectedness
}

// AuctionBackend is everything the gateway needs from the engine
type AuctionBackend interface {
	Auction
	Verify() error
}

func NewService(config Config, auction AuctionBackend, deps HealthDeps) *Service {
	cm := NewConnectionManager(config.ConnectionConfig, auction)
	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm),
		stateHandler:      NewStateHandler(auction),
		commandHandler:    NewCommandHandler(auction),
		health:            NewHealthChecker(auction, cm, deps.DB, deps.NATS),
	}
}

// Connections is the broadcast sink feeding websocket observers
func (s *Service) Connections() *ConnectionManager {
	return s.connectionManager
}

// Start runs the broadcast loop until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting auction gateway")
	s.connectionManager.Start(ctx)
	log.Info().Msg("auction gateway stopped")
	return nil
}

// RegisterRoutes registers every gateway route
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	s.commandHandler.RegisterCommandRoutes(mux)
	mux.Handle("GET /health", s.health)
	log.Info().Msg("auction gateway routes registered")
}
