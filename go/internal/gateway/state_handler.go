package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mcdev12/liveauction/go/internal/auction/engine"
	"github.com/mcdev12/liveauction/go/internal/models"
	"github.com/rs/zerolog/log"
)

// SnapshotSource exposes the latest auction snapshot
type SnapshotSource interface {
	Snapshot() *engine.Snapshot
}

// TeamView is one team with the players it bought
type TeamView struct {
	engine.TeamSummary
	Squad []models.Player `json:"squad"`
}

// StateHandler handles HTTP requests for auction state
type StateHandler struct {
	source SnapshotSource
}

func NewStateHandler(source SnapshotSource) *StateHandler {
	return &StateHandler{source: source}
}

// HandleGetState handles GET /api/auction/state
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.source.Snapshot())
}

// HandleGetTeam handles GET /api/auction/teams/{id}
func (h *StateHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid team ID", http.StatusBadRequest)
		return
	}

	s := h.source.Snapshot()
	team, ok := s.Team(id)
	if !ok {
		http.Error(w, "Team not found", http.StatusNotFound)
		return
	}

	view := TeamView{TeamSummary: team, Squad: make([]models.Player, 0, len(team.Players))}
	for _, pid := range team.Players {
		if p, ok := s.Player(pid); ok {
			view.Squad = append(view.Squad, p)
		}
	}
	writeJSON(w, http.StatusOK, view)
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auction/state", h.HandleGetState)
	mux.HandleFunc("GET /api/auction/teams/{id}", h.HandleGetTeam)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
