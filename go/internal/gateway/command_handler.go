package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/mcdev12/liveauction/go/internal/auction/engine"
	"github.com/mcdev12/liveauction/go/internal/catalog"
	"github.com/mcdev12/liveauction/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Auction is the command surface of the engine
type Auction interface {
	SnapshotSource
	Start() error
	Pause() error
	PlaceBid(teamID int) error
	UndoBid() error
	Sell() error
	MarkUnsold() error
	Skip() error
	Reset() error
	Teams() []models.Team
}

// CommandResponse is returned by every command endpoint
type CommandResponse struct {
	Accepted bool             `json:"accepted"`
	Code     string           `json:"code,omitempty"`
	Message  string           `json:"message,omitempty"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
}

// BidRequest names the bidder by id or by (short) name
type BidRequest struct {
	TeamID int    `json:"team_id"`
	Team   string `json:"team"`
}

// CommandHandler exposes the operator controls over HTTP
type CommandHandler struct {
	auction Auction
}

func NewCommandHandler(auction Auction) *CommandHandler {
	return &CommandHandler{auction: auction}
}

// RegisterCommandRoutes registers the POST /api/auction/* commands
func (h *CommandHandler) RegisterCommandRoutes(mux *http.ServeMux) {
	commands := map[string]func() error{
		"start":  h.auction.Start,
		"pause":  h.auction.Pause,
		"undo":   h.auction.UndoBid,
		"sell":   h.auction.Sell,
		"unsold": h.auction.MarkUnsold,
		"skip":   h.auction.Skip,
		"reset":  h.auction.Reset,
	}
	for name, cmd := range commands {
		mux.HandleFunc("POST /api/auction/"+name, func(w http.ResponseWriter, r *http.Request) {
			h.respond(w, name, cmd())
		})
	}
	mux.HandleFunc("POST /api/auction/bid", h.HandleBid)
}

// HandleBid handles POST /api/auction/bid
func (h *CommandHandler) HandleBid(w http.ResponseWriter, r *http.Request) {
	var req BidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	teamID := req.TeamID
	if teamID == 0 && req.Team != "" {
		team, ok := catalog.FindTeam(h.auction.Teams(), req.Team)
		if !ok {
			h.respond(w, "bid", engine.ErrUnknownTeam)
			return
		}
		teamID = team.ID
	}
	if teamID == 0 {
		http.Error(w, "team_id or team is required", http.StatusBadRequest)
		return
	}

	h.respond(w, "bid", h.auction.PlaceBid(teamID))
}

func (h *CommandHandler) respond(w http.ResponseWriter, command string, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, CommandResponse{Accepted: true, Snapshot: h.auction.Snapshot()})
	case engine.IsRejection(err):
		writeJSON(w, http.StatusConflict, CommandResponse{
			Code:    engine.Code(err),
			Message: err.Error(),
		})
	default:
		log.Error().Err(err).Str("command", command).Msg("command failed")
		writeJSON(w, http.StatusInternalServerError, CommandResponse{
			Code:    engine.Code(err),
			Message: "internal error",
		})
	}
}
