package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/liveauction/go/internal/auction/countdown"
	"github.com/mcdev12/liveauction/go/internal/auction/events"
	"github.com/mcdev12/liveauction/go/internal/models"
)

// Phase is the engine's position in the lot lifecycle
type Phase string

const (
	PhaseIdle       Phase = "idle"        // no lot loaded, not running
	PhaseLotWaiting Phase = "lot_waiting" // lot live, no bid yet
	PhaseLotActive  Phase = "lot_active"  // at least one bid
	PhaseResolving  Phase = "resolving"   // sale on display or unsold cooldown
	PhaseComplete   Phase = "complete"    // nothing left to auction
)

// TeamSummary is a team as observers see it
type TeamSummary struct {
	models.Team
	Remaining     int64   `json:"remaining"`
	BudgetUsedPct float64 `json:"budget_used_pct"`
}

// Stats aggregates the catalog
type Stats struct {
	Sold       int   `json:"sold"`
	Unsold     int   `json:"unsold"`
	Available  int   `json:"available"` // available or live
	TotalSpent int64 `json:"total_spent"`
}

// Snapshot is an immutable view of the whole auction after one transition.
// Nothing in it is shared with the engine.
type Snapshot struct {
	Version        uint64             `json:"version"`
	Event          events.EventType   `json:"event,omitempty"`
	Phase          Phase              `json:"phase"`
	Running        bool               `json:"is_running"`
	BiddingStarted bool               `json:"bidding_started"`
	Round          int                `json:"round"`
	LotID          *uuid.UUID         `json:"lot_id,omitempty"`
	CurrentPlayer  *models.Player     `json:"current_player"`
	CurrentPrice   int64              `json:"current_price"`
	NextBid        int64              `json:"next_bid"`
	LeaderID       *int               `json:"current_bidder"`
	TimeRemaining  int                `json:"time_remaining"` // seconds
	TimerState     countdown.State    `json:"timer_state"`
	Bids           []models.Bid       `json:"bid_history"` // most recent first
	BidCount       int                `json:"total_bids"`
	LastSale       *models.SaleNotice `json:"last_sale"`
	Players        []models.Player    `json:"players"`
	Teams          []TeamSummary      `json:"teams"`
	Stats          Stats              `json:"stats"`
	Timestamp      time.Time          `json:"timestamp"`
}

// Team returns the summary of one team
func (s *Snapshot) Team(id int) (TeamSummary, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return TeamSummary{}, false
}

// Player returns one catalog player
func (s *Snapshot) Player(id int) (models.Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return models.Player{}, false
}

// snapshot must be called with e.mu held
func (e *Engine) snapshot(event events.EventType) *Snapshot {
	s := &Snapshot{
		Version:       e.version,
		Event:         event,
		Phase:         e.phase,
		Running:       e.running,
		Round:         e.queue.Round(),
		TimeRemaining: int(e.timer.Remaining() / time.Second),
		TimerState:    e.timer.State(),
		Bids:          []models.Bid{},
		Players:       make([]models.Player, 0, len(e.players)),
		Timestamp:     e.clock.Now(),
	}

	if l := e.lot; l != nil {
		id := l.id
		player := l.player.Clone()
		s.LotID = &id
		s.CurrentPlayer = &player
		s.CurrentPrice = l.bids.CurrentPrice()
		s.NextBid = e.cfg.Increments.NextAmount(l.bids)
		if leader, ok := l.bids.Leader(); ok {
			s.LeaderID = &leader
		}
		s.Bids = l.bids.Entries()
		s.BidCount = l.bids.Len()
		s.BiddingStarted = s.BidCount > 0
	}

	if e.lastSale != nil {
		sale := *e.lastSale
		s.LastSale = &sale
	}

	for _, p := range e.players {
		s.Players = append(s.Players, p.Clone())
		switch p.Status {
		case models.PlayerStatusSold:
			s.Stats.Sold++
		case models.PlayerStatusUnsold:
			s.Stats.Unsold++
		default:
			s.Stats.Available++
		}
	}

	teams := e.teams.Teams()
	s.Teams = make([]TeamSummary, 0, len(teams))
	for _, t := range teams {
		summary := TeamSummary{Team: t, Remaining: t.Remaining()}
		if t.Budget > 0 {
			summary.BudgetUsedPct = float64(t.Spent) / float64(t.Budget) * 100
		}
		s.Teams = append(s.Teams, summary)
		s.Stats.TotalSpent += t.Spent
	}
	return s
}
