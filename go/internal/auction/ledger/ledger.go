// Package ledger tracks team budgets and the players each team has acquired.
package ledger

import (
	"errors"
	"fmt"

	"github.com/mcdev12/liveauction/go/internal/models"
)

var (
	ErrUnknownTeam        = errors.New("unknown team")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrAlreadyAcquired    = errors.New("player already acquired")
)

// Ledger owns the mutable copy of every team for one auction run.
// It is not safe for concurrent use; the engine serializes access.
type Ledger struct {
	teams map[int]*models.Team
	order []int
}

// New creates a ledger from seed teams. Spent and acquired players are reset.
func New(seed []models.Team) *Ledger {
	l := &Ledger{
		teams: make(map[int]*models.Team, len(seed)),
		order: make([]int, 0, len(seed)),
	}
	for _, t := range seed {
		team := t.Clone()
		team.Spent = 0
		team.Players = []int{}
		l.teams[team.ID] = &team
		l.order = append(l.order, team.ID)
	}
	return l
}

// Team returns a copy of the team with the given id
func (l *Ledger) Team(id int) (models.Team, bool) {
	t, ok := l.teams[id]
	if !ok {
		return models.Team{}, false
	}
	return t.Clone(), true
}

// Remaining returns budget minus spent for a team
func (l *Ledger) Remaining(id int) (int64, error) {
	t, ok := l.teams[id]
	if !ok {
		return 0, ErrUnknownTeam
	}
	return t.Remaining(), nil
}

// CanAfford reports whether the team could pay amount right now
func (l *Ledger) CanAfford(id int, amount int64) bool {
	remaining, err := l.Remaining(id)
	if err != nil {
		return false
	}
	return remaining >= amount
}

// Commit charges the team for the player and marks the player sold to it.
func (l *Ledger) Commit(teamID int, player *models.Player, price int64) error {
	t, ok := l.teams[teamID]
	if !ok {
		return ErrUnknownTeam
	}
	if player.IsSold() {
		return fmt.Errorf("player %d: %w", player.ID, ErrAlreadyAcquired)
	}
	for _, id := range t.Players {
		if id == player.ID {
			return fmt.Errorf("player %d: %w", player.ID, ErrAlreadyAcquired)
		}
	}
	if t.Remaining() < price {
		return fmt.Errorf("team %d needs %d, has %d: %w", teamID, price, t.Remaining(), ErrInsufficientBudget)
	}

	t.Spent += price
	t.Players = append(t.Players, player.ID)
	player.MarkSold(teamID, price)
	return nil
}

// Teams returns copies of all teams in seed order
func (l *Ledger) Teams() []models.Team {
	out := make([]models.Team, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.teams[id].Clone())
	}
	return out
}

// Verify checks spent <= budget and that spent equals the sold prices of the
// acquired players.
func (l *Ledger) Verify(players map[int]*models.Player) error {
	for _, id := range l.order {
		t := l.teams[id]
		if t.Spent > t.Budget {
			return fmt.Errorf("team %d spent %d over budget %d", t.ID, t.Spent, t.Budget)
		}
		var sum int64
		for _, pid := range t.Players {
			p, ok := players[pid]
			if !ok || p.SoldPrice == nil || p.TeamID == nil || *p.TeamID != t.ID {
				return fmt.Errorf("team %d lists player %d it does not own", t.ID, pid)
			}
			sum += *p.SoldPrice
		}
		if sum != t.Spent {
			return fmt.Errorf("team %d spent %d but acquired players total %d", t.ID, t.Spent, sum)
		}
	}
	return nil
}
