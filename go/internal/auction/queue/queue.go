// Package queue holds the players waiting to be auctioned, round by round.
package queue

import (
	"errors"

	"github.com/mcdev12/liveauction/go/internal/models"
)

// ErrQueueExhausted is returned by Next when no round can be formed.
var ErrQueueExhausted = errors.New("queue exhausted")

// Queue is a FIFO of players for the current round plus a pool of players
// that went unsold during it. The pool becomes the next round's queue once the
// current one runs dry.
//
// Not safe for concurrent use.
type Queue struct {
	pending   []*models.Player
	unsold    []*models.Player
	round     int
	maxRounds int
}

// New queues every available player in catalog order. maxRounds <= 0 means
// rounds are promoted for as long as unsold players remain.
func New(players []*models.Player, maxRounds int) *Queue {
	q := &Queue{
		pending:   make([]*models.Player, 0, len(players)),
		round:     1,
		maxRounds: maxRounds,
	}
	for _, p := range players {
		if p.Status == models.PlayerStatusAvailable {
			q.pending = append(q.pending, p)
		}
	}
	return q
}

// Next removes and returns the head of the current round. When the round is
// empty the unsold pool is promoted (players reset to available) and Next
// retries once. promoted reports whether a new round began.
func (q *Queue) Next() (player *models.Player, promoted bool, err error) {
	if len(q.pending) == 0 && q.promote() {
		promoted = true
	}
	if len(q.pending) == 0 {
		return nil, promoted, ErrQueueExhausted
	}

	player = q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return player, promoted, nil
}

func (q *Queue) promote() bool {
	if len(q.unsold) == 0 {
		return false
	}
	if q.maxRounds > 0 && q.round >= q.maxRounds {
		return false
	}
	for _, p := range q.unsold {
		p.Status = models.PlayerStatusAvailable
	}
	q.pending = q.unsold
	q.unsold = nil
	q.round++
	return true
}

// RequeueAsUnsold marks the player unsold and parks it for the next round.
func (q *Queue) RequeueAsUnsold(p *models.Player) {
	p.MarkUnsold()
	q.unsold = append(q.unsold, p)
}

// Round returns the 1-based number of the current round
func (q *Queue) Round() int {
	return q.round
}

// Pending returns how many players are left in the current round
func (q *Queue) Pending() int {
	return len(q.pending)
}

// Unsold returns how many players wait for the next round
func (q *Queue) Unsold() int {
	return len(q.unsold)
}

// Exhausted reports whether Next would fail
func (q *Queue) Exhausted() bool {
	if len(q.pending) > 0 {
		return false
	}
	return len(q.unsold) == 0 || (q.maxRounds > 0 && q.round >= q.maxRounds)
}
