// Package bids records the bids placed on the live lot.
package bids

import (
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/liveauction/go/internal/models"
)

var (
	ErrBidTooLow      = errors.New("bid does not beat the current price")
	ErrAlreadyLeading = errors.New("team already leads")
	ErrEmptyLedger    = errors.New("no bids to undo")
)

// Ledger is the ordered bid record of a single lot. Price and leader are
// derived from the newest entry, falling back to the base price.
type Ledger struct {
	basePrice int64
	entries   []models.Bid // oldest first
}

// NewLedger creates an empty ledger for a lot with the given base price
func NewLedger(basePrice int64) *Ledger {
	return &Ledger{basePrice: basePrice}
}

// Place records a bid. The first bid must be at least the base price; every
// later bid must beat the newest one and come from a different team.
func (l *Ledger) Place(teamID int, amount int64, at time.Time) error {
	if len(l.entries) == 0 {
		if amount < l.basePrice {
			return fmt.Errorf("%d below base price %d: %w", amount, l.basePrice, ErrBidTooLow)
		}
	} else {
		top := l.entries[len(l.entries)-1]
		if top.TeamID == teamID {
			return ErrAlreadyLeading
		}
		if amount <= top.Amount {
			return fmt.Errorf("%d not above %d: %w", amount, top.Amount, ErrBidTooLow)
		}
	}

	l.entries = append(l.entries, models.Bid{TeamID: teamID, Amount: amount, PlacedAt: at})
	return nil
}

// UndoLast removes and returns the newest bid
func (l *Ledger) UndoLast() (models.Bid, error) {
	if len(l.entries) == 0 {
		return models.Bid{}, ErrEmptyLedger
	}
	last := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return last, nil
}

// CurrentPrice returns the newest bid amount, or the base price when empty
func (l *Ledger) CurrentPrice() int64 {
	if len(l.entries) == 0 {
		return l.basePrice
	}
	return l.entries[len(l.entries)-1].Amount
}

// Leader returns the team holding the newest bid
func (l *Ledger) Leader() (int, bool) {
	if len(l.entries) == 0 {
		return 0, false
	}
	return l.entries[len(l.entries)-1].TeamID, true
}

func (l *Ledger) BasePrice() int64 { return l.basePrice }

func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns a copy of the bids, most recent first
func (l *Ledger) Entries() []models.Bid {
	out := make([]models.Bid, len(l.entries))
	for i, b := range l.entries {
		out[len(l.entries)-1-i] = b
	}
	return out
}
