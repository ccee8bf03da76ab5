package events

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType names the transition that produced a snapshot
type EventType string

const (
	EventTypeAuctionStarted   EventType = "AuctionStarted"
	EventTypeAuctionResumed   EventType = "AuctionResumed"
	EventTypeAuctionPaused    EventType = "AuctionPaused"
	EventTypeAuctionReset     EventType = "AuctionReset"
	EventTypeAuctionCompleted EventType = "AuctionCompleted"
	EventTypeLotOpened        EventType = "LotOpened"
	EventTypeRoundStarted     EventType = "RoundStarted"
	EventTypeBidPlaced        EventType = "BidPlaced"
	EventTypeBidUndone        EventType = "BidUndone"
	EventTypeLotSold          EventType = "LotSold"
	EventTypeLotUnsold        EventType = "LotUnsold"
	EventTypeLotSkipped       EventType = "LotSkipped"
	EventTypeBiddingReopened  EventType = "BiddingReopened"
	EventTypeTimerTick        EventType = "TimerTick"
)

// Subject returns the NATS subject for this event type under prefix,
// e.g. "auction.events.bid_placed".
func (t EventType) Subject(prefix string) string {
	return prefix + "." + snake(string(t))
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Envelope is the base structure for everything the auction publishes
type Envelope struct {
	ID        string          `json:"id"`        // Event UUID
	Type      EventType       `json:"type"`      // Last transition folded into Data
	Version   uint64          `json:"version"`   // Snapshot version
	Timestamp time.Time       `json:"timestamp"` // Publish time
	Data      json.RawMessage `json:"data"`      // Snapshot
}
