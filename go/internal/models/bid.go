package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid represents a single bid on the live lot.
type Bid struct {
	TeamID   int       `json:"team_id"`
	Amount   int64     `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

// SaleNotice describes a completed sale while it is on display.
type SaleNotice struct {
	ID         uuid.UUID `json:"id"`
	PlayerID   int       `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Avatar     string    `json:"player_avatar"`
	TeamID     int       `json:"team_id"`
	TeamName   string    `json:"team_name"`
	TeamLogo   string    `json:"team_logo"`
	TeamColor  string    `json:"team_color"`
	SoldPrice  int64     `json:"sold_price"`
	SoldAt     time.Time `json:"sold_at"`
}
