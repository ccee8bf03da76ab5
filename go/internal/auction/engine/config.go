package engine

import (
	"fmt"
	"time"

	"github.com/mcdev12/liveauction/go/internal/auction/bids"
)

// Config tunes the auction's timing and bidding rules
type Config struct {
	BidDuration    time.Duration        `yaml:"bid_duration"`    // countdown length after each bid
	Tick           time.Duration        `yaml:"tick"`            // countdown granularity
	SaleDisplay    time.Duration        `yaml:"sale_display"`    // how long a sale notice stays up
	UnsoldCooldown time.Duration        `yaml:"unsold_cooldown"` // pause before bidding reopens after unsold/skip
	Increments     bids.IncrementPolicy `yaml:"increments"`
	MaxRounds      int                  `yaml:"max_rounds"` // 0 = unbounded
}

func DefaultConfig() Config {
	return Config{
		BidDuration:    180 * time.Second,
		Tick:           time.Second,
		SaleDisplay:    5 * time.Second,
		UnsoldCooldown: 800 * time.Millisecond,
		Increments:     bids.DefaultIncrementPolicy(),
	}
}

func (c Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Tick)
	}
	if c.BidDuration < c.Tick {
		return fmt.Errorf("bid duration %s is shorter than one tick %s", c.BidDuration, c.Tick)
	}
	if c.SaleDisplay < 0 || c.UnsoldCooldown < 0 {
		return fmt.Errorf("display delays cannot be negative")
	}
	if c.Increments.Step <= 0 || c.Increments.HighStep <= 0 {
		return fmt.Errorf("bid increments must be positive")
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("max rounds cannot be negative, got %d", c.MaxRounds)
	}
	return nil
}
