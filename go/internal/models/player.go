package models

// PlayerStatus defines where a player is in the auction lifecycle.
type PlayerStatus string

const (
	PlayerStatusAvailable PlayerStatus = "available"
	PlayerStatusLive      PlayerStatus = "live"
	PlayerStatusSold      PlayerStatus = "sold"
	PlayerStatusUnsold    PlayerStatus = "unsold"
)

// Player represents a player (the auctioned item) in the catalog
type Player struct {
	ID          int          `json:"id" yaml:"id" toml:"id"`
	Name        string       `json:"name" yaml:"name" toml:"name"`
	Position    string       `json:"position" yaml:"position" toml:"position"`
	Nationality string       `json:"nationality" yaml:"nationality" toml:"nationality"`
	Age         int          `json:"age" yaml:"age" toml:"age"`
	Rating      int          `json:"rating" yaml:"rating" toml:"rating"`
	Avatar      string       `json:"avatar" yaml:"avatar" toml:"avatar"`
	BasePrice   int64        `json:"base_price" yaml:"base_price" toml:"base_price"`
	Status      PlayerStatus `json:"status" yaml:"-" toml:"-"`
	SoldPrice   *int64       `json:"sold_price,omitempty" yaml:"-" toml:"-"` // set iff sold
	TeamID      *int         `json:"team_id,omitempty" yaml:"-" toml:"-"`    // set iff sold
}

// IsSold reports whether the player has been sold to a team
func (p *Player) IsSold() bool {
	return p.Status == PlayerStatusSold
}

// MarkSold records the sale of the player to a team
func (p *Player) MarkSold(teamID int, price int64) {
	p.Status = PlayerStatusSold
	p.SoldPrice = &price
	p.TeamID = &teamID
}

// MarkUnsold flags the player for the next round
func (p *Player) MarkUnsold() {
	p.Status = PlayerStatusUnsold
	p.SoldPrice = nil
	p.TeamID = nil
}

// Clone returns a deep copy of the player
func (p Player) Clone() Player {
	if p.SoldPrice != nil {
		price := *p.SoldPrice
		p.SoldPrice = &price
	}
	if p.TeamID != nil {
		teamID := *p.TeamID
		p.TeamID = &teamID
	}
	return p
}
