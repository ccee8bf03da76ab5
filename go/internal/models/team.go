package models

// Team represents a bidding team with a fixed budget
type Team struct {
	ID        int    `json:"id" yaml:"id" toml:"id"`
	Name      string `json:"name" yaml:"name" toml:"name"`
	ShortName string `json:"short_name" yaml:"short_name" toml:"short_name"`
	City      string `json:"city" yaml:"city" toml:"city"`
	Color     string `json:"color" yaml:"color" toml:"color"`
	Logo      string `json:"logo" yaml:"logo" toml:"logo"`
	Budget    int64  `json:"budget" yaml:"budget" toml:"budget"`
	Spent     int64  `json:"spent" yaml:"-" toml:"-"`
	Players   []int  `json:"players" yaml:"-" toml:"-"` // acquired player ids, in purchase order
}

// Remaining returns the unspent part of the budget
func (t *Team) Remaining() int64 {
	return t.Budget - t.Spent
}

// Clone returns a deep copy of the team
func (t Team) Clone() Team {
	t.Players = append([]int(nil), t.Players...)
	if t.Players == nil {
		t.Players = []int{}
	}
	return t
}
