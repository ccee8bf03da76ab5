// Package catalog loads the players and teams an auction is seeded with.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcdev12/liveauction/go/internal/models"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Format is the encoding of a catalog file
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Seed is the immutable input of an auction run: players in auction order
// and the teams bidding for them.
type Seed struct {
	Teams   []models.Team   `json:"teams" yaml:"teams" toml:"teams"`
	Players []models.Player `json:"players" yaml:"players" toml:"players"`
}

// Default returns the built-in catalog of 6 teams and 22 players.
func Default() (Seed, error) {
	return Parse(defaultCatalog, FormatYAML)
}

// Load reads a catalog file, picking the decoder from the file extension.
func Load(path string) (Seed, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Seed{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	seed, err := Parse(data, format)
	if err != nil {
		return Seed{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return seed, nil
}

// FormatFromPath maps a file extension to a Format
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q", filepath.Ext(path))
	}
}

// Parse decodes and validates a catalog.
func Parse(data []byte, format Format) (Seed, error) {
	var seed Seed
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &seed)
	case FormatTOML:
		err = toml.Unmarshal(data, &seed)
	case FormatJSON:
		err = json.Unmarshal(data, &seed)
	default:
		return Seed{}, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err != nil {
		return Seed{}, fmt.Errorf("decode %s catalog: %w", format, err)
	}

	seed = seed.Clone()
	if err := seed.Validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

// Validate checks ids are unique and positive and every amount makes sense.
func (s Seed) Validate() error {
	if len(s.Teams) == 0 {
		return fmt.Errorf("%w: no teams", ErrInvalidCatalog)
	}

	teamIDs := make(map[int]struct{}, len(s.Teams))
	for _, t := range s.Teams {
		if t.ID <= 0 {
			return fmt.Errorf("%w: team %q has id %d", ErrInvalidCatalog, t.Name, t.ID)
		}
		if _, dup := teamIDs[t.ID]; dup {
			return fmt.Errorf("%w: duplicate team id %d", ErrInvalidCatalog, t.ID)
		}
		if t.Budget <= 0 {
			return fmt.Errorf("%w: team %d has budget %d", ErrInvalidCatalog, t.ID, t.Budget)
		}
		teamIDs[t.ID] = struct{}{}
	}

	playerIDs := make(map[int]struct{}, len(s.Players))
	for _, p := range s.Players {
		if p.ID <= 0 {
			return fmt.Errorf("%w: player %q has id %d", ErrInvalidCatalog, p.Name, p.ID)
		}
		if _, dup := playerIDs[p.ID]; dup {
			return fmt.Errorf("%w: duplicate player id %d", ErrInvalidCatalog, p.ID)
		}
		if p.BasePrice <= 0 {
			return fmt.Errorf("%w: player %d has base price %d", ErrInvalidCatalog, p.ID, p.BasePrice)
		}
		playerIDs[p.ID] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy with every player available and every team
// unspent.
func (s Seed) Clone() Seed {
	out := Seed{
		Teams:   make([]models.Team, len(s.Teams)),
		Players: make([]models.Player, len(s.Players)),
	}
	for i, t := range s.Teams {
		t = t.Clone()
		t.Spent = 0
		t.Players = []int{}
		out.Teams[i] = t
	}
	for i, p := range s.Players {
		p = p.Clone()
		p.Status = models.PlayerStatusAvailable
		p.SoldPrice = nil
		p.TeamID = nil
		out.Players[i] = p
	}
	return out
}
