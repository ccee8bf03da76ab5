package catalog

import (
	"strconv"
	"strings"

	"github.com/mcdev12/liveauction/go/internal/models"
	"github.com/sahilm/fuzzy"
)

type teamNames []models.Team

func (t teamNames) String(i int) string { return t[i].ShortName + " " + t[i].Name }
func (t teamNames) Len() int            { return len(t) }

// FindTeam resolves an operator-typed team reference. A numeric id, short
// name or full name matches exactly (case-insensitively); anything else is
// matched fuzzily and the best-scoring team wins.
func FindTeam(teams []models.Team, query string) (models.Team, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.Team{}, false
	}
	if id, err := strconv.Atoi(query); err == nil {
		for _, t := range teams {
			if t.ID == id {
				return t, true
			}
		}
		return models.Team{}, false
	}
	for _, t := range teams {
		if strings.EqualFold(t.ShortName, query) || strings.EqualFold(t.Name, query) {
			return t, true
		}
	}

	matches := fuzzy.FindFrom(query, teamNames(teams))
	if len(matches) == 0 {
		return models.Team{}, false
	}
	return teams[matches[0].Index], true
}
