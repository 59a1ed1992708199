package project

import (
	"github.com/lineagekit/lineage/internal/match"
	"github.com/lineagekit/lineage/internal/model"
)

// Suggestion pairs an unresolved session person with ranked match
// candidates drawn from the indexed person records.
type Suggestion struct {
	PersonID string            `json:"person_id"`
	Name     string            `json:"name"`
	Matches  []match.Candidate `json:"matches"`
}

// SuggestMatches ranks existing person records against every session
// person that has no matched_to link yet. Candidate ids are vault paths.
// Person records carry no dates or places of their own, so ranking runs
// on the name feature with the other features at their neutral defaults.
func (e *Engine) SuggestMatches(sess *model.Session, opts match.Options) []Suggestion {
	entries := e.indexer.PersonEntries()

	var out []Suggestion
	for i := range sess.Persons {
		p := &sess.Persons[i]
		if p.MatchedTo != "" {
			continue
		}

		candidates := make([]match.Candidate, 0, len(entries))
		for _, entry := range entries {
			candidates = append(candidates, match.Candidate{
				ID: entry.Path,
				Features: match.Features{
					Name: match.Feature(match.ScoreName(p.Name, entry.Name)),
				},
				Data: entry.Name,
			})
		}
		out = append(out, Suggestion{
			PersonID: p.ID,
			Name:     p.Name,
			Matches:  match.Rank(candidates, opts),
		})
	}
	return out
}
