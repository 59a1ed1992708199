// Package conflict flags contradictory assertion groups, e.g. two birth
// claims for the same session person.
package conflict

import (
	"strings"

	"github.com/lineagekit/lineage/internal/model"
)

// Severity ranks how serious a conflicting claim group is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Conflict is a group of two or more assertions of the same type about the
// same session person.
type Conflict struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	PersonRef    string   `json:"person_ref"`
	AssertionIDs []string `json:"assertion_ids"`
	Severity     Severity `json:"severity"`
}

// Detect groups assertion ids by (participant, type) and reports every
// group with two or more members. Assertions without participants are
// ignored.
func Detect(assertions []model.Assertion) []Conflict {
	type group struct {
		typ       string
		personRef string
		ids       []string
	}

	grouped := make(map[string]*group)
	var order []string

	for _, assertion := range assertions {
		if len(assertion.Participants) == 0 {
			continue
		}
		for _, participant := range assertion.Participants {
			key := participant.PersonRef + "::" + assertion.Type
			g, ok := grouped[key]
			if !ok {
				g = &group{typ: assertion.Type, personRef: participant.PersonRef}
				grouped[key] = g
				order = append(order, key)
			}
			g.ids = append(g.ids, assertion.ID)
		}
	}

	var conflicts []Conflict
	for _, key := range order {
		g := grouped[key]
		if len(g.ids) < 2 {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ID:           g.personRef + "-" + g.typ,
			Type:         g.typ,
			PersonRef:    g.personRef,
			AssertionIDs: g.ids,
			Severity:     classifySeverity(g.typ),
		})
	}
	return conflicts
}

func classifySeverity(assertionType string) Severity {
	switch strings.ToLower(assertionType) {
	case model.AssertionBirth, model.AssertionDeath:
		return SeverityHigh
	case model.AssertionMarriage:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
