package project

import (
	"strings"

	"github.com/lineagekit/lineage/internal/vault"
)

// projectedEntity is a previously projected record, loaded from one of
// the links in a session's projected_entities frontmatter list.
type projectedEntity struct {
	Path             string
	LineageType      string
	LineageID        string
	Name             string
	Title            string
	RecordType       string
	Repository       string
	EventType        string
	Date             string
	Place            string
	Participants     []string
	RelationshipType string
	PersonA          string
	PersonB          string
}

// entityIndex holds every resolvable projected entity of a session,
// so reruns update records in place instead of duplicating them.
type entityIndex struct {
	entries []projectedEntity
}

func loadEntityIndex(v vault.Vault, links []string) *entityIndex {
	idx := &entityIndex{}
	for _, link := range links {
		path, ok := vault.ResolveLink(v, link)
		if !ok {
			continue
		}
		fm, err := vault.ReadFrontmatter(v, path)
		if err != nil {
			continue
		}
		idx.entries = append(idx.entries, projectedEntity{
			Path:             path,
			LineageType:      fm.Str("lineage_type"),
			LineageID:        fm.Str("lineage_id"),
			Name:             fm.Str("name"),
			Title:            fm.Str("title"),
			RecordType:       fm.Str("record_type"),
			Repository:       fm.Str("repository"),
			EventType:        fm.Str("event_type"),
			Date:             fm.Str("date"),
			Place:            fm.Str("place"),
			Participants:     fm.StrSlice("participants"),
			RelationshipType: fm.Str("relationship_type"),
			PersonA:          fm.Str("person_a"),
			PersonB:          fm.Str("person_b"),
		})
	}
	return idx
}

func (idx *entityIndex) findPerson(name string) *projectedEntity {
	for i := range idx.entries {
		e := &idx.entries[i]
		if e.LineageType != "person" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(e.Name), strings.TrimSpace(name)) {
			return e
		}
	}
	return nil
}

// findEvent matches on event type and the exact participant link set.
// Date and place only disqualify when present on both sides; a record
// without participants never matches a non-empty search.
func (idx *entityIndex) findEvent(eventType, date, place string, participants []string) *projectedEntity {
	for i := range idx.entries {
		e := &idx.entries[i]
		if e.LineageType != "event" || !strings.EqualFold(e.EventType, eventType) {
			continue
		}
		if !sameLinkSet(participants, e.Participants) {
			continue
		}
		if date != "" && e.Date != "" && date != e.Date {
			continue
		}
		if place != "" && e.Place != "" && !strings.EqualFold(place, e.Place) {
			continue
		}
		return e
	}
	return nil
}

// findRelationship matches the pair unordered for symmetric kinds such
// as marriage, and ordered for parent-child.
func (idx *entityIndex) findRelationship(relType, a, b string, ordered bool) *projectedEntity {
	for i := range idx.entries {
		e := &idx.entries[i]
		if e.LineageType != "relationship" || !strings.EqualFold(e.RelationshipType, relType) {
			continue
		}
		if ordered {
			if sameLink(e.PersonA, a) && sameLink(e.PersonB, b) {
				return e
			}
			continue
		}
		if (sameLink(e.PersonA, a) && sameLink(e.PersonB, b)) ||
			(sameLink(e.PersonA, b) && sameLink(e.PersonB, a)) {
			return e
		}
	}
	return nil
}

func (idx *entityIndex) add(e projectedEntity) {
	idx.entries = append(idx.entries, e)
}

// findByLineageID scans the whole vault for a record carrying the id.
// This is the fallback when a person is absent from the session's own
// projected entity list.
func findByLineageID(v vault.Vault, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	paths, err := v.List()
	if err != nil {
		return "", false
	}
	for _, p := range paths {
		fm, err := vault.ReadFrontmatter(v, p)
		if err != nil {
			continue
		}
		if fm.Str("lineage_id") == id {
			return p, true
		}
	}
	return "", false
}

func sameLink(a, b string) bool {
	return strings.EqualFold(vault.ExtractLinkTarget(a), vault.ExtractLinkTarget(b))
}

func sameLinkSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[strings.ToLower(vault.ExtractLinkTarget(s))] = true
	}
	for _, s := range b {
		if !seen[strings.ToLower(vault.ExtractLinkTarget(s))] {
			return false
		}
	}
	return true
}
