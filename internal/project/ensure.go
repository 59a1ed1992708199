package project

import (
	"fmt"
	"strings"

	"github.com/lineagekit/lineage/internal/filename"
	"github.com/lineagekit/lineage/internal/ident"
	"github.com/lineagekit/lineage/internal/model"
	"github.com/lineagekit/lineage/internal/vault"
)

// ensurePersonFile resolves a session person to a vault record, creating
// one when nothing matches. Resolution order: already resolved this run,
// the person's matched_to link, the session's projected entities by name,
// a lineage_id carried on the stub, then a fresh record.
func (e *Engine) ensurePersonFile(st *state, sum *Summary, p *model.Person) (string, error) {
	if path, ok := st.personFiles[p.ID]; ok {
		return path, nil
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Unknown Person"
	}

	if p.MatchedTo != "" {
		if path, ok := vault.ResolveLink(e.vault, p.MatchedTo); ok {
			return e.updatePersonFile(st, sum, p, path)
		}
		sum.Notes = append(sum.Notes, fmt.Sprintf("match link %q for person %q did not resolve", p.MatchedTo, name))
	}

	if ent := st.entities.findPerson(name); ent != nil && e.vault.Exists(ent.Path) {
		return e.updatePersonFile(st, sum, p, ent.Path)
	}

	if lid, ok := p.Extra["lineage_id"].(string); ok {
		if path, found := findByLineageID(e.vault, lid); found {
			return e.updatePersonFile(st, sum, p, path)
		}
	}

	base := e.settings.EntityFolder("person") + "/" + filename.Person(name) + ".md"
	if e.vault.Exists(base) {
		fm, err := vault.ReadFrontmatter(e.vault, base)
		if err == nil && fm.Str("lineage_type") == "person" &&
			strings.EqualFold(strings.TrimSpace(fm.Str("name")), name) {
			return e.updatePersonFile(st, sum, p, base)
		}
	}

	path := vault.UniquePath(e.vault, base)
	if err := e.vault.Create(path, personRecord(ident.New(), name, p.Sex)); err != nil {
		return "", fmt.Errorf("create person %q: %w", name, err)
	}
	sum.PersonsCreated++
	sum.Created = append(sum.Created, path)
	st.personFiles[p.ID] = path
	st.registerProjected(path)
	st.entities.add(projectedEntity{Path: path, LineageType: "person", Name: name})
	e.indexer.Update(path)
	return path, nil
}

func (e *Engine) updatePersonFile(st *state, sum *Summary, p *model.Person, path string) (string, error) {
	fm, err := vault.ReadFrontmatter(e.vault, path)
	if err != nil {
		return "", fmt.Errorf("read person record %s: %w", path, err)
	}
	id := fm.Str("lineage_id")
	if id == "" {
		id = ident.New()
	}

	updates := []vault.Field{
		{Key: "lineage_type", Value: "person"},
		{Key: "lineage_id", Value: id},
	}
	if strings.TrimSpace(p.Name) != "" {
		updates = append(updates, vault.Field{Key: "name", Value: strings.TrimSpace(p.Name)})
	}
	if p.Sex != "" {
		updates = append(updates, vault.Field{Key: "sex", Value: p.Sex})
	}
	if err := vault.UpdateFrontmatter(e.vault, path, updates); err != nil {
		return "", fmt.Errorf("update person record %s: %w", path, err)
	}

	sum.PersonsUpdated++
	sum.Updated = append(sum.Updated, path)
	st.personFiles[p.ID] = path
	st.registerProjected(path)
	e.indexer.Update(path)
	return path, nil
}

// ensurePlaceFile resolves a place string to a record path, searching
// exact links first, the place index second, and creating otherwise.
func (e *Engine) ensurePlaceFile(st *state, sum *Summary, place string) (string, error) {
	name := strings.TrimSpace(vault.ExtractLinkTarget(place))
	if name == "" {
		return "", fmt.Errorf("empty place name")
	}

	if path, ok := vault.ResolveLink(e.vault, name); ok {
		st.registerProjected(path)
		return path, nil
	}
	if hits := e.indexer.FindPlacesByName(name); len(hits) > 0 {
		st.registerProjected(hits[0])
		return hits[0], nil
	}

	base := e.settings.EntityFolder("place") + "/" + filename.Place(name) + ".md"
	path := vault.UniquePath(e.vault, base)
	if err := e.vault.Create(path, placeRecord(ident.New(), name, "")); err != nil {
		return "", fmt.Errorf("create place %q: %w", name, err)
	}
	sum.PlacesCreated++
	sum.Created = append(sum.Created, path)
	st.registerProjected(path)
	e.indexer.Update(path)
	return path, nil
}

// ensureEventFile finds or creates the event record for one assertion.
// An existing record keeps its lineage_id; the assertion's fields merge
// over it, with participants unioned rather than replaced.
func (e *Engine) ensureEventFile(st *state, sum *Summary, name string, d eventData) (string, error) {
	if ent := st.entities.findEvent(d.EventType, d.Date, d.Place, d.Participants); ent != nil && e.vault.Exists(ent.Path) {
		return e.mergeEventFile(st, sum, ent.Path, d)
	}

	base := e.settings.EntityFolder("event") + "/" + name + ".md"
	if e.vault.Exists(base) {
		fm, err := vault.ReadFrontmatter(e.vault, base)
		if err == nil && fm.Str("lineage_type") == "event" {
			return e.mergeEventFile(st, sum, base, d)
		}
	}

	path := vault.UniquePath(e.vault, base)
	if err := e.vault.Create(path, eventRecord(ident.New(), d)); err != nil {
		return "", fmt.Errorf("create event %q: %w", name, err)
	}
	sum.EventsCreated++
	sum.Created = append(sum.Created, path)
	st.registerProjected(path)
	st.entities.add(projectedEntity{
		Path:         path,
		LineageType:  "event",
		EventType:    d.EventType,
		Date:         d.Date,
		Place:        d.Place,
		Participants: d.Participants,
	})
	return path, nil
}

func (e *Engine) mergeEventFile(st *state, sum *Summary, path string, d eventData) (string, error) {
	fm, err := vault.ReadFrontmatter(e.vault, path)
	if err != nil {
		return "", fmt.Errorf("read event record %s: %w", path, err)
	}
	id := fm.Str("lineage_id")
	if id == "" {
		id = ident.New()
	}

	participants := unionLinks(fm.StrSlice("participants"), d.Participants)
	updates := []vault.Field{
		{Key: "lineage_type", Value: "event"},
		{Key: "lineage_id", Value: id},
		{Key: "event_type", Value: d.EventType},
		{Key: "participants", Value: participants},
	}
	if d.Date != "" {
		updates = append(updates, vault.Field{Key: "date", Value: d.Date})
	}
	if d.Place != "" {
		updates = append(updates, vault.Field{Key: "place", Value: d.Place})
	}
	if err := vault.UpdateFrontmatter(e.vault, path, updates); err != nil {
		return "", fmt.Errorf("update event record %s: %w", path, err)
	}

	sum.Updated = append(sum.Updated, path)
	st.registerProjected(path)
	return path, nil
}

// ensureRelationshipFile finds or creates a relationship record. ordered
// controls whether the person pair is direction-sensitive.
func (e *Engine) ensureRelationshipFile(st *state, sum *Summary, name string, d relationshipData, ordered bool) (string, error) {
	if ent := st.entities.findRelationship(d.RelationshipType, d.PersonA, d.PersonB, ordered); ent != nil && e.vault.Exists(ent.Path) {
		return e.mergeRelationshipFile(st, sum, ent.Path, d)
	}

	base := e.settings.EntityFolder("relationship") + "/" + name + ".md"
	if e.vault.Exists(base) {
		fm, err := vault.ReadFrontmatter(e.vault, base)
		if err == nil && fm.Str("lineage_type") == "relationship" {
			return e.mergeRelationshipFile(st, sum, base, d)
		}
	}

	path := vault.UniquePath(e.vault, base)
	if err := e.vault.Create(path, relationshipRecord(ident.New(), d)); err != nil {
		return "", fmt.Errorf("create relationship %q: %w", name, err)
	}
	sum.RelationshipsCreated++
	sum.Created = append(sum.Created, path)
	st.registerProjected(path)
	st.entities.add(projectedEntity{
		Path:             path,
		LineageType:      "relationship",
		RelationshipType: d.RelationshipType,
		PersonA:          d.PersonA,
		PersonB:          d.PersonB,
	})
	return path, nil
}

func (e *Engine) mergeRelationshipFile(st *state, sum *Summary, path string, d relationshipData) (string, error) {
	fm, err := vault.ReadFrontmatter(e.vault, path)
	if err != nil {
		return "", fmt.Errorf("read relationship record %s: %w", path, err)
	}
	id := fm.Str("lineage_id")
	if id == "" {
		id = ident.New()
	}

	updates := []vault.Field{
		{Key: "lineage_type", Value: "relationship"},
		{Key: "lineage_id", Value: id},
		{Key: "relationship_type", Value: d.RelationshipType},
		{Key: "person_a", Value: d.PersonA},
		{Key: "person_b", Value: d.PersonB},
	}
	if d.PersonARole != "" {
		updates = append(updates, vault.Field{Key: "person_a_role", Value: d.PersonARole})
	}
	if d.PersonBRole != "" {
		updates = append(updates, vault.Field{Key: "person_b_role", Value: d.PersonBRole})
	}
	if d.Date != "" {
		updates = append(updates, vault.Field{Key: "date", Value: d.Date})
	}
	if d.Place != "" {
		updates = append(updates, vault.Field{Key: "place", Value: d.Place})
	}
	if err := vault.UpdateFrontmatter(e.vault, path, updates); err != nil {
		return "", fmt.Errorf("update relationship record %s: %w", path, err)
	}

	sum.Updated = append(sum.Updated, path)
	st.registerProjected(path)
	return path, nil
}

// ensureSourceFile reuses an existing source matching on title, record
// type, and repository, scanning the whole store so sources dedupe
// across sessions.
func (e *Engine) ensureSourceFile(st *state, sum *Summary, d sourceData, year string) (string, error) {
	paths, err := e.vault.List()
	if err != nil {
		return "", fmt.Errorf("list records: %w", err)
	}
	for _, path := range paths {
		fm, err := vault.ReadFrontmatter(e.vault, path)
		if err != nil || fm.Str("lineage_type") != "source" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(fm.Str("title")), strings.TrimSpace(d.Title)) &&
			strings.EqualFold(fm.Str("record_type"), d.RecordType) &&
			strings.EqualFold(strings.TrimSpace(fm.Str("repository")), strings.TrimSpace(d.Repository)) {
			st.registerProjected(path)
			return path, nil
		}
	}

	base := e.settings.EntityFolder("source") + "/" + filename.Source(d.RecordType, d.Title, year) + ".md"
	path := vault.UniquePath(e.vault, base)
	if err := e.vault.Create(path, sourceRecord(ident.New(), d)); err != nil {
		return "", fmt.Errorf("create source %q: %w", d.Title, err)
	}
	sum.Created = append(sum.Created, path)
	st.registerProjected(path)
	return path, nil
}

func unionLinks(existing, extra []string) []string {
	out := append([]string{}, existing...)
	seen := make(map[string]bool, len(existing))
	for _, link := range existing {
		seen[strings.ToLower(vault.ExtractLinkTarget(link))] = true
	}
	for _, link := range extra {
		key := strings.ToLower(vault.ExtractLinkTarget(link))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, link)
	}
	return out
}
