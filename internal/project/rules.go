package project

import (
	"fmt"

	"github.com/lineagekit/lineage/internal/filename"
	"github.com/lineagekit/lineage/internal/model"
	"github.com/lineagekit/lineage/internal/vault"
)

// applyIdentity backfills each participant's person stub from the
// assertion. Fields already set on the stub win; the assertion only
// fills gaps, and every participant becomes a citation target.
func (e *Engine) applyIdentity(st *state, sum *Summary, sess *model.Session) error {
	for i := range sess.Assertions {
		a := &sess.Assertions[i]
		if a.Type != model.AssertionIdentity {
			continue
		}
		if len(a.Participants) == 0 {
			sum.Errors = append(sum.Errors, fmt.Sprintf("identity assertion %s has no participants", a.ID))
			continue
		}
		for _, part := range a.Participants {
			p := sess.PersonByID(part.PersonRef)
			if p == nil {
				sum.Errors = append(sum.Errors, fmt.Sprintf("identity assertion %s references unknown person %q", a.ID, part.PersonRef))
				continue
			}
			if p.Name == "" && a.Name != "" {
				p.Name = a.Name
			}
			if p.Sex == "" && a.Sex != "" {
				p.Sex = a.Sex
			}
			path, err := e.ensurePersonFile(st, sum, p)
			if err != nil {
				return err
			}
			st.recordTarget(a.ID, Target{Type: TargetPerson, Path: path})
		}
	}
	return nil
}

// applyLifeEvents projects birth and death assertions into event records.
func (e *Engine) applyLifeEvents(st *state, sum *Summary, sess *model.Session) error {
	for i := range sess.Assertions {
		a := &sess.Assertions[i]
		if a.Type != model.AssertionBirth && a.Type != model.AssertionDeath {
			continue
		}
		if err := e.projectEvent(st, sum, sess, a, a.Type); err != nil {
			return err
		}
	}
	return nil
}

// applyResidence projects residence assertions. Unlike birth and death a
// residence without a place is meaningless and is reported, not stored.
func (e *Engine) applyResidence(st *state, sum *Summary, sess *model.Session) error {
	for i := range sess.Assertions {
		a := &sess.Assertions[i]
		if a.Type != model.AssertionResidence {
			continue
		}
		if a.Place == "" {
			sum.Errors = append(sum.Errors, fmt.Sprintf("residence assertion %s has no place", a.ID))
			continue
		}
		if err := e.projectEvent(st, sum, sess, a, model.AssertionResidence); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) projectEvent(st *state, sum *Summary, sess *model.Session, a *model.Assertion, eventType string) error {
	parts := model.OrderParticipants(a.Participants)
	if len(parts) == 0 {
		sum.Errors = append(sum.Errors, fmt.Sprintf("%s assertion %s has no participants", eventType, a.ID))
		return nil
	}

	links, ok := e.participantLinks(st, sum, a.ID, parts)
	if !ok {
		return nil
	}

	placeLink := ""
	if a.Place != "" {
		placePath, err := e.ensurePlaceFile(st, sum, a.Place)
		if err != nil {
			return err
		}
		placeLink = vault.WikilinkFor(placePath)
	}

	principal := e.personLabel(sess, parts[0].PersonRef)
	name := filename.Event(eventType, principal, filename.ExtractYear(a.Date))
	path, err := e.ensureEventFile(st, sum, name, eventData{
		EventType:    eventType,
		Date:         a.Date,
		Place:        placeLink,
		Participants: links,
	})
	if err != nil {
		return err
	}
	st.recordTarget(a.ID, Target{Type: TargetEvent, Path: path})
	return nil
}

// applyMarriage projects marriage assertions into spouse relationship
// records keyed by the unordered pair, plus a marriage event when the
// assertion carries a date or place.
func (e *Engine) applyMarriage(st *state, sum *Summary, sess *model.Session) error {
	for i := range sess.Assertions {
		a := &sess.Assertions[i]
		if a.Type != model.AssertionMarriage {
			continue
		}
		parts := model.OrderParticipants(a.Participants)
		if len(parts) < 2 {
			sum.Errors = append(sum.Errors, fmt.Sprintf("marriage assertion %s needs two participants", a.ID))
			continue
		}

		links, ok := e.participantLinks(st, sum, a.ID, parts[:2])
		if !ok {
			continue
		}

		placeLink := ""
		if a.Place != "" {
			placePath, err := e.ensurePlaceFile(st, sum, a.Place)
			if err != nil {
				return err
			}
			placeLink = vault.WikilinkFor(placePath)
		}

		name := filename.Relationship(e.personLabel(sess, parts[0].PersonRef), e.personLabel(sess, parts[1].PersonRef))
		path, err := e.ensureRelationshipFile(st, sum, name, relationshipData{
			RelationshipType: model.RelationshipSpouse,
			PersonA:          links[0],
			PersonB:          links[1],
			Date:             a.Date,
			Place:            placeLink,
		}, false)
		if err != nil {
			return err
		}
		st.recordTarget(a.ID, Target{Type: TargetRelationship, Path: path})

		if a.Date != "" || placeLink != "" {
			eventName := filename.Event(model.AssertionMarriage, e.personLabel(sess, parts[0].PersonRef), filename.ExtractYear(a.Date))
			eventPath, err := e.ensureEventFile(st, sum, eventName, eventData{
				EventType:    model.AssertionMarriage,
				Date:         a.Date,
				Place:        placeLink,
				Participants: links,
			})
			if err != nil {
				return err
			}
			st.recordTarget(a.ID, Target{Type: TargetEvent, Path: eventPath})
		}
	}
	return nil
}

// applyParentChild projects parent-child assertions into direction-aware
// relationship records.
func (e *Engine) applyParentChild(st *state, sum *Summary, sess *model.Session) error {
	for i := range sess.Assertions {
		a := &sess.Assertions[i]
		if a.Type != model.AssertionParentChild {
			continue
		}
		if a.ParentRef == "" || a.ChildRef == "" {
			sum.Errors = append(sum.Errors, fmt.Sprintf("parent-child assertion %s is missing a parent or child reference", a.ID))
			continue
		}
		if a.ParentRef == a.ChildRef {
			sum.Errors = append(sum.Errors, fmt.Sprintf("parent-child assertion %s references the same person twice", a.ID))
			continue
		}

		parentPath, okP := st.personFiles[a.ParentRef]
		childPath, okC := st.personFiles[a.ChildRef]
		if !okP || !okC {
			sum.Errors = append(sum.Errors, fmt.Sprintf("parent-child assertion %s references an unknown person", a.ID))
			continue
		}

		name := filename.ParentChild(e.personLabel(sess, a.ParentRef), e.personLabel(sess, a.ChildRef))
		path, err := e.ensureRelationshipFile(st, sum, name, relationshipData{
			RelationshipType: model.RelationshipParentChild,
			PersonA:          vault.WikilinkFor(parentPath),
			PersonB:          vault.WikilinkFor(childPath),
			PersonARole:      "parent",
			PersonBRole:      "child",
			Date:             a.Date,
		}, true)
		if err != nil {
			return err
		}
		st.recordTarget(a.ID, Target{Type: TargetRelationship, Path: path})
	}
	return nil
}

func (e *Engine) participantLinks(st *state, sum *Summary, assertionID string, parts []model.Participant) ([]string, bool) {
	links := make([]string, 0, len(parts))
	for _, p := range parts {
		path, ok := st.personFiles[p.PersonRef]
		if !ok {
			sum.Errors = append(sum.Errors, fmt.Sprintf("assertion %s references unknown person %q", assertionID, p.PersonRef))
			return nil, false
		}
		links = append(links, vault.WikilinkFor(path))
	}
	return links, true
}

func (e *Engine) personLabel(sess *model.Session, ref string) string {
	if p := sess.PersonByID(ref); p != nil && p.Name != "" {
		return p.Name
	}
	return ref
}
