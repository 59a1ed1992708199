package project

// state carries the scratch data of a single projection run.
type state struct {
	// personFiles maps session person ids to the vault paths they
	// resolved or projected to.
	personFiles map[string]string

	// assertionTargets maps assertion ids to the records each
	// assertion landed in. Consumed by the citations rule.
	assertionTargets map[string][]Target

	// projected is the ordered set of every vault path this run
	// touched, written back to the session's projected_entities.
	projected      map[string]bool
	projectedOrder []string

	// sessionLink is the wikilink back to the session note, stamped
	// on citation records. Empty when projecting an unsaved session.
	sessionLink string

	entities *entityIndex
}

func newState(entities *entityIndex) *state {
	return &state{
		personFiles:      make(map[string]string),
		assertionTargets: make(map[string][]Target),
		projected:        make(map[string]bool),
		entities:         entities,
	}
}

func (st *state) recordTarget(assertionID string, t Target) {
	if assertionID == "" {
		return
	}
	st.assertionTargets[assertionID] = append(st.assertionTargets[assertionID], t)
}

func (st *state) registerProjected(path string) {
	if path == "" || st.projected[path] {
		return
	}
	st.projected[path] = true
	st.projectedOrder = append(st.projectedOrder, path)
}
