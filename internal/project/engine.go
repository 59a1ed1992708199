package project

import (
	"fmt"
	"sort"

	"github.com/lineagekit/lineage/internal/config"
	"github.com/lineagekit/lineage/internal/index"
	"github.com/lineagekit/lineage/internal/model"
	"github.com/lineagekit/lineage/internal/vault"
)

// The rules run in a fixed order so later rules can rely on earlier
// ones: persons resolve first, events and relationships attach to them,
// and citations attach to whatever the other rules produced.

// Engine projects validated sessions into vault records.
type Engine struct {
	vault    vault.Vault
	indexer  *index.Indexer
	settings *config.Settings
}

// New returns an engine over the vault. The indexer speeds up place
// lookups and is kept current as the run creates records.
func New(v vault.Vault, ix *index.Indexer, settings *config.Settings) *Engine {
	return &Engine{vault: v, indexer: ix, settings: settings}
}

// ProjectSession projects every assertion of the session and returns a
// summary. Storage failures abort the run and surface as a single
// summary error; per-assertion problems are reported and skipped.
//
// The session is mutated in place: unresolved persons gain a matched_to
// link to their record and the projected entity list is extended. The
// caller persists the session afterwards.
func (e *Engine) ProjectSession(sess *model.Session, sessionPath string) *Summary {
	sum := &Summary{
		Created: []string{},
		Updated: []string{},
		Errors:  []string{},
		Notes:   []string{},
	}
	if err := e.run(sess, sessionPath, sum); err != nil {
		sum.Errors = append(sum.Errors, err.Error())
	}
	return sum
}

func (e *Engine) run(sess *model.Session, sessionPath string, sum *Summary) error {
	for _, kind := range []string{"person", "place", "event", "relationship", "source", "citation"} {
		if err := e.vault.EnsureDir(e.settings.EntityFolder(kind)); err != nil {
			return fmt.Errorf("ensure folder %s: %w", e.settings.EntityFolder(kind), err)
		}
	}

	st := newState(loadEntityIndex(e.vault, sess.Metadata.ProjectedEntities))
	if sessionPath != "" {
		st.sessionLink = vault.WikilinkFor(sessionPath)
	}

	for i := range sess.Persons {
		p := &sess.Persons[i]
		path, err := e.ensurePersonFile(st, sum, p)
		if err != nil {
			return err
		}
		if p.MatchedTo == "" {
			p.MatchedTo = vault.WikilinkFor(path)
		}
	}

	steps := []func(*state, *Summary, *model.Session) error{
		e.applyIdentity,
		e.applyLifeEvents,
		e.applyMarriage,
		e.applyParentChild,
		e.applyResidence,
		e.applyCitations,
	}
	for _, step := range steps {
		if err := step(st, sum, sess); err != nil {
			return err
		}
	}

	e.noteUnprojected(sum, sess)

	// The list is replaced, not merged, so links to records no longer
	// produced by the session's assertions drop out.
	paths := append([]string{}, st.projectedOrder...)
	sort.Strings(paths)
	links := make([]string, 0, len(paths))
	for _, path := range paths {
		links = append(links, vault.WikilinkFor(path))
	}
	sess.Metadata.ProjectedEntities = links
	return nil
}

// noteUnprojected reports assertion types no rule handles so nothing is
// dropped silently.
func (e *Engine) noteUnprojected(sum *Summary, sess *model.Session) {
	handled := map[string]bool{
		model.AssertionIdentity:    true,
		model.AssertionBirth:       true,
		model.AssertionDeath:       true,
		model.AssertionMarriage:    true,
		model.AssertionParentChild: true,
		model.AssertionResidence:   true,
	}

	counts := make(map[string]int)
	var order []string
	for _, a := range sess.Assertions {
		if handled[a.Type] {
			continue
		}
		if counts[a.Type] == 0 {
			order = append(order, a.Type)
		}
		counts[a.Type]++
	}
	for _, t := range order {
		plural := "s"
		if counts[t] == 1 {
			plural = ""
		}
		sum.Notes = append(sum.Notes, fmt.Sprintf("%d %s assertion%s not projected by design.", counts[t], t, plural))
	}
}
