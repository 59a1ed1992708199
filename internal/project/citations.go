package project

import (
	"fmt"
	"strings"

	"github.com/lineagekit/lineage/internal/filename"
	"github.com/lineagekit/lineage/internal/ident"
	"github.com/lineagekit/lineage/internal/model"
	"github.com/lineagekit/lineage/internal/vault"
)

// applyCitations runs last: every earlier rule has recorded which files
// each assertion landed in, so each assertion with at least one target
// gets a citation record per target. One source is ensured for the whole
// run, keyed by the session's title, record type, and repository.
// Citation files are derived output and are rewritten whole on every run.
func (e *Engine) applyCitations(st *state, sum *Summary, sess *model.Session) error {
	if len(sess.Assertions) == 0 {
		return nil
	}

	title := strings.TrimSpace(sess.Metadata.Title)
	if title == "" {
		sum.Errors = append(sum.Errors, "session title required for source creation")
		return nil
	}

	src := sourceData{
		Title:      title,
		RecordType: string(sess.Metadata.RecordType),
		Repository: sess.Metadata.Repository,
		URL:        sess.Document.URL,
	}
	srcPath, err := e.ensureSourceFile(st, sum, src, filename.ExtractYear(sess.Metadata.SessionDate))
	if err != nil {
		return err
	}

	for i := range sess.Assertions {
		a := &sess.Assertions[i]
		targets := st.assertionTargets[a.ID]
		if len(targets) == 0 {
			continue
		}
		locator, snippet := citationDetail(sess, a)
		for _, target := range targets {
			if err := e.writeCitationFile(st, sum, srcPath, title, target, a.ID, locator, snippet); err != nil {
				return err
			}
		}
	}
	return nil
}

// citationDetail pulls locator and snippet from the assertion's first
// citation reference. Unknown references contribute nothing; validation
// reports them separately.
func citationDetail(sess *model.Session, a *model.Assertion) (locator, snippet string) {
	if len(a.Citations) == 0 {
		return "", ""
	}
	c := sess.CitationByID(a.Citations[0])
	if c == nil {
		return "", ""
	}
	return c.Locator, c.Snippet
}

// writeCitationFile rewrites the citation record for one assertion
// target. The path is keyed by assertion id, so reruns overwrite the
// same file instead of duplicating it.
func (e *Engine) writeCitationFile(st *state, sum *Summary, srcPath, srcTitle string, target Target, assertionID, locator, snippet string) error {
	label := vault.Basename(target.Path)
	if fm, err := vault.ReadFrontmatter(e.vault, target.Path); err == nil {
		if name := strings.TrimSpace(fm.Str("name")); name != "" {
			label = name
		} else if t := strings.TrimSpace(fm.Str("title")); t != "" {
			label = t
		}
	}

	path := e.settings.EntityFolder("citation") + "/" + filename.Citation(srcTitle, label, assertionID) + ".md"

	id := ""
	existed := e.vault.Exists(path)
	if existed {
		if fm, err := vault.ReadFrontmatter(e.vault, path); err == nil {
			id = fm.Str("lineage_id")
		}
	}
	if id == "" {
		id = ident.New()
	}

	content := citationRecord(id, citationData{
		Source:  vault.WikilinkFor(srcPath),
		Target:  vault.WikilinkFor(target.Path),
		Session: st.sessionLink,
		Locator: locator,
		Snippet: snippet,
	})
	if err := e.vault.Write(path, content); err != nil {
		return fmt.Errorf("write citation %s: %w", path, err)
	}
	if existed {
		sum.Updated = append(sum.Updated, path)
	} else {
		sum.Created = append(sum.Created, path)
	}
	st.registerProjected(path)
	return nil
}
