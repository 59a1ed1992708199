package session

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lineagekit/lineage/internal/model"
)

// Serialize renders a session back to its note text: frontmatter header,
// free-form notes verbatim, then the fenced lineage-session block. It is
// the structural inverse of Parse for all typed fields.
func Serialize(s *model.Session) (string, error) {
	frontmatter, err := encodeNode(metadataNode(&s.Metadata))
	if err != nil {
		return "", fmt.Errorf("serialize frontmatter: %w", err)
	}
	block, err := encodeNode(sessionBlockNode(s))
	if err != nil {
		return "", fmt.Errorf("serialize session block: %w", err)
	}

	notes := strings.TrimSpace(s.FreeformNotes)
	if notes == "" {
		notes = "## Notes\n\n"
	}

	return fmt.Sprintf("---\n%s\n---\n\n%s\n\n```lineage-session\n%s\n```\n", frontmatter, notes, block), nil
}

func encodeNode(node *yaml.Node) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func metadataNode(m *model.Metadata) *yaml.Node {
	b := newMapBuilder()
	b.str("lineage_type", model.SessionLineageType)
	b.str("title", m.Title)
	b.str("record_type", string(m.RecordType))
	b.str("repository", m.Repository)
	b.str("locator", m.Locator)
	if m.SessionDate != "" {
		b.str("session_date", m.SessionDate)
	}
	b.add("projected_entities", strSeqNode(m.ProjectedEntities))
	return b.done()
}

func sessionBlockNode(s *model.Session) *yaml.Node {
	doc := newMapBuilder()
	doc.str("url", s.Document.URL)
	doc.add("files", strSeqNode(s.Document.Files))
	doc.str("transcription", s.Document.Transcription)

	core := newMapBuilder()
	core.str("id", s.ID)
	core.add("document", doc.done())

	sources := make([]*yaml.Node, 0, len(s.Sources))
	for i := range s.Sources {
		sources = append(sources, sourceNode(&s.Sources[i]))
	}
	persons := make([]*yaml.Node, 0, len(s.Persons))
	for i := range s.Persons {
		persons = append(persons, personNode(&s.Persons[i]))
	}
	assertions := make([]*yaml.Node, 0, len(s.Assertions))
	for i := range s.Assertions {
		assertions = append(assertions, assertionNode(&s.Assertions[i]))
	}
	citations := make([]*yaml.Node, 0, len(s.Citations))
	for i := range s.Citations {
		citations = append(citations, citationNode(&s.Citations[i]))
	}

	b := newMapBuilder()
	b.add("session", core.done())
	b.add("sources", seqNode(sources))
	b.add("persons", seqNode(persons))
	b.add("assertions", seqNode(assertions))
	b.add("citations", seqNode(citations))
	return b.done()
}

func sourceNode(s *model.Source) *yaml.Node {
	b := newMapBuilder()
	b.str("id", s.ID)
	b.optStr("title", s.Title)
	b.optStr("record_type", s.RecordType)
	b.optStr("repository", s.Repository)
	b.optStr("locator", s.Locator)
	b.extra(s.Extra)
	return b.done()
}

func personNode(p *model.Person) *yaml.Node {
	b := newMapBuilder()
	b.str("id", p.ID)
	b.optStr("name", p.Name)
	b.optStr("sex", p.Sex)
	b.optStr("matched_to", p.MatchedTo)
	b.extra(p.Extra)
	return b.done()
}

func assertionNode(a *model.Assertion) *yaml.Node {
	b := newMapBuilder()
	b.str("id", a.ID)
	b.str("type", a.Type)
	if len(a.Participants) > 0 {
		participants := make([]*yaml.Node, 0, len(a.Participants))
		for i := range a.Participants {
			participants = append(participants, participantNode(&a.Participants[i]))
		}
		b.add("participants", seqNode(participants))
	}
	b.optStr("parent_ref", a.ParentRef)
	b.optStr("child_ref", a.ChildRef)
	b.optStr("date", a.Date)
	b.optStr("place", a.Place)
	b.optStr("statement", a.Statement)
	b.optStr("name", a.Name)
	b.optStr("sex", a.Sex)
	if len(a.Citations) > 0 {
		b.add("citations", strSeqNode(a.Citations))
	}
	b.extra(a.Extra)
	return b.done()
}

func participantNode(p *model.Participant) *yaml.Node {
	b := newMapBuilder()
	b.str("person_ref", p.PersonRef)
	if p.Principal {
		b.add("principal", scalarNode(true))
	}
	b.optStr("role", p.Role)
	b.extra(p.Extra)
	return b.done()
}

func citationNode(c *model.Citation) *yaml.Node {
	b := newMapBuilder()
	b.str("id", c.ID)
	b.optStr("source_id", c.SourceID)
	b.optStr("snippet", c.Snippet)
	b.optStr("locator", c.Locator)
	b.extra(c.Extra)
	return b.done()
}

// mapBuilder assembles a yaml mapping node with deterministic key order.
type mapBuilder struct {
	n *yaml.Node
}

func newMapBuilder() *mapBuilder {
	return &mapBuilder{n: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func (b *mapBuilder) add(key string, value *yaml.Node) {
	b.n.Content = append(b.n.Content, keyNode(key), value)
}

func (b *mapBuilder) str(key, value string) {
	b.add(key, scalarNode(value))
}

func (b *mapBuilder) optStr(key, value string) {
	if value != "" {
		b.str(key, value)
	}
}

// extra appends unrecognized fields in sorted key order so serialization
// stays deterministic.
func (b *mapBuilder) extra(extra map[string]any) {
	if len(extra) == 0 {
		return
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.add(k, scalarNode(extra[k]))
	}
}

func (b *mapBuilder) done() *yaml.Node { return b.n }

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func scalarNode(value any) *yaml.Node {
	n := &yaml.Node{}
	if err := n.Encode(value); err != nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(value)}
	}
	return n
}

// seqNode renders an empty sequence in flow style ("[]") so empty lists
// survive a round-trip as arrays rather than nulls.
func seqNode(children []*yaml.Node) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: children}
	if len(children) == 0 {
		n.Style = yaml.FlowStyle
	}
	return n
}

func strSeqNode(values []string) *yaml.Node {
	children := make([]*yaml.Node, 0, len(values))
	for _, v := range values {
		children = append(children, scalarNode(v))
	}
	return seqNode(children)
}
