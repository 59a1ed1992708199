package project

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// fmPair is one ordered frontmatter key/value. Lists render as YAML
// sequences, everything else as scalars.
type fmPair struct {
	key string
	val interface{}
}

func renderRecord(pairs []fmPair, body string) string {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range pairs {
		k := &yaml.Node{}
		if err := k.Encode(p.key); err != nil {
			continue
		}
		v := &yaml.Node{}
		if err := v.Encode(p.val); err != nil {
			continue
		}
		if list, ok := p.val.([]string); ok && len(list) == 0 {
			v.Style = yaml.FlowStyle
		}
		doc.Content = append(doc.Content, k, v)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		out = []byte("{}\n")
	}
	return fmt.Sprintf("---\n%s---\n\n%s", out, body)
}

func personRecord(id, name, sex string) string {
	pairs := []fmPair{
		{"lineage_type", "person"},
		{"lineage_id", id},
		{"name", name},
	}
	if sex != "" {
		pairs = append(pairs, fmPair{"sex", sex})
	}
	return renderRecord(pairs, "## Events\n\n## Relationships\n\n## Citations\n")
}

func placeRecord(id, name, parent string) string {
	pairs := []fmPair{
		{"lineage_type", "place"},
		{"lineage_id", id},
		{"name", name},
	}
	if parent != "" {
		pairs = append(pairs, fmPair{"parent_place", parent})
	}
	return renderRecord(pairs, "## Events\n")
}

type eventData struct {
	EventType    string
	Date         string
	Place        string
	Participants []string
}

func eventRecord(id string, d eventData) string {
	pairs := []fmPair{
		{"lineage_type", "event"},
		{"lineage_id", id},
		{"event_type", d.EventType},
	}
	if d.Date != "" {
		pairs = append(pairs, fmPair{"date", d.Date})
	}
	if d.Place != "" {
		pairs = append(pairs, fmPair{"place", d.Place})
	}
	pairs = append(pairs, fmPair{"participants", append([]string{}, d.Participants...)})
	return renderRecord(pairs, "## Participants\n\n## Citations\n")
}

type relationshipData struct {
	RelationshipType string
	PersonA          string
	PersonB          string
	PersonARole      string
	PersonBRole      string
	Date             string
	Place            string
}

func relationshipRecord(id string, d relationshipData) string {
	pairs := []fmPair{
		{"lineage_type", "relationship"},
		{"lineage_id", id},
		{"relationship_type", d.RelationshipType},
		{"person_a", d.PersonA},
		{"person_b", d.PersonB},
	}
	if d.PersonARole != "" {
		pairs = append(pairs, fmPair{"person_a_role", d.PersonARole})
	}
	if d.PersonBRole != "" {
		pairs = append(pairs, fmPair{"person_b_role", d.PersonBRole})
	}
	if d.Date != "" {
		pairs = append(pairs, fmPair{"date", d.Date})
	}
	if d.Place != "" {
		pairs = append(pairs, fmPair{"place", d.Place})
	}
	return renderRecord(pairs, "## Events\n\n## Citations\n")
}

type sourceData struct {
	Title      string
	RecordType string
	Repository string
	URL        string
}

func sourceRecord(id string, d sourceData) string {
	pairs := []fmPair{
		{"lineage_type", "source"},
		{"lineage_id", id},
		{"title", d.Title},
	}
	if d.RecordType != "" {
		pairs = append(pairs, fmPair{"record_type", d.RecordType})
	}
	if d.Repository != "" {
		pairs = append(pairs, fmPair{"repository", d.Repository})
	}
	if d.URL != "" {
		pairs = append(pairs, fmPair{"url", d.URL})
	}
	return renderRecord(pairs, "## Citations\n")
}

type citationData struct {
	Source  string
	Target  string
	Session string
	Locator string
	Snippet string
}

func citationRecord(id string, d citationData) string {
	pairs := []fmPair{
		{"lineage_type", "citation"},
		{"lineage_id", id},
		{"source", d.Source},
		{"target", d.Target},
	}
	if d.Session != "" {
		pairs = append(pairs, fmPair{"session", d.Session})
	}
	if d.Locator != "" {
		pairs = append(pairs, fmPair{"locator", d.Locator})
	}
	snippet := strings.TrimSpace(d.Snippet)
	if snippet == "" {
		snippet = "(none)"
	}
	return renderRecord(pairs, fmt.Sprintf("## Snippet\n\n%s\n", snippet))
}
