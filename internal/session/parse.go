// Package session parses and serializes research-session notes: a YAML
// frontmatter header, free-form prose, and a fenced lineage-session block.
package session

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lineagekit/lineage/internal/model"
)

var (
	frontmatterRe = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---`)
	blockRe       = regexp.MustCompile("(?s)```lineage-session[ \t]*\r?\n(.*?)\r?\n```")
	dateRe        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Parse reads a session note into its typed form. It returns a FormatError
// when a required block is absent, a YamlError when a block is not
// well-formed YAML, and a SchemaError naming the offending field path when
// a value has the wrong type or shape.
func Parse(content string) (*model.Session, error) {
	fmMatch := frontmatterRe.FindStringSubmatchIndex(content)
	if fmMatch == nil {
		return nil, &FormatError{Msg: "no YAML frontmatter found"}
	}

	blockMatch := blockRe.FindStringSubmatchIndex(content)
	if blockMatch == nil {
		return nil, &FormatError{Msg: "no lineage-session code block found"}
	}

	frontmatter, err := decodeYAML(content[fmMatch[2]:fmMatch[3]], "frontmatter")
	if err != nil {
		return nil, err
	}
	blockData, err := decodeYAML(content[blockMatch[2]:blockMatch[3]], "lineage-session")
	if err != nil {
		return nil, err
	}

	notes := ""
	if blockMatch[0] > fmMatch[1] {
		notes = strings.TrimSpace(content[fmMatch[1]:blockMatch[0]])
	}

	metadata, err := parseMetadata(frontmatter)
	if err != nil {
		return nil, err
	}

	sess, err := parseSessionBlock(blockData)
	if err != nil {
		return nil, err
	}

	sess.Metadata = *metadata
	sess.FreeformNotes = notes
	return sess, nil
}

func decodeYAML(src, block string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		return nil, &YamlError{Block: block, Line: yamlErrorLine(err), Err: err}
	}
	return v, nil
}

func parseMetadata(value any) (*model.Metadata, error) {
	data, err := asMap(value, "frontmatter")
	if err != nil {
		return nil, err
	}

	lineageType, err := reqString(data, "lineage_type", "lineage_type")
	if err != nil {
		return nil, err
	}
	if lineageType != model.SessionLineageType {
		return nil, &SchemaError{
			Field:  "lineage_type",
			Reason: fmt.Sprintf("expected %q, got %q", model.SessionLineageType, lineageType),
		}
	}

	title, err := reqString(data, "title", "title")
	if err != nil {
		return nil, err
	}
	recordType, err := reqString(data, "record_type", "record_type")
	if err != nil {
		return nil, err
	}
	if !model.ValidRecordType(recordType) {
		allowed := make([]string, len(model.RecordTypes))
		for i, rt := range model.RecordTypes {
			allowed[i] = string(rt)
		}
		return nil, &SchemaError{
			Field:  "record_type",
			Reason: fmt.Sprintf("invalid value %q, allowed: %s", recordType, strings.Join(allowed, ", ")),
		}
	}
	repository, err := reqString(data, "repository", "repository")
	if err != nil {
		return nil, err
	}
	locator, err := reqString(data, "locator", "locator")
	if err != nil {
		return nil, err
	}

	sessionDate, err := optString(data, "session_date", "session_date")
	if err != nil {
		return nil, err
	}
	if sessionDate != "" && !dateRe.MatchString(sessionDate) {
		return nil, &SchemaError{
			Field:  "session_date",
			Reason: fmt.Sprintf("invalid format %q, expected YYYY-MM-DD", sessionDate),
		}
	}

	projected, err := strSlice(data["projected_entities"], "projected_entities")
	if err != nil {
		return nil, err
	}

	return &model.Metadata{
		Title:             title,
		RecordType:        model.RecordType(recordType),
		Repository:        repository,
		Locator:           locator,
		SessionDate:       sessionDate,
		ProjectedEntities: projected,
	}, nil
}

func parseSessionBlock(value any) (*model.Session, error) {
	data, err := asMap(value, "lineage-session")
	if err != nil {
		return nil, err
	}
	core, err := asMap(data["session"], "session")
	if err != nil {
		return nil, err
	}

	id, err := reqString(core, "id", "session.id")
	if err != nil {
		return nil, err
	}
	document, err := parseDocument(core["document"])
	if err != nil {
		return nil, err
	}

	sources, err := parseEach(data["sources"], "sources", parseSource)
	if err != nil {
		return nil, err
	}
	persons, err := parseEach(data["persons"], "persons", parsePerson)
	if err != nil {
		return nil, err
	}
	assertions, err := parseEach(data["assertions"], "assertions", parseAssertion)
	if err != nil {
		return nil, err
	}
	citations, err := parseEach(data["citations"], "citations", parseCitation)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		ID:         id,
		Document:   *document,
		Sources:    sources,
		Persons:    persons,
		Assertions: assertions,
		Citations:  citations,
	}, nil
}

func parseDocument(value any) (*model.Document, error) {
	record, err := asMap(value, "session.document")
	if err != nil {
		return nil, err
	}

	url, err := optString(record, "url", "session.document.url")
	if err != nil {
		return nil, err
	}
	files, err := parseDocumentFiles(record)
	if err != nil {
		return nil, err
	}
	transcription, err := optString(record, "transcription", "session.document.transcription")
	if err != nil {
		return nil, err
	}

	return &model.Document{URL: url, Files: files, Transcription: transcription}, nil
}

// parseDocumentFiles prefers the files array; the legacy singular file
// field is folded into a one-element array when files is absent.
func parseDocumentFiles(record map[string]any) ([]string, error) {
	if _, ok := record["files"]; ok {
		return strSlice(record["files"], "session.document.files")
	}
	legacy, err := optString(record, "file", "session.document.file")
	if err != nil {
		return nil, err
	}
	if legacy == "" {
		return nil, nil
	}
	return []string{legacy}, nil
}

func parseSource(record map[string]any, label string) (model.Source, error) {
	var s model.Source
	id, err := reqString(record, "id", label+".id")
	if err != nil {
		return s, err
	}
	title, err := optString(record, "title", label+".title")
	if err != nil {
		return s, err
	}
	recordType, err := optString(record, "record_type", label+".record_type")
	if err != nil {
		return s, err
	}
	repository, err := optString(record, "repository", label+".repository")
	if err != nil {
		return s, err
	}
	locator, err := optString(record, "locator", label+".locator")
	if err != nil {
		return s, err
	}

	s = model.Source{
		ID:         id,
		Title:      title,
		RecordType: recordType,
		Repository: repository,
		Locator:    locator,
		Extra:      extraFields(record, "id", "title", "record_type", "repository", "locator"),
	}
	return s, nil
}

func parsePerson(record map[string]any, label string) (model.Person, error) {
	var p model.Person
	id, err := reqString(record, "id", label+".id")
	if err != nil {
		return p, err
	}
	name, err := optString(record, "name", label+".name")
	if err != nil {
		return p, err
	}
	sex, err := optString(record, "sex", label+".sex")
	if err != nil {
		return p, err
	}
	matchedTo, err := optString(record, "matched_to", label+".matched_to")
	if err != nil {
		return p, err
	}

	p = model.Person{
		ID:        id,
		Name:      name,
		Sex:       sex,
		MatchedTo: matchedTo,
		Extra:     extraFields(record, "id", "name", "sex", "matched_to"),
	}
	return p, nil
}

func parseAssertion(record map[string]any, label string) (model.Assertion, error) {
	var a model.Assertion
	id, err := reqString(record, "id", label+".id")
	if err != nil {
		return a, err
	}
	typ, err := reqString(record, "type", label+".type")
	if err != nil {
		return a, err
	}

	participants, err := parseParticipants(record["participants"], label+".participants")
	if err != nil {
		return a, err
	}
	parentRef, err := optString(record, "parent_ref", label+".parent_ref")
	if err != nil {
		return a, err
	}
	childRef, err := optString(record, "child_ref", label+".child_ref")
	if err != nil {
		return a, err
	}
	date, err := optString(record, "date", label+".date")
	if err != nil {
		return a, err
	}
	place, err := optString(record, "place", label+".place")
	if err != nil {
		return a, err
	}
	statement, err := optString(record, "statement", label+".statement")
	if err != nil {
		return a, err
	}
	name, err := optString(record, "name", label+".name")
	if err != nil {
		return a, err
	}
	sex, err := optString(record, "sex", label+".sex")
	if err != nil {
		return a, err
	}
	citations, err := strSlice(record["citations"], label+".citations")
	if err != nil {
		return a, err
	}

	a = model.Assertion{
		ID:           id,
		Type:         typ,
		Participants: participants,
		ParentRef:    parentRef,
		ChildRef:     childRef,
		Date:         date,
		Place:        place,
		Statement:    statement,
		Name:         name,
		Sex:          sex,
		Citations:    citations,
		Extra: extraFields(record,
			"id", "type", "participants", "parent_ref", "child_ref",
			"date", "place", "statement", "name", "sex", "citations"),
	}
	return a, nil
}

func parseCitation(record map[string]any, label string) (model.Citation, error) {
	var c model.Citation
	id, err := reqString(record, "id", label+".id")
	if err != nil {
		return c, err
	}
	sourceID, err := optString(record, "source_id", label+".source_id")
	if err != nil {
		return c, err
	}
	snippet, err := optString(record, "snippet", label+".snippet")
	if err != nil {
		return c, err
	}
	locator, err := optString(record, "locator", label+".locator")
	if err != nil {
		return c, err
	}

	c = model.Citation{
		ID:       id,
		SourceID: sourceID,
		Snippet:  snippet,
		Locator:  locator,
		Extra:    extraFields(record, "id", "source_id", "snippet", "locator"),
	}
	return c, nil
}

func parseParticipants(value any, label string) ([]model.Participant, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, &SchemaError{Field: label, Reason: "expected an array"}
	}

	participants := make([]model.Participant, 0, len(items))
	for i, item := range items {
		itemLabel := fmt.Sprintf("%s[%d]", label, i)
		record, err := asMap(item, itemLabel)
		if err != nil {
			return nil, err
		}
		personRef, err := reqString(record, "person_ref", itemLabel+".person_ref")
		if err != nil {
			return nil, err
		}
		principal := false
		if v, ok := record["principal"]; ok && v != nil {
			b, ok := v.(bool)
			if !ok {
				return nil, &SchemaError{Field: itemLabel + ".principal", Reason: "expected a boolean"}
			}
			principal = b
		}
		role, err := optString(record, "role", itemLabel+".role")
		if err != nil {
			return nil, err
		}
		participants = append(participants, model.Participant{
			PersonRef: personRef,
			Principal: principal,
			Role:      role,
			Extra:     extraFields(record, "person_ref", "principal", "role"),
		})
	}
	return participants, nil
}

func parseEach[T any](value any, label string, parse func(map[string]any, string) (T, error)) ([]T, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, &SchemaError{Field: label, Reason: "expected an array"}
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		itemLabel := fmt.Sprintf("%s[%d]", label, i)
		record, err := asMap(item, itemLabel)
		if err != nil {
			return nil, err
		}
		parsed, err := parse(record, itemLabel)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

func asMap(value any, label string) (map[string]any, error) {
	m, ok := value.(map[string]any)
	if !ok || m == nil {
		return nil, &SchemaError{Field: label, Reason: "expected an object"}
	}
	return m, nil
}

func reqString(m map[string]any, key, label string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", &SchemaError{Field: label, Reason: "expected a string, got nothing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Field: label, Reason: fmt.Sprintf("expected a string, got %T", v)}
	}
	return s, nil
}

func optString(m map[string]any, key, label string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Field: label, Reason: fmt.Sprintf("expected a string, got %T", v)}
	}
	return s, nil
}

func strSlice(value any, label string) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, &SchemaError{Field: label, Reason: "expected an array"}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &SchemaError{
				Field:  fmt.Sprintf("%s[%d]", label, i),
				Reason: fmt.Sprintf("expected a string, got %T", item),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func extraFields(record map[string]any, known ...string) map[string]any {
	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}
	var extra map[string]any
	for k, v := range record {
		if knownSet[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}
