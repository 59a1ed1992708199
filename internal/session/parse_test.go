package session

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/lineagekit/lineage/internal/model"
)

const sampleNote = `---
lineage_type: research_session
title: 1901 Census of Ireland
record_type: census
repository: National Archives of Ireland
locator: form A, house 12
session_date: "1901-03-31"
projected_entities:
  - "[[John Murphy]]"
---

# 1901 Census of Ireland

## Notes

John appears as head of household.

` + "```lineage-session" + `
session:
  id: s1
  document:
    url: https://example.org/census/1901
    files:
      - Captures/census-1901.png
    transcription: "Murphy, John, head, 34"
persons:
  - id: p1
    name: John Murphy
    sex: M
  - id: p2
    name: Mary Murphy
    sex: F
    occupation: housekeeper
assertions:
  - id: a1
    type: birth
    participants:
      - person_ref: p1
        principal: true
    date: "1867"
    place: Cork, Ireland
    citations:
      - c1
citations:
  - id: c1
    snippet: "Murphy, John, age 34"
    locator: line 3
` + "```" + `
`

func TestParseSampleNote(t *testing.T) {
	sess, err := Parse(sampleNote)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if sess.Metadata.Title != "1901 Census of Ireland" {
		t.Errorf("Title = %q", sess.Metadata.Title)
	}
	if sess.Metadata.RecordType != model.RecordCensus {
		t.Errorf("RecordType = %q", sess.Metadata.RecordType)
	}
	if sess.Metadata.SessionDate != "1901-03-31" {
		t.Errorf("SessionDate = %q", sess.Metadata.SessionDate)
	}
	if !reflect.DeepEqual(sess.Metadata.ProjectedEntities, []string{"[[John Murphy]]"}) {
		t.Errorf("ProjectedEntities = %v", sess.Metadata.ProjectedEntities)
	}

	if sess.ID != "s1" {
		t.Errorf("ID = %q", sess.ID)
	}
	if sess.Document.URL != "https://example.org/census/1901" {
		t.Errorf("URL = %q", sess.Document.URL)
	}
	if !reflect.DeepEqual(sess.Document.Files, []string{"Captures/census-1901.png"}) {
		t.Errorf("Files = %v", sess.Document.Files)
	}

	if len(sess.Persons) != 2 {
		t.Fatalf("Persons = %d, want 2", len(sess.Persons))
	}
	if sess.Persons[0].Name != "John Murphy" || sess.Persons[0].Sex != "M" {
		t.Errorf("person[0] = %+v", sess.Persons[0])
	}
	if got := sess.Persons[1].Extra["occupation"]; got != "housekeeper" {
		t.Errorf("unknown field not preserved, Extra = %v", sess.Persons[1].Extra)
	}

	if len(sess.Assertions) != 1 {
		t.Fatalf("Assertions = %d, want 1", len(sess.Assertions))
	}
	a := sess.Assertions[0]
	if a.Type != model.AssertionBirth || a.Date != "1867" || a.Place != "Cork, Ireland" {
		t.Errorf("assertion = %+v", a)
	}
	if len(a.Participants) != 1 || !a.Participants[0].Principal || a.Participants[0].PersonRef != "p1" {
		t.Errorf("participants = %+v", a.Participants)
	}
	if !reflect.DeepEqual(a.Citations, []string{"c1"}) {
		t.Errorf("citations = %v", a.Citations)
	}

	if !strings.Contains(sess.FreeformNotes, "head of household") {
		t.Errorf("FreeformNotes = %q", sess.FreeformNotes)
	}
}

func TestParseMissingFrontmatter(t *testing.T) {
	_, err := Parse("# just a note\n")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
}

func TestParseMissingSessionBlock(t *testing.T) {
	note := "---\nlineage_type: research_session\ntitle: T\nrecord_type: census\nrepository: R\nlocator: L\n---\n\nNo block here.\n"
	_, err := Parse(note)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
	if !strings.Contains(fe.Msg, "lineage-session") {
		t.Errorf("Msg = %q", fe.Msg)
	}
}

func TestParseMalformedYaml(t *testing.T) {
	note := strings.Replace(sampleNote, "    name: John Murphy", "    name: [unclosed", 1)
	_, err := Parse(note)
	var ye *YamlError
	if !errors.As(err, &ye) {
		t.Fatalf("err = %v, want YamlError", err)
	}
	if ye.Block != "lineage-session" {
		t.Errorf("Block = %q", ye.Block)
	}
	if ye.Line <= 0 {
		t.Errorf("Line = %d, want positive", ye.Line)
	}
}

func TestParseSchemaErrorFieldPath(t *testing.T) {
	note := strings.Replace(sampleNote, "  - id: p2", "  - name_only: true", 1)
	_, err := Parse(note)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
	if se.Field != "persons[1].id" {
		t.Errorf("Field = %q", se.Field)
	}
}

func TestParseBadRecordType(t *testing.T) {
	note := strings.Replace(sampleNote, "record_type: census", "record_type: gravestone", 1)
	_, err := Parse(note)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
	if se.Field != "record_type" {
		t.Errorf("Field = %q", se.Field)
	}
}

func TestParseLegacyFileField(t *testing.T) {
	note := strings.Replace(sampleNote,
		"    files:\n      - Captures/census-1901.png\n", "    file: Captures/census-1901.png\n", 1)
	sess, err := Parse(note)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(sess.Document.Files, []string{"Captures/census-1901.png"}) {
		t.Errorf("Files = %v, want legacy file folded in", sess.Document.Files)
	}
}

func TestParseFilesPreferredOverLegacy(t *testing.T) {
	note := strings.Replace(sampleNote,
		"    transcription:", "    file: Old/path.png\n    transcription:", 1)
	sess, err := Parse(note)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(sess.Document.Files, []string{"Captures/census-1901.png"}) {
		t.Errorf("Files = %v, want files array to win", sess.Document.Files)
	}
}

func TestRoundTrip(t *testing.T) {
	first, err := Parse(sampleNote)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Serialize(first)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	second, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse(Serialize): %v\n%s", err, out)
	}

	if !reflect.DeepEqual(first.Metadata, second.Metadata) {
		t.Errorf("metadata changed\nfirst:  %+v\nsecond: %+v", first.Metadata, second.Metadata)
	}
	if !reflect.DeepEqual(first.Persons, second.Persons) {
		t.Errorf("persons changed\nfirst:  %+v\nsecond: %+v", first.Persons, second.Persons)
	}
	if !reflect.DeepEqual(first.Assertions, second.Assertions) {
		t.Errorf("assertions changed\nfirst:  %+v\nsecond: %+v", first.Assertions, second.Assertions)
	}
	if !reflect.DeepEqual(first.Citations, second.Citations) {
		t.Errorf("citations changed\nfirst:  %+v\nsecond: %+v", first.Citations, second.Citations)
	}
	if first.FreeformNotes != second.FreeformNotes {
		t.Errorf("notes changed: %q vs %q", first.FreeformNotes, second.FreeformNotes)
	}

	// A second pass must be byte-stable.
	out2, err := Serialize(second)
	if err != nil {
		t.Fatalf("Serialize(second): %v", err)
	}
	if out != out2 {
		t.Errorf("serialization not stable\nfirst:\n%s\nsecond:\n%s", out, out2)
	}
}

func TestBuildTemplateParses(t *testing.T) {
	content, err := BuildTemplate("Baptism of Mary Murphy", TemplateOptions{
		Date:       "1869-04-02",
		RecordType: model.RecordChurch,
		Repository: "Cork parish registers",
	})
	if err != nil {
		t.Fatalf("BuildTemplate: %v", err)
	}

	sess, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse(template): %v\n%s", err, content)
	}
	if sess.Metadata.Title != "Baptism of Mary Murphy" {
		t.Errorf("Title = %q", sess.Metadata.Title)
	}
	if sess.Metadata.RecordType != model.RecordChurch {
		t.Errorf("RecordType = %q", sess.Metadata.RecordType)
	}
	if sess.ID == "" {
		t.Error("template session has no id")
	}
}
