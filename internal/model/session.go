// Package model defines the session document types and record enums.
package model

// RecordType enumerates the kinds of source documents a session captures.
type RecordType string

const (
	RecordCensus    RecordType = "census"
	RecordVital     RecordType = "vital"
	RecordChurch    RecordType = "church"
	RecordProbate   RecordType = "probate"
	RecordNewspaper RecordType = "newspaper"
	RecordOther     RecordType = "other"
)

// RecordTypes lists the allowed record types in declaration order.
var RecordTypes = []RecordType{
	RecordCensus,
	RecordVital,
	RecordChurch,
	RecordProbate,
	RecordNewspaper,
	RecordOther,
}

// ValidRecordType reports whether value is an allowed record type.
func ValidRecordType(value string) bool {
	for _, rt := range RecordTypes {
		if string(rt) == value {
			return true
		}
	}
	return false
}

// SessionLineageType is the lineage_type stamped on session notes.
const SessionLineageType = "research_session"

// Assertion types with projection rules. Anything else passes through the
// parser untouched and is skipped by projection with a coverage note.
const (
	AssertionIdentity    = "identity"
	AssertionBirth       = "birth"
	AssertionDeath       = "death"
	AssertionMarriage    = "marriage"
	AssertionParentChild = "parent-child"
	AssertionResidence   = "residence"
)

// Relationship record types. A marriage assertion projects a spouse
// relationship; parent-child keeps its assertion type.
const (
	RelationshipSpouse      = "spouse"
	RelationshipParentChild = AssertionParentChild
)

// Metadata is the session's header block.
type Metadata struct {
	Title             string
	RecordType        RecordType
	Repository        string
	Locator           string
	SessionDate       string // YYYY-MM-DD, optional
	ProjectedEntities []string
}

// Document captures where the source document lives. At least one of URL,
// Files, or Transcription must be non-empty for the session to validate.
type Document struct {
	URL           string
	Files         []string
	Transcription string
}

// Person is a session-scoped person stub. MatchedTo is empty until the
// projection engine resolves the stub to a vault record.
type Person struct {
	ID        string
	Name      string
	Sex       string
	MatchedTo string
	Extra     map[string]any
}

// Participant references a session person from an assertion. The principal
// participant anchors event file names.
type Participant struct {
	PersonRef string
	Principal bool
	Role      string
	Extra     map[string]any
}

// Assertion is one claim extracted from the source document.
type Assertion struct {
	ID           string
	Type         string
	Participants []Participant
	ParentRef    string // parent-child only
	ChildRef     string // parent-child only
	Date         string
	Place        string
	Statement    string
	Name         string // identity only
	Sex          string // identity only
	Citations    []string
	Extra        map[string]any
}

// Citation is a session-local source excerpt.
type Citation struct {
	ID       string
	SourceID string
	Snippet  string
	Locator  string
	Extra    map[string]any
}

// Source is a session-local source stub, rarely populated directly.
type Source struct {
	ID         string
	Title      string
	RecordType string
	Repository string
	Locator    string
	Extra      map[string]any
}

// Session is the root aggregate for one research note.
type Session struct {
	Metadata      Metadata
	ID            string
	Document      Document
	Sources       []Source
	Persons       []Person
	Assertions    []Assertion
	Citations     []Citation
	FreeformNotes string
}

// PersonByID returns the session person with the given id, or nil.
func (s *Session) PersonByID(id string) *Person {
	for i := range s.Persons {
		if s.Persons[i].ID == id {
			return &s.Persons[i]
		}
	}
	return nil
}

// CitationByID returns the session citation with the given id, or nil.
func (s *Session) CitationByID(id string) *Citation {
	for i := range s.Citations {
		if s.Citations[i].ID == id {
			return &s.Citations[i]
		}
	}
	return nil
}

// OrderParticipants moves the principal participant (Principal flag or
// role "principal") to the front, preserving the order of the rest.
func OrderParticipants(participants []Participant) []Participant {
	idx := -1
	for i, p := range participants {
		if p.Principal || p.Role == "principal" {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return participants
	}
	ordered := make([]Participant, 0, len(participants))
	ordered = append(ordered, participants[idx])
	ordered = append(ordered, participants[:idx]...)
	ordered = append(ordered, participants[idx+1:]...)
	return ordered
}
