// Package project transforms a validated session's assertions into
// persistent, deduplicated entity records in the vault.
package project

// Summary aggregates one projection run's outcome.
type Summary struct {
	PersonsCreated       int      `json:"persons_created"`
	PersonsUpdated       int      `json:"persons_updated"`
	EventsCreated        int      `json:"events_created"`
	RelationshipsCreated int      `json:"relationships_created"`
	PlacesCreated        int      `json:"places_created"`
	Created              []string `json:"created"`
	Updated              []string `json:"updated"`
	Errors               []string `json:"errors"`
	Notes                []string `json:"notes"`
}

// TargetType is the kind of record an assertion projected into.
type TargetType string

const (
	TargetPerson       TargetType = "person"
	TargetEvent        TargetType = "event"
	TargetRelationship TargetType = "relationship"
)

// Target records one physical record representing an assertion's outcome.
type Target struct {
	Type TargetType
	Path string
}
