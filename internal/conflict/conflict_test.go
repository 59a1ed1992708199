package conflict

import (
	"reflect"
	"testing"

	"github.com/lineagekit/lineage/internal/model"
)

func birth(id, personRef, date string) model.Assertion {
	return model.Assertion{
		ID:   id,
		Type: model.AssertionBirth,
		Participants: []model.Participant{
			{PersonRef: personRef, Principal: true},
		},
		Date: date,
	}
}

func TestDetectDoubleBirth(t *testing.T) {
	conflicts := Detect([]model.Assertion{
		birth("a1", "p1", "1867"),
		birth("a2", "p1", "1869"),
	})

	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %+v, want one", conflicts)
	}
	c := conflicts[0]
	if c.ID != "p1-birth" || c.PersonRef != "p1" || c.Type != model.AssertionBirth {
		t.Errorf("conflict = %+v", c)
	}
	if !reflect.DeepEqual(c.AssertionIDs, []string{"a1", "a2"}) {
		t.Errorf("AssertionIDs = %v", c.AssertionIDs)
	}
	if c.Severity != SeverityHigh {
		t.Errorf("Severity = %q, want high", c.Severity)
	}
}

func TestDetectNoConflictAcrossPersons(t *testing.T) {
	conflicts := Detect([]model.Assertion{
		birth("a1", "p1", "1867"),
		birth("a2", "p2", "1869"),
	})
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %+v, want none", conflicts)
	}
}

func TestDetectSeverity(t *testing.T) {
	marriage := func(id string) model.Assertion {
		return model.Assertion{
			ID:   id,
			Type: model.AssertionMarriage,
			Participants: []model.Participant{
				{PersonRef: "p1", Principal: true},
				{PersonRef: "p2"},
			},
		}
	}
	residence := func(id string) model.Assertion {
		return model.Assertion{
			ID:   id,
			Type: model.AssertionResidence,
			Participants: []model.Participant{
				{PersonRef: "p3", Principal: true},
			},
		}
	}

	conflicts := Detect([]model.Assertion{
		marriage("a1"), marriage("a2"),
		residence("a3"), residence("a4"),
	})
	if len(conflicts) != 3 {
		t.Fatalf("conflicts = %+v, want p1+p2 marriage and p3 residence groups", conflicts)
	}

	bySeverity := map[Severity]int{}
	for _, c := range conflicts {
		bySeverity[c.Severity]++
	}
	if bySeverity[SeverityMedium] != 2 || bySeverity[SeverityLow] != 1 {
		t.Errorf("severities = %v", bySeverity)
	}
}

func TestDetectIgnoresParticipantless(t *testing.T) {
	pc := model.Assertion{ID: "a1", Type: model.AssertionParentChild, ParentRef: "p1", ChildRef: "p2"}
	conflicts := Detect([]model.Assertion{pc, pc})
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %+v, want none for participant-less assertions", conflicts)
	}
}

func TestDetectPreservesFirstSeenOrder(t *testing.T) {
	conflicts := Detect([]model.Assertion{
		{ID: "a1", Type: model.AssertionResidence, Participants: []model.Participant{{PersonRef: "p2"}}},
		birth("a2", "p1", "1867"),
		{ID: "a3", Type: model.AssertionResidence, Participants: []model.Participant{{PersonRef: "p2"}}},
		birth("a4", "p1", "1869"),
	})
	if len(conflicts) != 2 {
		t.Fatalf("conflicts = %+v", conflicts)
	}
	if conflicts[0].ID != "p2-residence" || conflicts[1].ID != "p1-birth" {
		t.Errorf("order = %q, %q", conflicts[0].ID, conflicts[1].ID)
	}
}
