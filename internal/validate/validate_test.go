package validate

import (
	"testing"

	"github.com/lineagekit/lineage/internal/ident"
	"github.com/lineagekit/lineage/internal/model"
)

func validSession() *model.Session {
	return &model.Session{
		Metadata: model.Metadata{
			Title:      "1901 Census of Ireland",
			RecordType: model.RecordCensus,
			Repository: "National Archives of Ireland",
			Locator:    "form A, house 12",
		},
		ID: ident.New(),
		Document: model.Document{
			URL: "https://example.org/census/1901",
		},
		Persons: []model.Person{
			{ID: "p1", Name: "John Murphy"},
			{ID: "p2", Name: "Mary Murphy"},
		},
		Assertions: []model.Assertion{
			{
				ID:   "a1",
				Type: model.AssertionBirth,
				Participants: []model.Participant{
					{PersonRef: "p1", Principal: true},
				},
				Date:      "1867",
				Citations: []string{"c1"},
			},
		},
		Citations: []model.Citation{
			{ID: "c1", Snippet: "Murphy, John, age 34"},
		},
	}
}

func findCode(issues []Issue, code Code) *Issue {
	for i := range issues {
		if issues[i].Code == code {
			return &issues[i]
		}
	}
	return nil
}

func TestEvaluateValidSession(t *testing.T) {
	result := Evaluate(validSession(), Options{})
	if result.Blocking {
		t.Errorf("valid session is blocking: %+v", result.Issues)
	}
	if len(result.Issues) != 0 {
		t.Errorf("issues = %+v, want none", result.Issues)
	}
}

func TestEvaluateMissingRepositoryBlocks(t *testing.T) {
	s := validSession()
	s.Metadata.Repository = "  "

	result := Evaluate(s, Options{})
	if !result.Blocking {
		t.Fatal("missing repository should block")
	}
	issue := findCode(result.Issues, CodeRequiredMissing)
	if issue == nil || issue.FieldKey != "metadata.repository" {
		t.Errorf("issues = %+v, want required repository issue", result.Issues)
	}
}

func TestEvaluateDocumentCapture(t *testing.T) {
	s := validSession()
	s.Document = model.Document{}

	result := Evaluate(s, Options{})
	if !result.Blocking {
		t.Fatal("empty document should block")
	}
	if findCode(result.Issues, CodeDocumentCaptureMissing) == nil {
		t.Errorf("issues = %+v, want document capture issue", result.Issues)
	}

	// A transcription alone satisfies the capture rule.
	s.Document.Transcription = "Murphy, John, head, 34"
	result = Evaluate(s, Options{})
	if findCode(result.Issues, CodeDocumentCaptureMissing) != nil {
		t.Errorf("issues = %+v, transcription should satisfy capture", result.Issues)
	}
}

func TestEvaluateBadURLWarns(t *testing.T) {
	s := validSession()
	s.Document.URL = "not a url"

	result := Evaluate(s, Options{})
	issue := findCode(result.Issues, CodeURLFormatInvalid)
	if issue == nil {
		t.Fatalf("issues = %+v, want url warning", result.Issues)
	}
	if issue.Level != LevelWarning {
		t.Errorf("url issue level = %q, want warning", issue.Level)
	}
	if result.Blocking {
		t.Error("a url warning alone should not block")
	}
}

func TestEvaluateSchemelessURLPlausible(t *testing.T) {
	s := validSession()
	s.Document.URL = "example.org/census/1901"

	result := Evaluate(s, Options{})
	if findCode(result.Issues, CodeURLFormatInvalid) != nil {
		t.Errorf("issues = %+v, scheme-less host should be plausible", result.Issues)
	}
}

func TestEvaluateFileNotFound(t *testing.T) {
	s := validSession()
	s.Document.Files = []string{"Captures/census.png", "Captures/missing.png"}

	exists := func(path string) bool { return path == "Captures/census.png" }
	result := Evaluate(s, Options{FileExists: exists})

	issue := findCode(result.Issues, CodeFileNotFound)
	if issue == nil {
		t.Fatalf("issues = %+v, want file not found", result.Issues)
	}
	if issue.FieldKey != "document.files[1]" {
		t.Errorf("FieldKey = %q", issue.FieldKey)
	}
	if !result.Blocking {
		t.Error("missing file should block")
	}
}

func TestEvaluateIDPolicy(t *testing.T) {
	s := validSession()
	s.ID = "session-2024"

	result := Evaluate(s, Options{})
	issue := findCode(result.Issues, CodeIDFallback)
	if issue == nil || issue.Level != LevelWarning {
		t.Fatalf("issues = %+v, want fallback id warning", result.Issues)
	}

	s.ID = "!!!"
	result = Evaluate(s, Options{})
	if findCode(result.Issues, CodeIDInvalid) == nil {
		t.Errorf("issues = %+v, want invalid id error", result.Issues)
	}
	if !result.Blocking {
		t.Error("invalid id should block")
	}
}

func TestEvaluateParentChildIntegrity(t *testing.T) {
	s := validSession()
	s.Assertions = []model.Assertion{{
		ID:        "a1",
		Type:      model.AssertionParentChild,
		ParentRef: "p1",
		ChildRef:  "p1",
	}}

	result := Evaluate(s, Options{})
	issue := findCode(result.Issues, CodeRefInvalid)
	if issue == nil {
		t.Fatalf("issues = %+v, want same-person integrity error", result.Issues)
	}
	if issue.FieldKey != "assertions[0]" {
		t.Errorf("FieldKey = %q", issue.FieldKey)
	}

	s.Assertions[0].ChildRef = ""
	result = Evaluate(s, Options{})
	if findCode(result.Issues, CodeRefMissing) == nil {
		t.Errorf("issues = %+v, want missing ref error", result.Issues)
	}

	s.Assertions[0].ChildRef = "ghost"
	result = Evaluate(s, Options{})
	if findCode(result.Issues, CodeRefInvalid) == nil {
		t.Errorf("issues = %+v, want unresolved ref error", result.Issues)
	}
}

func TestEvaluateParticipantRequired(t *testing.T) {
	s := validSession()
	s.Assertions = []model.Assertion{{
		ID:   "a1",
		Type: model.AssertionResidence,
	}}

	result := Evaluate(s, Options{})
	issue := findCode(result.Issues, CodeRefMissing)
	if issue == nil {
		t.Fatalf("issues = %+v, want participant required error", result.Issues)
	}
}

func TestEvaluateUnknownCitationRef(t *testing.T) {
	s := validSession()
	s.Assertions[0].Citations = []string{"ghost"}

	result := Evaluate(s, Options{})
	if findCode(result.Issues, CodeRefInvalid) == nil {
		t.Errorf("issues = %+v, want citation ref error", result.Issues)
	}
}

func TestReportTriggers(t *testing.T) {
	s := validSession()
	s.Metadata.Repository = ""
	s.Document.URL = "not a url"

	full := Evaluate(s, Options{})

	silent := full.Report(TriggerSilent, "")
	if len(silent.Issues) != 0 {
		t.Errorf("silent issues = %+v, want none", silent.Issues)
	}
	if !silent.Blocking {
		t.Error("silent report must keep the blocking flag")
	}

	blur := full.Report(TriggerBlur, "document.url")
	if len(blur.Issues) != 1 || blur.Issues[0].Code != CodeURLFormatInvalid {
		t.Errorf("blur issues = %+v, want only the url format issue", blur.Issues)
	}

	submit := full.Report(TriggerSubmit, "")
	if len(submit.Issues) != len(full.Issues) {
		t.Errorf("submit issues = %d, want %d", len(submit.Issues), len(full.Issues))
	}
}
