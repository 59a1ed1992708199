// Package validate evaluates parsed sessions against required, format,
// conditional, id-policy, and cross-reference integrity rules. Error-level
// issues block projection and manual save.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/lineagekit/lineage/internal/ident"
	"github.com/lineagekit/lineage/internal/model"
)

// Level is the severity of an issue.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Kind categorizes the rule that produced an issue.
type Kind string

const (
	KindRequired    Kind = "required"
	KindFormat      Kind = "format"
	KindConditional Kind = "conditional"
	KindIntegrity   Kind = "integrity"
	KindIDPolicy    Kind = "id_policy"
)

// Code identifies the specific rule.
type Code string

const (
	CodeRequiredMissing        Code = "required_missing"
	CodeDocumentCaptureMissing Code = "document_capture_missing"
	CodeURLFormatInvalid       Code = "url_format_invalid"
	CodeLocatorFormatInvalid   Code = "locator_format_invalid"
	CodeFileNotFound           Code = "file_not_found"
	CodeRefMissing             Code = "ref_missing"
	CodeRefInvalid             Code = "ref_invalid"
	CodeIDInvalid              Code = "id_invalid"
	CodeIDFallback             Code = "id_fallback"
)

// Issue is one leveled validation finding anchored to a field key.
type Issue struct {
	FieldKey string `json:"field_key"`
	Text     string `json:"text"`
	Level    Level  `json:"level"`
	Kind     Kind   `json:"kind"`
	Code     Code   `json:"code"`
}

// Result is the full evaluation of a session.
type Result struct {
	Issues   []Issue `json:"issues"`
	Blocking bool    `json:"blocking"`
}

// Trigger selects how much of a Result is reported.
type Trigger string

const (
	// TriggerSilent computes the blocking state without reporting issues.
	TriggerSilent Trigger = "silent"
	// TriggerBlur reports only format-class issues for one field.
	TriggerBlur Trigger = "blur"
	// TriggerSubmit reports every issue.
	TriggerSubmit Trigger = "submit"
)

// Options carries the external capabilities evaluation needs.
type Options struct {
	// FileExists reports whether a declared vault file path resolves.
	// When nil, file existence checks are skipped.
	FileExists func(path string) bool
}

// Evaluate runs every rule against the session.
func Evaluate(s *model.Session, opts Options) Result {
	var issues []Issue

	required := func(fieldKey, text string) {
		issues = append(issues, Issue{
			FieldKey: fieldKey, Text: text,
			Level: LevelError, Kind: KindRequired, Code: CodeRequiredMissing,
		})
	}

	if strings.TrimSpace(s.Metadata.Title) == "" {
		required("metadata.title", "Title is required.")
	}
	if strings.TrimSpace(string(s.Metadata.RecordType)) == "" {
		required("metadata.record_type", "Record type is required.")
	}
	if strings.TrimSpace(s.Metadata.Repository) == "" {
		required("metadata.repository", "Repository is required.")
	}
	if strings.TrimSpace(s.Metadata.Locator) == "" {
		required("metadata.locator", "Locator is required.")
	}

	if locator := strings.TrimSpace(s.Metadata.Locator); looksLikeURL(locator) && !plausibleURL(locator) {
		issues = append(issues, Issue{
			FieldKey: "metadata.locator",
			Text:     "Locator looks like a URL, but format appears invalid.",
			Level:    LevelWarning, Kind: KindFormat, Code: CodeLocatorFormatInvalid,
		})
	}

	doc := s.Document
	hasCapture := strings.TrimSpace(doc.URL) != "" ||
		strings.TrimSpace(doc.Transcription) != ""
	for _, f := range doc.Files {
		if strings.TrimSpace(f) != "" {
			hasCapture = true
		}
	}
	if !hasCapture {
		issues = append(issues, Issue{
			FieldKey: "document",
			Text:     "Provide a URL, file, or transcription to save the document.",
			Level:    LevelError, Kind: KindConditional, Code: CodeDocumentCaptureMissing,
		})
	}

	if u := strings.TrimSpace(doc.URL); u != "" && !plausibleURL(u) {
		issues = append(issues, Issue{
			FieldKey: "document.url",
			Text:     "URL looks invalid. You can still save, but verify it.",
			Level:    LevelWarning, Kind: KindFormat, Code: CodeURLFormatInvalid,
		})
	}

	if opts.FileExists != nil {
		for i, f := range doc.Files {
			path := strings.TrimSpace(f)
			if path == "" {
				continue
			}
			if !opts.FileExists(path) {
				issues = append(issues, Issue{
					FieldKey: fmt.Sprintf("document.files[%d]", i),
					Text:     "File not found in the vault.",
					Level:    LevelError, Kind: KindFormat, Code: CodeFileNotFound,
				})
			}
		}
	}

	switch ident.Classify(s.ID) {
	case ident.FormatInvalid:
		issues = append(issues, Issue{
			FieldKey: "session.id",
			Text:     "Session ID is required and must use a valid ID format.",
			Level:    LevelError, Kind: KindIDPolicy, Code: CodeIDInvalid,
		})
	case ident.FormatFallback:
		issues = append(issues, Issue{
			FieldKey: "session.id",
			Text:     "Session ID uses fallback format (UUID preferred).",
			Level:    LevelWarning, Kind: KindIDPolicy, Code: CodeIDFallback,
		})
	}

	issues = append(issues, integrityIssues(s)...)

	blocking := false
	for _, issue := range issues {
		if issue.Level == LevelError {
			blocking = true
			break
		}
	}
	return Result{Issues: issues, Blocking: blocking}
}

func integrityIssues(s *model.Session) []Issue {
	personIDs := make(map[string]bool)
	for _, p := range s.Persons {
		if id := strings.TrimSpace(p.ID); id != "" {
			personIDs[id] = true
		}
	}
	citationIDs := make(map[string]bool)
	for _, c := range s.Citations {
		if id := strings.TrimSpace(c.ID); id != "" {
			citationIDs[id] = true
		}
	}

	var issues []Issue
	integrity := func(fieldKey, text string, code Code) {
		issues = append(issues, Issue{
			FieldKey: fieldKey, Text: text,
			Level: LevelError, Kind: KindIntegrity, Code: code,
		})
	}

	for i, a := range s.Assertions {
		fieldKey := fmt.Sprintf("assertions[%d]", i)

		if a.Type == model.AssertionParentChild {
			parentRef := strings.TrimSpace(a.ParentRef)
			childRef := strings.TrimSpace(a.ChildRef)
			if parentRef == "" || childRef == "" {
				integrity(fieldKey, "Parent-child assertions require both parent and child references.", CodeRefMissing)
			} else {
				if parentRef == childRef {
					integrity(fieldKey, "Parent and child must reference different people.", CodeRefInvalid)
				}
				if !personIDs[parentRef] || !personIDs[childRef] {
					integrity(fieldKey, "Parent-child references must point to people in this session.", CodeRefInvalid)
				}
			}
		} else if len(a.Participants) == 0 {
			integrity(fieldKey, "Assertion requires at least one participant.", CodeRefMissing)
		}

		for _, p := range a.Participants {
			if !personIDs[p.PersonRef] {
				integrity(fieldKey, "Assertion participant references a missing session person.", CodeRefInvalid)
				break
			}
		}

		for _, cid := range a.Citations {
			if !citationIDs[cid] {
				integrity(fieldKey, "Assertion citation reference does not exist in session citations.", CodeRefInvalid)
				break
			}
		}
	}
	return issues
}

// Report filters a Result per the trigger. Silent reports nothing, blur
// reports format-class issues for fieldKey only, submit reports everything.
// The blocking flag is never filtered.
func (r Result) Report(trigger Trigger, fieldKey string) Result {
	switch trigger {
	case TriggerSilent:
		return Result{Blocking: r.Blocking}
	case TriggerBlur:
		var filtered []Issue
		for _, issue := range r.Issues {
			if issue.Kind == KindFormat && issue.FieldKey == fieldKey {
				filtered = append(filtered, issue)
			}
		}
		return Result{Issues: filtered, Blocking: r.Blocking}
	default:
		return r
	}
}

var schemeRe = regexp.MustCompile(`^(?i)[a-z][a-z0-9+.-]*://`)

func looksLikeURL(value string) bool {
	if value == "" {
		return false
	}
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "www.")
}

// plausibleURL accepts scheme-less input by assuming https, then requires
// a hostname containing a dot (or localhost).
func plausibleURL(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	withScheme := trimmed
	if !schemeRe.MatchString(trimmed) {
		withScheme = "https://" + trimmed
	}
	parsed, err := url.Parse(withScheme)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	return strings.Contains(host, ".")
}
