// Package filename derives safe, deterministic file names for session and
// entity records.
package filename

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxLength bounds generated file names before the extension.
const MaxLength = 120

var (
	invalidChars  = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespace    = regexp.MustCompile(`\s+`)
	trailingJunk  = regexp.MustCompile(`[. ]+$`)
	yearPattern   = regexp.MustCompile(`(\d{4})`)
	slugInvalid   = regexp.MustCompile(`[^a-z0-9]+`)
	slugQuotes    = regexp.MustCompile("['\"`]")
	slugDashRuns  = regexp.MustCompile(`-+`)
	slugDashTrims = regexp.MustCompile(`^-+|-+$`)
)

// Sanitize maps a free-text label to a safe file name segment: invalid
// characters stripped, whitespace collapsed, trailing dots and spaces
// removed, truncated to MaxLength. Empty results become "Untitled".
func Sanitize(value string) string {
	cleaned := invalidChars.ReplaceAllString(value, "")
	cleaned = whitespace.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = trailingJunk.ReplaceAllString(cleaned, "")

	if runes := []rune(cleaned); len(runes) > MaxLength {
		cleaned = strings.TrimSpace(string(runes[:MaxLength]))
	}
	if cleaned == "" {
		return "Untitled"
	}
	return cleaned
}

// ExtractYear returns the first 4-digit run in value, or "".
func ExtractYear(value string) string {
	m := yearPattern.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	return m[1]
}

// TitleCase upper-cases the first letter of each whitespace-separated word.
func TitleCase(value string) string {
	parts := strings.Fields(value)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// Slugify lowers a title into a hyphenated slug for session file names.
func Slugify(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = slugQuotes.ReplaceAllString(s, "")
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashTrims.ReplaceAllString(s, "")
	s = slugDashRuns.ReplaceAllString(s, "-")
	if s == "" {
		return "session"
	}
	return s
}

// Person returns the file name for a person record.
func Person(name string) string {
	return Sanitize(name)
}

// Place returns the file name for a place record.
func Place(name string) string {
	return Sanitize(name)
}

// Event returns "<TitleCase(type)> - <principal> [- <year>]".
func Event(eventType, principal, year string) string {
	parts := []string{TitleCase(eventType), Sanitize(principal)}
	if year != "" {
		parts = append(parts, year)
	}
	return Sanitize(strings.Join(parts, " - "))
}

// Relationship returns "Relationship - <A> & <B>".
func Relationship(personA, personB string) string {
	return Sanitize(fmt.Sprintf("Relationship - %s & %s", Sanitize(personA), Sanitize(personB)))
}

// ParentChild returns "Child of <parent> - <child>".
func ParentChild(parentName, childName string) string {
	return Sanitize(fmt.Sprintf("Child of %s - %s", Sanitize(parentName), Sanitize(childName)))
}

// Source returns "<TitleCase(recordType)> - <principal> - <year>", or
// "<TitleCase(recordType)> - Untitled" when principal or year is missing.
func Source(recordType, principal, year string) string {
	safeType := recordType
	if safeType == "" {
		safeType = "Source"
	}
	safeType = TitleCase(safeType)
	if principal == "" || year == "" {
		return Sanitize(safeType + " - Untitled")
	}
	return Sanitize(fmt.Sprintf("%s - %s - %s", safeType, Sanitize(principal), year))
}

// Citation returns "Citation - <sourceTitle> - <targetLabel> (<assertionId>)".
func Citation(sourceTitle, targetLabel, assertionID string) string {
	return Sanitize(fmt.Sprintf("Citation - %s - %s (%s)", sourceTitle, targetLabel, assertionID))
}

// Session returns "<date>-<slug>" for a new session note.
func Session(date, title string) string {
	return fmt.Sprintf("%s-%s", date, Slugify(title))
}
