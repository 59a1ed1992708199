package filename

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{" John: Doe? ", "John Doe"},
		{`a\b/c:d*e?f"g<h>i|j`, "abcdefghij"},
		{"trailing dots...", "trailing dots"},
		{"  lots   of   space  ", "lots of space"},
		{"", "Untitled"},
		{`\/:*?"<>|`, "Untitled"},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitize_Truncates(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := Sanitize(long)
	if len(got) > MaxLength {
		t.Fatalf("expected <= %d chars, got %d", MaxLength, len(got))
	}
}

func TestSanitize_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 200)
	got := Sanitize(long)
	if !utf8.ValidString(got) {
		t.Fatalf("Sanitize produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != MaxLength {
		t.Errorf("rune count = %d, want %d", n, MaxLength)
	}
}

func TestExtractYear(t *testing.T) {
	if got := ExtractYear("1900-01-01"); got != "1900" {
		t.Errorf("got %q", got)
	}
	if got := ExtractYear("~1900"); got != "1900" {
		t.Errorf("got %q", got)
	}
	if got := ExtractYear("no year"); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestCompoundNames(t *testing.T) {
	if got := Event("birth", "John Doe", "1900"); got != "Birth - John Doe - 1900" {
		t.Errorf("Event = %q", got)
	}
	if got := Event("residence", "Mary", ""); got != "Residence - Mary" {
		t.Errorf("Event = %q", got)
	}
	if got := Relationship("John", "Mary"); got != "Relationship - John & Mary" {
		t.Errorf("Relationship = %q", got)
	}
	if got := ParentChild("John", "James"); got != "Child of John - James" {
		t.Errorf("ParentChild = %q", got)
	}
	if got := Citation("1901 Census", "John Doe", "a1"); got != "Citation - 1901 Census - John Doe (a1)" {
		t.Errorf("Citation = %q", got)
	}
	if got := Source("census", "John", "1901"); got != "Census - John - 1901" {
		t.Errorf("Source = %q", got)
	}
	if got := Source("census", "", ""); got != "Census - Untitled" {
		t.Errorf("Source = %q", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1901 Census - O'Connor Family", "1901-census-oconnor-family"},
		{"  Hello  World  ", "hello-world"},
		{"", "session"},
		{"***", "session"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
