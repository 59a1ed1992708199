package session

import (
	"fmt"
	"regexp"
	"strconv"
)

// FormatError reports a missing required text block (frontmatter header or
// lineage-session fenced block). No partial session is returned.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return e.Msg }

// YamlError wraps a YAML syntax failure in one of the two blocks, carrying
// the source line when the underlying error exposes one.
type YamlError struct {
	Block string // "frontmatter" or "lineage-session"
	Line  int
	Err   error
}

func (e *YamlError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: yaml parsing failed at line %d: %v", e.Block, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: yaml parsing failed: %v", e.Block, e.Err)
}

func (e *YamlError) Unwrap() error { return e.Err }

// SchemaError reports a value whose shape or type does not match the
// session schema, identified by its field path (e.g. "persons[2].id").
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var lineRe = regexp.MustCompile(`line (\d+)`)

func yamlErrorLine(err error) int {
	m := lineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
