package vault

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var frontmatterRe = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---`)

// Frontmatter is a record's metadata block.
type Frontmatter map[string]any

// Str returns a string field, or "" when absent or differently typed.
func (f Frontmatter) Str(key string) string {
	s, _ := f[key].(string)
	return s
}

// StrSlice returns a string-array field, dropping non-string members.
func (f Frontmatter) StrSlice(key string) []string {
	items, ok := f[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Field is one ordered frontmatter update. A nil Value removes the key.
type Field struct {
	Key   string
	Value any
}

// ReadFrontmatter parses a record's frontmatter block. Records without one
// return an empty Frontmatter.
func ReadFrontmatter(v Vault, path string) (Frontmatter, error) {
	content, err := v.Read(path)
	if err != nil {
		return nil, err
	}
	m := frontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return Frontmatter{}, nil
	}
	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
		return nil, fmt.Errorf("frontmatter of %s: %w", path, err)
	}
	if fm == nil {
		fm = Frontmatter{}
	}
	return fm, nil
}

// UpdateFrontmatter rewrites a record's frontmatter, merging the updates
// into the existing block in order while preserving existing key order and
// leaving the body untouched.
func UpdateFrontmatter(v Vault, path string, updates []Field) error {
	content, err := v.Read(path)
	if err != nil {
		return err
	}

	var mapping *yaml.Node
	body := content
	if m := frontmatterRe.FindStringSubmatchIndex(content); m != nil {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(content[m[2]:m[3]]), &doc); err != nil {
			return fmt.Errorf("frontmatter of %s: %w", path, err)
		}
		if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
			mapping = doc.Content[0]
		}
		body = strings.TrimPrefix(content[m[1]:], "\n")
	}
	if mapping == nil {
		mapping = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	for _, update := range updates {
		applyField(mapping, update)
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return fmt.Errorf("frontmatter of %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("frontmatter of %s: %w", path, err)
	}

	next := fmt.Sprintf("---\n%s---\n\n%s", sb.String(), strings.TrimLeft(body, "\n"))
	return v.Write(path, next)
}

func applyField(mapping *yaml.Node, update Field) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != update.Key {
			continue
		}
		if update.Value == nil {
			mapping.Content = append(mapping.Content[:i], mapping.Content[i+2:]...)
		} else {
			mapping.Content[i+1] = encodeValue(update.Value)
		}
		return
	}
	if update.Value == nil {
		return
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: update.Key},
		encodeValue(update.Value))
}

func encodeValue(value any) *yaml.Node {
	n := &yaml.Node{}
	if err := n.Encode(value); err != nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(value)}
	}
	return n
}
