package vault

import "strings"

// ExtractLinkTarget strips wikilink brackets and any |alias suffix.
func ExtractLinkTarget(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "[[")
	trimmed = strings.TrimSuffix(trimmed, "]]")
	target, _, _ := strings.Cut(trimmed, "|")
	return strings.TrimSpace(target)
}

// Wikilink formats a record basename as a wikilink.
func Wikilink(basename string) string {
	return "[[" + basename + "]]"
}

// WikilinkFor formats a record path as a wikilink to its basename.
func WikilinkFor(path string) string {
	return Wikilink(Basename(path))
}

// ResolveLink maps a link string to a record path by basename, trying an
// exact match before a case-insensitive one. Links may also carry a full
// vault path.
func ResolveLink(v Vault, link string) (string, bool) {
	target := ExtractLinkTarget(link)
	if target == "" {
		return "", false
	}

	// Full-path links resolve directly.
	if strings.Contains(target, "/") {
		path := NormalizePath(target)
		if !strings.HasSuffix(path, ".md") {
			path += ".md"
		}
		if v.Exists(path) {
			return path, true
		}
		return "", false
	}

	paths, err := v.List()
	if err != nil {
		return "", false
	}
	lower := strings.ToLower(target)
	fold := ""
	for _, path := range paths {
		base := Basename(path)
		if base == target {
			return path, true
		}
		if fold == "" && strings.ToLower(base) == lower {
			fold = path
		}
	}
	if fold != "" {
		return fold, true
	}
	return "", false
}
