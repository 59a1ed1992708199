// Package vault abstracts the note store: path-based markdown records with
// YAML frontmatter. DirVault implements it over a filesystem directory.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Vault is the injected record-store capability. Paths are slash-separated
// and relative to the vault root.
type Vault interface {
	// Read returns a record's full content.
	Read(path string) (string, error)

	// Create writes a new record. It fails when the path already exists.
	Create(path, content string) error

	// Write replaces a record's content, creating it if absent.
	Write(path, content string) error

	// Exists reports whether a record or folder is present at path.
	Exists(path string) bool

	// List returns every markdown record path, sorted.
	List() ([]string, error)

	// EnsureDir creates a folder (and parents) if absent.
	EnsureDir(path string) error
}

// DirVault is a Vault rooted at a filesystem directory. Writes go through
// a temp file and rename so a record is replaced all-or-nothing.
type DirVault struct {
	root string
}

// NewDirVault opens (creating if needed) a vault rooted at dir.
func NewDirVault(dir string) (*DirVault, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve vault dir: %w", err)
	}
	return &DirVault{root: abs}, nil
}

// Root returns the vault's absolute root directory.
func (v *DirVault) Root() string { return v.root }

func (v *DirVault) abs(path string) string {
	return filepath.Join(v.root, filepath.FromSlash(NormalizePath(path)))
}

func (v *DirVault) Read(path string) (string, error) {
	b, err := os.ReadFile(v.abs(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func (v *DirVault) Create(path, content string) error {
	target := v.abs(path)
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("create %s: already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return v.atomicWrite(path, target, content)
}

func (v *DirVault) Write(path, content string) error {
	target := v.abs(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return v.atomicWrite(path, target, content)
}

func (v *DirVault) atomicWrite(path, target, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".lineage-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (v *DirVault) Exists(path string) bool {
	_, err := os.Stat(v.abs(path))
	return err == nil
}

func (v *DirVault) List() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != v.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(p, ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list vault: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (v *DirVault) EnsureDir(path string) error {
	if err := os.MkdirAll(v.abs(path), 0o755); err != nil {
		return fmt.Errorf("ensure dir %s: %w", path, err)
	}
	return nil
}

// NormalizePath collapses separators and strips leading/trailing slashes.
func NormalizePath(path string) string {
	p := strings.ReplaceAll(path, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return strings.Trim(p, "/")
}

// Basename returns the record name without directory or .md extension.
func Basename(path string) string {
	base := NormalizePath(path)
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".md")
}

// UniquePath returns path if free, else appends " (2)", " (3)", … before
// the extension until an unused path is found.
func UniquePath(v Vault, path string) string {
	normalized := NormalizePath(path)
	if !v.Exists(normalized) {
		return normalized
	}

	ext := ""
	base := normalized
	if i := strings.LastIndex(normalized, "."); i > strings.LastIndex(normalized, "/") {
		base = normalized[:i]
		ext = normalized[i:]
	}

	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, counter, ext)
		if !v.Exists(candidate) {
			return candidate
		}
	}
}
