// Package index maintains an in-memory index of person and place records
// for fast name lookup, kept in sync with store change notifications.
package index

import (
	"strings"
	"sync"

	"github.com/lineagekit/lineage/internal/vault"
)

// PersonEntry is one indexed person record.
type PersonEntry struct {
	Path           string
	Name           string
	NormalizedName string
}

// PlaceEntry is one indexed place record.
type PlaceEntry struct {
	Path             string
	Name             string
	NormalizedName   string
	Parent           string
	NormalizedParent string
}

// Indexer indexes person and place records by path, preserving insertion
// order for deterministic search results.
type Indexer struct {
	vault vault.Vault

	mu      sync.RWMutex
	persons map[string]PersonEntry
	places  map[string]PlaceEntry
	order   []string
}

// New returns an empty indexer over the vault. Call Rebuild to populate.
func New(v vault.Vault) *Indexer {
	return &Indexer{
		vault:   v,
		persons: make(map[string]PersonEntry),
		places:  make(map[string]PlaceEntry),
	}
}

// Rebuild rescans every record in the store.
func (ix *Indexer) Rebuild() error {
	paths, err := ix.vault.List()
	if err != nil {
		return err
	}

	ix.mu.Lock()
	ix.persons = make(map[string]PersonEntry)
	ix.places = make(map[string]PlaceEntry)
	ix.order = nil
	ix.mu.Unlock()

	for _, path := range paths {
		ix.Update(path)
	}
	return nil
}

// Update re-derives a single record's entry from its current metadata. A
// record belongs to at most one of the two maps; a lineage type change
// evicts it from the other.
func (ix *Indexer) Update(path string) {
	fm, err := vault.ReadFrontmatter(ix.vault, path)
	if err != nil {
		ix.Remove(path)
		return
	}

	switch strings.ToLower(fm.Str("lineage_type")) {
	case "person":
		name := fm.Str("name")
		ix.mu.Lock()
		if strings.TrimSpace(name) == "" {
			ix.deleteLocked(path)
		} else {
			ix.insertLocked(path)
			ix.persons[path] = PersonEntry{
				Path:           path,
				Name:           name,
				NormalizedName: normalizeKey(name),
			}
			delete(ix.places, path)
		}
		ix.mu.Unlock()
	case "place":
		name := fm.Str("name")
		parent := fm.Str("parent_place")
		if parent == "" {
			parent = fm.Str("parent") // legacy field
		}
		ix.mu.Lock()
		if strings.TrimSpace(name) == "" {
			ix.deleteLocked(path)
		} else {
			ix.insertLocked(path)
			ix.places[path] = PlaceEntry{
				Path:             path,
				Name:             name,
				NormalizedName:   normalizeKey(name),
				Parent:           parent,
				NormalizedParent: normalizeKey(parent),
			}
			delete(ix.persons, path)
		}
		ix.mu.Unlock()
	default:
		ix.Remove(path)
	}
}

// Remove drops a record from both maps, for deletions and renames.
func (ix *Indexer) Remove(path string) {
	ix.mu.Lock()
	ix.deleteLocked(path)
	ix.mu.Unlock()
}

func (ix *Indexer) insertLocked(path string) {
	if _, ok := ix.persons[path]; ok {
		return
	}
	if _, ok := ix.places[path]; ok {
		return
	}
	ix.order = append(ix.order, path)
}

func (ix *Indexer) deleteLocked(path string) {
	_, hadPerson := ix.persons[path]
	_, hadPlace := ix.places[path]
	delete(ix.persons, path)
	delete(ix.places, path)
	if hadPerson || hadPlace {
		for i, p := range ix.order {
			if p == path {
				ix.order = append(ix.order[:i], ix.order[i+1:]...)
				break
			}
		}
	}
}

// HandleChange applies one store change notification.
func (ix *Indexer) HandleChange(c vault.Change) {
	switch c.Op {
	case vault.OpRemove, vault.OpRename:
		ix.Remove(c.Path)
	default:
		ix.Update(c.Path)
	}
}

// FindPersonsByName returns paths of persons whose normalized name
// contains the query, in index order.
func (ix *Indexer) FindPersonsByName(query string) []string {
	normalized := normalizeKey(query)
	if normalized == "" {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var paths []string
	for _, path := range ix.order {
		if entry, ok := ix.persons[path]; ok && strings.Contains(entry.NormalizedName, normalized) {
			paths = append(paths, path)
		}
	}
	return paths
}

// FindPlacesByName returns paths of places whose normalized name contains
// the query, in index order.
func (ix *Indexer) FindPlacesByName(query string) []string {
	normalized := normalizeKey(query)
	if normalized == "" {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var paths []string
	for _, path := range ix.order {
		if entry, ok := ix.places[path]; ok && strings.Contains(entry.NormalizedName, normalized) {
			paths = append(paths, path)
		}
	}
	return paths
}

// FindPlacesByParent returns paths of places whose parent matches exactly
// after normalization.
func (ix *Indexer) FindPlacesByParent(parent string) []string {
	normalized := normalizeKey(parent)
	if normalized == "" {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var paths []string
	for _, path := range ix.order {
		if entry, ok := ix.places[path]; ok && entry.NormalizedParent == normalized {
			paths = append(paths, path)
		}
	}
	return paths
}

// PersonEntries returns every indexed person in index order.
func (ix *Indexer) PersonEntries() []PersonEntry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var entries []PersonEntry
	for _, path := range ix.order {
		if entry, ok := ix.persons[path]; ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// PlaceEntries returns every indexed place in index order.
func (ix *Indexer) PlaceEntries() []PlaceEntry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var entries []PlaceEntry
	for _, path := range ix.order {
		if entry, ok := ix.places[path]; ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
