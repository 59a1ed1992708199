// Package config loads lineage settings from flags, environment, and an
// optional .lineage.yaml file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultBaseFolder is the vault folder that holds generated entities.
const DefaultBaseFolder = "Lineage"

// Settings holds resolved configuration.
type Settings struct {
	// VaultDir is the note store's root directory.
	VaultDir string `yaml:"vault"`

	// BaseFolder is the vault-relative folder for generated entities.
	BaseFolder string `yaml:"base_folder"`

	// HistoryDB is the projection run log database path. Empty disables
	// run logging.
	HistoryDB string `yaml:"history_db"`
}

// EntitySubfolders maps entity kinds to their folder under BaseFolder.
var EntitySubfolders = map[string]string{
	"person":       "People",
	"place":        "Places",
	"event":        "Events",
	"relationship": "Relationships",
	"source":       "Sources",
	"citation":     "Citations",
}

// Load reads settings from a config file when present, then applies
// defaults. path "" tries .lineage.yaml in the vault dir, then $HOME.
func Load(path, vaultDir string) (*Settings, error) {
	s := &Settings{VaultDir: vaultDir}

	candidates := []string{}
	if path != "" {
		candidates = append(candidates, path)
	} else {
		if vaultDir != "" {
			candidates = append(candidates, filepath.Join(vaultDir, ".lineage.yaml"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ".lineage.yaml"))
		}
	}

	for _, candidate := range candidates {
		b, err := os.ReadFile(candidate)
		if err != nil {
			if path != "" {
				return nil, fmt.Errorf("read config %s: %w", candidate, err)
			}
			continue
		}
		if err := yaml.Unmarshal(b, s); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", candidate, err)
		}
		break
	}

	if vaultDir != "" {
		s.VaultDir = vaultDir
	}
	if s.BaseFolder == "" {
		s.BaseFolder = DefaultBaseFolder
	}
	s.BaseFolder = normalizeFolder(s.BaseFolder)
	return s, nil
}

// EntityFolder returns the vault-relative folder for an entity kind.
func (s *Settings) EntityFolder(kind string) string {
	sub, ok := EntitySubfolders[kind]
	if !ok {
		sub = kind
	}
	return s.BaseFolder + "/" + sub
}

func normalizeFolder(value string) string {
	cleaned := filepath.ToSlash(filepath.Clean(value))
	for len(cleaned) > 0 && cleaned[0] == '/' {
		cleaned = cleaned[1:]
	}
	if cleaned == "" || cleaned == "." {
		return DefaultBaseFolder
	}
	return cleaned
}
