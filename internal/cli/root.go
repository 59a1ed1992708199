// Package cli implements the lineage CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineage/internal/config"
	"github.com/lineagekit/lineage/internal/history"
	"github.com/lineagekit/lineage/internal/index"
	"github.com/lineagekit/lineage/internal/project"
	"github.com/lineagekit/lineage/internal/vault"
)

var (
	vaultFlag  string
	configFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Genealogy research sessions as plain markdown",
	Long:  "Capture genealogical research sessions as markdown notes and project their assertions into deduplicated person, event, and relationship records.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&vaultFlag, "vault", "V", "", "Vault directory (default: $LINEAGE_VAULT or current directory)")
	RootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Config file (default: <vault>/.lineage.yaml or ~/.lineage.yaml)")
}

func getVaultDir() string {
	if vaultFlag != "" {
		return vaultFlag
	}
	if env := os.Getenv("LINEAGE_VAULT"); env != "" {
		return env
	}
	wd, _ := os.Getwd()
	return wd
}

func loadSettings() (*config.Settings, error) {
	return config.Load(configFlag, getVaultDir())
}

func openVault() (*vault.DirVault, *config.Settings, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	v, err := vault.NewDirVault(settings.VaultDir)
	if err != nil {
		return nil, nil, err
	}
	return v, settings, nil
}

// openEngine builds a projection engine over a freshly indexed vault.
func openEngine() (*project.Engine, *vault.DirVault, *config.Settings, error) {
	v, settings, err := openVault()
	if err != nil {
		return nil, nil, nil, err
	}
	ix := index.New(v)
	if err := ix.Rebuild(); err != nil {
		return nil, nil, nil, fmt.Errorf("index vault: %w", err)
	}
	return project.New(v, ix, settings), v, settings, nil
}

func historyPath(settings *config.Settings) string {
	if settings.HistoryDB != "" {
		return settings.HistoryDB
	}
	return filepath.Join(settings.VaultDir, ".lineage", "history.db")
}

func openHistory(settings *config.Settings) (*history.Log, error) {
	return history.Open(historyPath(settings))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
