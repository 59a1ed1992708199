package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show run log statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	settings, err := loadSettings()
	if err != nil {
		exitErr("load config", err)
	}
	log, err := openHistory(settings)
	if err != nil {
		exitErr("open run log", err)
	}
	defer log.Close()

	stats, err := log.GetStats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}
