package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded projection runs",
		Long:  "List projection runs from the run log, newest first.",
		Run:   runHistory,
	}

	cmd.Flags().StringP("session", "s", "", "Only runs for this session note")
	cmd.Flags().IntP("limit", "n", 0, "Maximum runs to list (default 20)")
	cmd.Flags().Bool("files", false, "Include the files each run touched")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	sessionPath, _ := cmd.Flags().GetString("session")
	limit, _ := cmd.Flags().GetInt("limit")
	withFiles, _ := cmd.Flags().GetBool("files")

	settings, err := loadSettings()
	if err != nil {
		exitErr("load config", err)
	}
	log, err := openHistory(settings)
	if err != nil {
		exitErr("open run log", err)
	}
	defer log.Close()

	runs, err := log.List(cmd.Context(), sessionPath, limit)
	if err != nil {
		exitErr("list runs", err)
	}

	if withFiles {
		for i := range runs {
			files, err := log.Files(cmd.Context(), runs[i].ID)
			if err != nil {
				exitErr("list run files", err)
			}
			runs[i].Files = files
		}
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Println(string(b))
}
