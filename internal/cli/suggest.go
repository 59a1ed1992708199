package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineage/internal/match"
	"github.com/lineagekit/lineage/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "suggest <session-file>",
		Short: "Suggest vault matches for unresolved session persons",
		Long:  "Rank existing person records against each session person that has no matched_to link yet.",
		Args:  cobra.ExactArgs(1),
		Run:   runSuggest,
	}

	cmd.Flags().Float64("min-score", 0, "Minimum composite score (default 0.5)")
	cmd.Flags().Int("limit", 0, "Maximum candidates per person (default 5)")

	RootCmd.AddCommand(cmd)
}

func runSuggest(cmd *cobra.Command, args []string) {
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	limit, _ := cmd.Flags().GetInt("limit")

	eng, v, _, err := openEngine()
	if err != nil {
		exitErr("open vault", err)
	}

	content, err := v.Read(args[0])
	if err != nil {
		exitErr("read session", err)
	}
	sess, err := session.Parse(content)
	if err != nil {
		exitErr("parse session", err)
	}

	suggestions := eng.SuggestMatches(sess, match.Options{MinScore: minScore, Limit: limit})

	b, _ := json.MarshalIndent(suggestions, "", "  ")
	fmt.Println(string(b))
}
