package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineage/internal/conflict"
	"github.com/lineagekit/lineage/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "conflicts <session-file>",
		Short: "Detect contradictory assertions in a session",
		Long:  "Report groups of assertions that claim different facts of the same kind about the same person.",
		Args:  cobra.ExactArgs(1),
		Run:   runConflicts,
	}

	RootCmd.AddCommand(cmd)
}

func runConflicts(cmd *cobra.Command, args []string) {
	v, _, err := openVault()
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

	conflicts := conflict.Detect(sess.Assertions)
	if conflicts == nil {
		conflicts = []conflict.Conflict{}
	}

	b, _ := json.MarshalIndent(conflicts, "", "  ")
	fmt.Println(string(b))
}
