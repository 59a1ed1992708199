package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineage/internal/session"
	"github.com/lineagekit/lineage/internal/validate"
)

func init() {
	cmd := &cobra.Command{
		Use:   "project <session-file>",
		Short: "Project a session's assertions into vault records",
		Long:  "Validate a session note, project its assertions into person, place, event, relationship, and citation records, and write the updated note back.",
		Args:  cobra.ExactArgs(1),
		Run:   runProject,
	}

	cmd.Flags().Bool("force", false, "Project even when validation reports blocking issues")
	cmd.Flags().Bool("dry-run", false, "Validate and report without writing records")

	RootCmd.AddCommand(cmd)
}

func runProject(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	sessionPath := args[0]

	eng, v, settings, err := openEngine()
	if err != nil {
		exitErr("open vault", err)
	}

	content, err := v.Read(sessionPath)
	if err != nil {
		exitErr("read session", err)
	}
	sess, err := session.Parse(content)
	if err != nil {
		exitErr("parse session", err)
	}

	result := validate.Evaluate(sess, validate.Options{FileExists: v.Exists})
	if result.Blocking && !force {
		b, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(b))
		fmt.Fprintln(os.Stderr, "error: session has blocking validation issues (use --force to project anyway)")
		os.Exit(1)
	}

	if dryRun {
		b, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(b))
		return
	}

	sum := eng.ProjectSession(sess, sessionPath)

	// Persist the matched_to links and projected entity list the run
	// added to the session.
	updated, err := session.Serialize(sess)
	if err != nil {
		exitErr("serialize session", err)
	}
	if err := v.Write(sessionPath, updated); err != nil {
		exitErr("write session", err)
	}

	if log, err := openHistory(settings); err == nil {
		defer log.Close()
		if _, err := log.Record(cmd.Context(), sessionPath, sum); err != nil {
			fmt.Fprintf(os.Stderr, "warning: record run: %v\n", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "warning: open run log: %v\n", err)
	}

	b, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Println(string(b))

	if len(sum.Errors) > 0 {
		os.Exit(1)
	}
}
