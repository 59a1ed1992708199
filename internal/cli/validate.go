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
		Use:   "validate <session-file>",
		Short: "Validate a research session note",
		Long:  "Parse and validate a session note. Exits non-zero when a blocking issue remains.",
		Args:  cobra.ExactArgs(1),
		Run:   runValidate,
	}

	cmd.Flags().String("trigger", "submit", "Reporting level: silent, blur, submit")
	cmd.Flags().String("field", "", "Field key to report on (blur trigger only)")

	RootCmd.AddCommand(cmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	trigger, _ := cmd.Flags().GetString("trigger")
	field, _ := cmd.Flags().GetString("field")

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

	result := validate.Evaluate(sess, validate.Options{FileExists: v.Exists})
	result = result.Report(validate.Trigger(trigger), field)

	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))

	if result.Blocking {
		os.Exit(1)
	}
}
