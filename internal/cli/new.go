package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineage/internal/filename"
	"github.com/lineagekit/lineage/internal/model"
	"github.com/lineagekit/lineage/internal/session"
	"github.com/lineagekit/lineage/internal/vault"
)

func init() {
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a research session note",
		Long:  "Create a research session note scaffold in the vault, ready for assertions.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runNew,
	}

	cmd.Flags().String("date", "", "Session date YYYY-MM-DD (default: today)")
	cmd.Flags().StringP("record-type", "r", "other", "Record type: census, vital, church, probate, newspaper, other")
	cmd.Flags().String("repository", "", "Repository holding the source document")
	cmd.Flags().String("locator", "", "Locator within the repository")
	cmd.Flags().String("url", "", "Source document URL")
	cmd.Flags().StringSlice("file", nil, "Vault path of a captured document image (repeatable)")
	cmd.Flags().String("transcription", "", "Transcription of the source document")
	cmd.Flags().String("dir", "Sessions", "Vault folder for session notes")

	RootCmd.AddCommand(cmd)
}

func runNew(cmd *cobra.Command, args []string) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		exitErr("new", fmt.Errorf("title is required"))
	}

	date, _ := cmd.Flags().GetString("date")
	recordType, _ := cmd.Flags().GetString("record-type")
	repository, _ := cmd.Flags().GetString("repository")
	locator, _ := cmd.Flags().GetString("locator")
	url, _ := cmd.Flags().GetString("url")
	files, _ := cmd.Flags().GetStringSlice("file")
	transcription, _ := cmd.Flags().GetString("transcription")
	dir, _ := cmd.Flags().GetString("dir")

	if !model.ValidRecordType(recordType) {
		exitErr("new", fmt.Errorf("unknown record type %q", recordType))
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	content, err := session.BuildTemplate(title, session.TemplateOptions{
		Date:          date,
		RecordType:    model.RecordType(recordType),
		Repository:    repository,
		Locator:       locator,
		URL:           url,
		Files:         files,
		Transcription: transcription,
	})
	if err != nil {
		exitErr("build template", err)
	}

	v, _, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}

	path := vault.UniquePath(v, dir+"/"+filename.Session(date, title)+".md")
	if err := v.Create(path, content); err != nil {
		exitErr("create session", err)
	}

	b, _ := json.Marshal(map[string]string{"path": path})
	fmt.Println(string(b))
}
