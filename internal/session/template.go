package session

import (
	"fmt"
	"time"

	"github.com/lineagekit/lineage/internal/ident"
	"github.com/lineagekit/lineage/internal/model"
)

// TemplateOptions configures a new session scaffold.
type TemplateOptions struct {
	Date          string // YYYY-MM-DD, defaults to today
	RecordType    model.RecordType
	Repository    string
	Locator       string
	URL           string
	Files         []string
	Transcription string
}

// BuildTemplate returns the note text for a fresh research session.
func BuildTemplate(title string, opts TemplateOptions) (string, error) {
	date := opts.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	recordType := opts.RecordType
	if recordType == "" {
		recordType = model.RecordOther
	}

	s := &model.Session{
		Metadata: model.Metadata{
			Title:       title,
			RecordType:  recordType,
			Repository:  opts.Repository,
			Locator:     opts.Locator,
			SessionDate: date,
		},
		ID: ident.New(),
		Document: model.Document{
			URL:           opts.URL,
			Files:         opts.Files,
			Transcription: opts.Transcription,
		},
		FreeformNotes: fmt.Sprintf("# %s\n\n## Notes\n", title),
	}

	return Serialize(s)
}
