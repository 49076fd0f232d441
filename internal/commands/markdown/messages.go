package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	importDirectoryMessageType = "press.markdown.import_directory"
	syncDirectoryMessageType   = "press.markdown.sync_directory"
)

// ImportDirectoryCommand triggers a filesystem walk for Markdown documents
// under the provided Directory. The command mirrors markdown.Service
// ImportDirectory semantics, allowing callers to supply import options that
// map directly onto interfaces.ImportOptions for post creation.
type ImportDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to load Markdown files from.
	Directory string `json:"directory"`
	// Section overrides the section detected from file paths.
	Section string `json:"section,omitempty"`
	// DefaultLayout applies when front matter does not name a layout.
	DefaultLayout string `json:"default_layout,omitempty"`
	// DefaultAuthor applies when front matter does not name an author.
	DefaultAuthor string `json:"default_author,omitempty"`
	// DryRun toggles preview mode to collect import diffs without persisting changes.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (ImportDirectoryCommand) Type() string { return importDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ImportDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("press.markdown.import_directory.directory_required", "directory is required")
			}
			return nil
		})),
	)
}

// SyncDirectoryCommand orchestrates a Markdown sync run for the provided
// Directory, applying archive or update flags consistent with
// interfaces.SyncOptions.
type SyncDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to load Markdown files from.
	Directory string `json:"directory"`
	// Section overrides the section detected from file paths.
	Section string `json:"section,omitempty"`
	// DefaultLayout applies when front matter does not name a layout.
	DefaultLayout string `json:"default_layout,omitempty"`
	// DefaultAuthor applies when front matter does not name an author.
	DefaultAuthor string `json:"default_author,omitempty"`
	// DryRun toggles preview mode to collect sync diffs without persisting changes.
	DryRun bool `json:"dry_run,omitempty"`
	// ArchiveOrphaned archives stored posts without matching Markdown files when true.
	ArchiveOrphaned bool `json:"archive_orphaned,omitempty"`
	// UpdateExisting overwrites stored posts when Markdown files have changed.
	UpdateExisting bool `json:"update_existing,omitempty"`
}

// Type implements command.Message.
func (SyncDirectoryCommand) Type() string { return syncDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd SyncDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("press.markdown.sync_directory.directory_required", "directory is required")
			}
			return nil
		})),
	)
}
